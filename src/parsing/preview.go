package parsing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/logging"
	"github.com/allegro/bigcache/v3"
)

// Preview renders are pure functions of their source, so identical drafts
// hash to the same bytes. bigcache keeps those bytes off the GC heap; an
// eviction just means one extra render.
var previewCache *bigcache.BigCache

func init() {
	var err error
	previewCache, err = bigcache.New(context.Background(), bigcache.DefaultConfig(10*time.Minute))
	if err != nil {
		panic(err)
	}
}

func previewCacheKey(source string) string {
	hash := sha256.Sum256([]byte(source))
	return hex.EncodeToString(hash[:])
}

// RenderPreviewHTML converts markdown the same way a saved body would be
// converted, for the live preview endpoint.
func RenderPreviewHTML(source string) string {
	key := previewCacheKey(source)
	if cached, err := previewCache.Get(key); err == nil {
		return string(cached)
	}

	html := ParseMarkdown(source, ForumRealMarkdown)
	if err := previewCache.Set(key, []byte(html)); err != nil {
		logging.Warn().Err(err).Msg("failed to cache a preview render")
	}
	return html
}
