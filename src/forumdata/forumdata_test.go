package forumdata

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderBody(t *testing.T) {
	ctx := context.Background()

	t.Run("short bodies pass through", func(t *testing.T) {
		raw, html, preview := renderBody(ctx, "Hello *world*")
		assert.Equal(t, "Hello *world*", raw)
		assert.Contains(t, html, "<em>world</em>")
		assert.Equal(t, "Hello world", preview)
	})

	t.Run("previews are truncated with an ellipsis", func(t *testing.T) {
		_, _, preview := renderBody(ctx, strings.Repeat("a", previewMaxLength*2))
		assert.True(t, len(preview) <= previewMaxLength+len("…"))
		assert.True(t, strings.HasSuffix(preview, "…"))
	})

	t.Run("absurdly long bodies get capped", func(t *testing.T) {
		raw, _, _ := renderBody(ctx, strings.Repeat("a", maxBodyLength+100))
		assert.True(t, len(raw) < maxBodyLength)
	})
}

func TestVoteResultScore(t *testing.T) {
	r := VoteResult{
		Upvoters:   []int{1, 2, 3},
		Downvoters: []int{4},
	}
	assert.Equal(t, 2, r.Score())

	assert.Equal(t, 0, (&VoteResult{}).Score())
}
