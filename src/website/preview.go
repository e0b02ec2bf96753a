package website

import (
	"strings"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/parsing"
)

type previewBody struct {
	Markdown string `json:"markdown"`
}

// Live markdown preview for the thread/reply composers. Renders exactly the
// way a saved body would render; repeated previews of the same draft are
// served from the content-hash cache inside parsing.
func Preview(c *RequestContext) ResponseData {
	var body previewBody
	if err := decodeBody(c, &body); err != nil {
		return apiError(c, err)
	}

	if strings.TrimSpace(body.Markdown) == "" {
		return jsonOK(c, map[string]any{"html": ""})
	}

	return jsonOK(c, map[string]any{
		"html": parsing.RenderPreviewHTML(body.Markdown),
	})
}
