package parsing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	t.Run("fenced code blocks", func(t *testing.T) {
		t.Run("multiple lines", func(t *testing.T) {
			html := ParseMarkdown("```\nmultiple lines\n\tof code\n```", ForumRealMarkdown)
			t.Log(html)
			assert.Equal(t, 1, strings.Count(html, "<pre"))
			assert.Contains(t, html, `class="cb-code"`)
			assert.Contains(t, html, "multiple lines\n\tof code")
		})
		t.Run("multiple lines with language", func(t *testing.T) {
			html := ParseMarkdown("```go\nfunc main() {\n\tfmt.Println(\"Hello, world!\")\n}\n```", ForumRealMarkdown)
			t.Log(html)
			assert.Equal(t, 1, strings.Count(html, "<pre"))
			assert.Contains(t, html, `class="cb-code"`)
			assert.Contains(t, html, "Println")
			assert.Contains(t, html, "Hello, world!")
		})
	})

	t.Run("gfm", func(t *testing.T) {
		t.Run("strikethrough", func(t *testing.T) {
			html := ParseMarkdown("~~old dosage~~", ForumRealMarkdown)
			assert.Contains(t, html, "<del>old dosage</del>")
		})
		t.Run("autolinks", func(t *testing.T) {
			html := ParseMarkdown("see https://pubmed.ncbi.nlm.nih.gov/12345/", ForumRealMarkdown)
			assert.Contains(t, html, `<a href="https://pubmed.ncbi.nlm.nih.gov/12345/"`)
		})
		t.Run("tables", func(t *testing.T) {
			html := ParseMarkdown("| dose | effect |\n| --- | --- |\n| 5mg | none |", ForumRealMarkdown)
			assert.Contains(t, html, "<table>")
			assert.Contains(t, html, "<td>5mg</td>")
		})
	})

	t.Run("raw html is not passed through", func(t *testing.T) {
		html := ParseMarkdown("hello <script>alert(1)</script> there", ForumRealMarkdown)
		t.Log(html)
		assert.NotContains(t, html, "<script>")
	})
}

func TestPlaintext(t *testing.T) {
	plain := func(source string) string {
		return strings.TrimSpace(ParseMarkdown(source, PlaintextMarkdown))
	}

	t.Run("strips emphasis", func(t *testing.T) {
		assert.Equal(t, "Hello, world", plain("Hello, *world*"))
	})
	t.Run("separates blocks", func(t *testing.T) {
		assert.Equal(t, "One. Two.", plain("One.\n\nTwo."))
		assert.Equal(t, "Heading Body", plain("# Heading\n\nBody"))
	})
	t.Run("soft line breaks become spaces", func(t *testing.T) {
		assert.Equal(t, "One Two", plain("One\nTwo"))
	})
	t.Run("separates tight list items", func(t *testing.T) {
		assert.Equal(t, "first second", plain("- first\n- second"))
	})
	t.Run("unescapes punctuation", func(t *testing.T) {
		assert.Equal(t, "*not emphasis*", plain(`\*not emphasis\*`))
	})
	t.Run("no markup in output", func(t *testing.T) {
		out := plain("# Study [link](https://example.com)\n\n**bold** and `code`")
		assert.NotContains(t, out, "<")
		assert.NotContains(t, out, "*")
		assert.NotContains(t, out, "#")
	})
}

func TestRenderPreviewHTML(t *testing.T) {
	first := RenderPreviewHTML("# Research *update*")
	second := RenderPreviewHTML("# Research *update*")
	assert.Equal(t, first, second)
	assert.Contains(t, first, "<h1")
	assert.Contains(t, first, "<em>update</em>")

	other := RenderPreviewHTML("something else entirely")
	assert.NotEqual(t, first, other)
}
