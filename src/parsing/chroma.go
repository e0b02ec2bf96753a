package parsing

import "github.com/alecthomas/chroma/formatters/html"

// Class-based output so themes can restyle code blocks without re-rendering
// stored HTML. The wrapper pre tag comes from the highlighting extension.
var ChromaOptions = []html.Option{
	html.WithClasses(true),
	html.WithPreWrapper(nopPreWrapper{}),
}

type nopPreWrapper struct{}

var _ html.PreWrapper = nopPreWrapper{}

func (w nopPreWrapper) Start(code bool, styleAttr string) string {
	return ""
}

func (w nopPreWrapper) End(code bool) string {
	return ""
}
