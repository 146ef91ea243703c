package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const (
	// Language of generated SDKs and their usage examples.
	Language = "typescript"
	// Style is the highlight theme.
	Style = "dracula"
)

func tokenise(code string) (chroma.Iterator, error) {
	lexer := lexers.Get(Language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return nil, fmt.Errorf("tokenise %s: %w", Language, err)
	}
	return it, nil
}

// HighlightTerminal writes code with 256-colour escape sequences.
func HighlightTerminal(w io.Writer, code string) error {
	it, err := tokenise(code)
	if err != nil {
		return err
	}
	return formatters.Get("terminal256").Format(w, styles.Get(Style), it)
}

// HighlightHTML writes code as a standalone <pre> with inline styles and
// line numbers.
func HighlightHTML(w io.Writer, code string) error {
	it, err := tokenise(code)
	if err != nil {
		return err
	}
	f := chromahtml.New(
		chromahtml.WithLineNumbers(true),
		chromahtml.TabWidth(2),
	)
	return f.Format(w, styles.Get(Style), it)
}

// HighlightedHTML is HighlightHTML into a string; it falls back to escaped
// plain text when highlighting fails.
func HighlightedHTML(code string) string {
	var b strings.Builder
	if err := HighlightHTML(&b, code); err != nil {
		return "<pre>" + htmlEscaper.Replace(code) + "</pre>"
	}
	return b.String()
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "'", "&#39;")
