package webui

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/tensorplex-labs/typescribe/internal/render"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

type pageBlock struct {
	render.Block
	HTML template.HTML
}

type pageData struct {
	Title   string
	Tagline string
	Refresh int
	View    StateView
	Blocks  []pageBlock
}

func renderPage(view StateView) ([]byte, error) {
	data := pageData{
		Title:   pageTitle,
		Tagline: pageTagline,
		View:    view,
	}
	if view.Loading != nil {
		data.Refresh = refreshInterval
	}
	for _, b := range view.Blocks {
		// chroma escapes the code it emits
		data.Blocks = append(data.Blocks, pageBlock{
			Block: b,
			HTML:  template.HTML(render.HighlightedHTML(b.Text)), //nolint:gosec
		})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
