package mail

import (
	"embed"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/osteele/liquid"
)

//go:embed templates/*.liquid
var templateFS embed.FS

// Template names.
const (
	TemplateNewsletter    = "newsletter"
	TemplateEditorWelcome = "editor_welcome"
)

// SummaryLength is the number of characters of an article summary shown
// in the newsletter before it is cut with "...".
const SummaryLength = 150

// DefaultCoverImage is shown for articles without a cover image.
const DefaultCoverImage = "/assets/z_original.png"

// Renderer renders the embedded liquid templates.
type Renderer struct {
	templates map[string]*liquid.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	engine := liquid.NewEngine()
	engine.RegisterFilter("truncate_summary", func(s string) string {
		return TruncateSummary(s, SummaryLength)
	})
	engine.RegisterFilter("cover_image", func(s string) string {
		if s == "" {
			return DefaultCoverImage
		}
		return s
	})

	r := &Renderer{templates: make(map[string]*liquid.Template)}
	for _, name := range []string{TemplateNewsletter, TemplateEditorWelcome} {
		src, err := templateFS.ReadFile("templates/" + name + ".html.liquid")
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		tpl, perr := engine.ParseString(string(src))
		if perr != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, perr)
		}
		r.templates[name] = tpl
	}
	return r, nil
}

// Render returns the HTML body and the plain text part derived from it.
func (r *Renderer) Render(name string, bindings map[string]any) (string, string, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown template %q", name)
	}
	html, err := tpl.RenderString(bindings)
	if err != nil {
		return "", "", fmt.Errorf("render %s: %w", name, err)
	}
	text, cerr := htmltomarkdown.ConvertString(html)
	if cerr != nil {
		return "", "", fmt.Errorf("text part for %s: %w", name, cerr)
	}
	return html, text, nil
}

// TruncateSummary keeps the first n characters of s and appends "..."
// when anything was cut.
func TruncateSummary(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}
