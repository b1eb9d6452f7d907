package format

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Markdown themes accepted by NewMarkdownRenderer.
const (
	ThemeAuto  = "auto"
	ThemePlain = "plain"
)

// MarkdownRenderer renders assistant replies for the terminal.
// A failed render falls back to the raw text.
type MarkdownRenderer struct {
	mu    sync.Mutex
	theme string
	width int
	term  *glamour.TermRenderer
}

// NewMarkdownRenderer returns a renderer using theme ("auto", "dark",
// "light", "notty", "ascii" or "plain") wrapped at width columns.
func NewMarkdownRenderer(theme string, width int) *MarkdownRenderer {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme == "" {
		theme = ThemeAuto
	}
	return &MarkdownRenderer{theme: theme, width: width}
}

// SetWidth changes the wrap width; the next render rebuilds the renderer.
func (r *MarkdownRenderer) SetWidth(width int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == r.width {
		return
	}
	r.width = width
	r.term = nil
}

// Render returns text rendered as terminal markdown.
func (r *MarkdownRenderer) Render(text string) string {
	if r == nil || r.theme == ThemePlain || strings.TrimSpace(text) == "" {
		return text
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	term, err := r.renderer()
	if err != nil {
		return text
	}
	out, err := term.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (r *MarkdownRenderer) renderer() (*glamour.TermRenderer, error) {
	if r.term != nil {
		return r.term, nil
	}
	opts := []glamour.TermRendererOption{glamour.WithPreservedNewLines()}
	if r.theme == ThemeAuto {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(r.theme))
	}
	if r.width > 0 {
		opts = append(opts, glamour.WithWordWrap(r.width))
	}
	term, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	r.term = term
	return term, nil
}
