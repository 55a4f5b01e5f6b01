// Package render presents listings and proposals for the gonsole hosts.
// Listings render as markdown through glamour or export as YAML and JSON;
// proposals render as a styled status line.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Options configures a Renderer.
type Options struct {
	// Style is a glamour style: "auto", "dark", "light", "notty" or "ascii".
	Style string
	// Width is the word-wrap width; zero selects 80.
	Width int
}

// Renderer renders listings and proposals for a terminal.
type Renderer struct {
	markdown *glamour.TermRenderer
	styles   proposalStyles
	plain    bool
	width    int
}

// New creates a Renderer. Plain output is used when the style asks for it or
// the terminal has no colour support.
func New(opts Options) (*Renderer, error) {
	width := opts.Width
	if width <= 0 {
		width = 80
	}

	style := strings.ToLower(strings.TrimSpace(opts.Style))
	var styleOption glamour.TermRendererOption
	switch style {
	case "", "auto":
		styleOption = glamour.WithAutoStyle()
	default:
		styleOption = glamour.WithStandardStyle(style)
	}

	markdown, err := glamour.NewTermRenderer(styleOption, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	plain := style == "notty" || style == "ascii" || lipgloss.ColorProfile() == termenv.Ascii
	return &Renderer{
		markdown: markdown,
		styles:   newProposalStyles(),
		plain:    plain,
		width:    width,
	}, nil
}

// Plain reports whether the renderer emits unstyled text.
func (r *Renderer) Plain() bool {
	return r.plain
}

// Markdown renders arbitrary markdown text.
func (r *Renderer) Markdown(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}
	rendered, err := r.markdown.Render(text)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return rendered, nil
}
