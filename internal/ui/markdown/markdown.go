// Package markdown renders module source for the project screen.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// noMarginStyle is a JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Styles accepted by New.
const (
	StyleDark  = "dark"
	StyleLight = "light"
	StyleAuto  = "auto"
)

// ResolveStyle maps "auto" (or anything unrecognized) to dark or light by
// asking out for the terminal background. A nil out uses stdout.
func ResolveStyle(style string, out *termenv.Output) string {
	switch style {
	case StyleDark, StyleLight:
		return style
	}
	if out == nil {
		out = termenv.DefaultOutput()
	}
	if out.HasDarkBackground() {
		return StyleDark
	}
	return StyleLight
}

// Renderer wraps glamour with atelier-specific configuration.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
	style    string
}

// New creates a renderer with the given word wrap width and style ("dark" or
// "light"; empty means dark). The CLI resolves "auto" before the TUI starts,
// because glamour's own auto detection queries the terminal and the response
// leaks into the input stream.
func New(width int, style string) (*Renderer, error) {
	if style == "" {
		style = StyleDark
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width, style: style}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Style returns the configured style name.
func (r *Renderer) Style() string {
	return r.style
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}

// RenderModule renders module source as a titled code block.
func (r *Renderer) RenderModule(title, source string) (string, error) {
	var b strings.Builder
	if title != "" {
		b.WriteString("### ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	fence := "```"
	for strings.Contains(source, fence) {
		fence += "`"
	}
	b.WriteString(fence)
	b.WriteString("\n")
	b.WriteString(source)
	if !strings.HasSuffix(source, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(fence)
	b.WriteString("\n")
	return r.Render(b.String())
}
