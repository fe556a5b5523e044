// Package help contains the keybinding overlay.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/atelier/internal/keys"
	"github.com/zjrosen/atelier/internal/ui/overlay"
	"github.com/zjrosen/atelier/internal/ui/styles"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.OverlayBorderColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(11)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimaryColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.OverlayBorderColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

// Screen selects which bindings are listed.
type Screen int

const (
	Welcome Screen = iota
	Project
)

// Model holds the help overlay state.
type Model struct {
	screen  Screen
	visible bool
	width   int
	height  int
}

// New creates a hidden help overlay.
func New() Model {
	return Model{}
}

// SetScreen selects the bindings to list.
func (m *Model) SetScreen(s Screen) { m.screen = s }

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Visible reports whether the overlay is showing.
func (m Model) Visible() bool { return m.visible }

// Toggle shows or hides the overlay.
func (m *Model) Toggle() { m.visible = !m.visible }

// Hide closes the overlay.
func (m *Model) Hide() { m.visible = false }

// Overlay renders the help box on top of background.
func (m Model) Overlay(background string) string {
	if !m.visible {
		return background
	}
	return overlay.Center(m.renderContent(), background, m.width, m.height)
}

func (m Model) renderContent() string {
	columnStyle := lipgloss.NewStyle().MarginRight(4)

	var sections []string
	switch m.screen {
	case Project:
		p := keys.Project
		sections = []string{
			columnStyle.Render(section("Scroll", p.ScrollUp, p.ScrollDown, p.PageUp, p.PageDown)),
			columnStyle.Render(section("Jump", p.Top, p.Bottom)),
		}
	default:
		w := keys.Welcome
		sections = []string{
			columnStyle.Render(section("Navigation", w.Up, w.Down)),
			columnStyle.Render(section("Projects", w.Open, w.Create)),
		}
	}
	sections = append(sections, section("General", keys.App.Help, keys.App.Logs, keys.App.Quit))

	columns := lipgloss.JoinHorizontal(lipgloss.Top, sections...)
	boxWidth := lipgloss.Width(columns) + 4

	body := contentStyle.Render(columns + "\n" + footerStyle.Render("Press ? or Esc to close"))
	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	var content strings.Builder
	content.WriteString(titleStyle.Render("Keybindings"))
	content.WriteString("\n")
	content.WriteString(divider)
	content.WriteString("\n")
	content.WriteString(body)

	return boxStyle.Width(boxWidth).Render(content.String())
}

func section(title string, bindings ...key.Binding) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
	for _, binding := range bindings {
		h := binding.Help()
		b.WriteString(keyStyle.Render(h.Key) + descStyle.Render(h.Desc) + "\n")
	}
	return b.String()
}
