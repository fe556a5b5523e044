// Package welcome is the screen shown until a project is opened: the list of
// known projects and a way to create a new one.
package welcome

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/atelier/internal/keys"
	"github.com/zjrosen/atelier/internal/presenter"
	"github.com/zjrosen/atelier/internal/ui/styles"
)

const (
	zonePrefix = "welcome-project-"
	zoneCreate = "welcome-create"
)

// OpenMsg asks for the named project to be opened.
type OpenMsg struct {
	Name string
}

// CreateMsg asks for a new project.
type CreateMsg struct{}

// Model is the welcome screen.
type Model struct {
	projects []string
	cursor   int
	loaded   bool
	pending  string
	width    int
	height   int
}

var _ presenter.WelcomeView = (*Model)(nil)

// New creates an empty welcome screen.
func New() *Model {
	return &Model{}
}

// SetProjects replaces the listed projects.
func (m *Model) SetProjects(names []string) {
	m.projects = append([]string(nil), names...)
	m.loaded = true
	m.cursor = min(m.cursor, max(len(m.projects)-1, 0))
}

// Projects returns the listed project names.
func (m *Model) Projects() []string {
	return m.projects
}

// Selected returns the project under the cursor.
func (m *Model) Selected() (string, bool) {
	if len(m.projects) == 0 {
		return "", false
	}
	return m.projects[m.cursor], true
}

// Pending returns the in-flight request label, or "".
func (m *Model) Pending() string {
	return m.pending
}

// Dismiss clears the in-flight request label once its outcome is visible.
func (m *Model) Dismiss() {
	m.pending = ""
}

// SetSize updates the available area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles navigation. Opening and creating are reported as OpenMsg
// and CreateMsg for the root model to act on.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Welcome.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Welcome.Down):
			if m.cursor < len(m.projects)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Welcome.Open):
			if name, ok := m.Selected(); ok {
				return m.open(name)
			}
		case key.Matches(msg, keys.Welcome.Create):
			return m.create()
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return nil
		}
		if z := zone.Get(zoneCreate); z != nil && z.InBounds(msg) {
			return m.create()
		}
		for i, name := range m.projects {
			if z := zone.Get(rowZoneID(i)); z != nil && z.InBounds(msg) {
				m.cursor = i
				return m.open(name)
			}
		}
	}
	return nil
}

// A failed request leaves its label until the next request replaces it; the
// failure itself is shown in the status bar.
func (m *Model) open(name string) tea.Cmd {
	m.pending = "Opening " + name + "…"
	return func() tea.Msg { return OpenMsg{Name: name} }
}

func (m *Model) create() tea.Cmd {
	m.pending = "Creating project…"
	return func() tea.Msg { return CreateMsg{} }
}

func rowZoneID(i int) string {
	return fmt.Sprintf("%s%d", zonePrefix, i)
}

// View renders the screen. Rows are marked as mouse zones; the root model
// scans them.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Welcome to atelier"))
	b.WriteString("\n\n")

	rowWidth := max(m.width-4, 20)
	switch {
	case !m.loaded:
		b.WriteString(styles.HintStyle.Render("  Loading projects…"))
		b.WriteString("\n")
	case len(m.projects) == 0:
		b.WriteString(styles.HintStyle.Render("  No projects yet."))
		b.WriteString("\n")
	default:
		for i, name := range m.projects {
			prefix := "  "
			if i == m.cursor {
				prefix = styles.SelectionIndicatorStyle.Render(">") + " "
			}
			row := prefix + styles.PadRight(styles.TruncateString(name, rowWidth), rowWidth)
			b.WriteString(zone.Mark(rowZoneID(i), row))
			b.WriteString("\n")
		}
	}

	if m.pending != "" {
		b.WriteString(styles.StatusProcessStyle.Render("  " + m.pending))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(zone.Mark(zoneCreate, styles.HintStyle.Render("  [n] New project")))
	b.WriteString("\n\n")
	b.WriteString(styles.HintStyle.Render(helpLine()))
	return b.String()
}

func helpLine() string {
	var parts []string
	for _, binding := range keys.Welcome.ShortHelp() {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return "  " + strings.Join(parts, " • ")
}
