// Package app contains the root application model.
//
// The model hosts the presenter's executor: every executor.WakeMsg drains
// the task queue on the Bubble Tea goroutine, so presenter state and the
// screens it drives are only ever touched from Update.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/atelier/internal/backend"
	"github.com/zjrosen/atelier/internal/executor"
	"github.com/zjrosen/atelier/internal/keys"
	"github.com/zjrosen/atelier/internal/log"
	"github.com/zjrosen/atelier/internal/presenter"
	"github.com/zjrosen/atelier/internal/ui/help"
	"github.com/zjrosen/atelier/internal/ui/logoverlay"
	"github.com/zjrosen/atelier/internal/ui/project"
	"github.com/zjrosen/atelier/internal/ui/statusbar"
	"github.com/zjrosen/atelier/internal/ui/welcome"
)

// Options configures the application model.
type Options struct {
	ShowStatusBar bool
	EventTimeout  time.Duration
	// MarkdownStyle is "dark" or "light"; resolve "auto" before calling New.
	MarkdownStyle string
	// Debug enables the log overlay (ctrl+x).
	Debug bool
	// OnProjectOpened runs on the Update goroutine whenever a new session
	// is displayed.
	OnProjectOpened func(name string)
}

// screens is the presenter's view. The presenter keeps it for its whole
// life, so it is shared by pointer between copies of Model.
type screens struct {
	status    *statusbar.Model
	welcome   *welcome.Model
	project   *project.Model
	onProject bool
}

var _ presenter.View = (*screens)(nil)

func (s *screens) StatusBar() presenter.StatusBar         { return s.status }
func (s *screens) WelcomeScreen() presenter.WelcomeView { return s.welcome }
func (s *screens) ProjectView() presenter.ProjectView     { return s.project }

func (s *screens) SwitchToProject() {
	s.onProject = true
	log.Info(log.CatView, "Attached project screen")
}

// Model is the root application state.
type Model struct {
	exec      *executor.Executor
	presenter *presenter.Presenter
	screens   *screens
	opts      Options

	width  int
	height int

	help        help.Model
	logOverlay  logoverlay.Model
	logListener *log.LogListener

	ctx         context.Context
	cancel      context.CancelFunc
	lastSession *presenter.Session
}

// New creates the application model over api and starts the presenter.
func New(api backend.API, opts Options) Model {
	return newModel(api, opts, executor.New())
}

func newModel(api backend.API, opts Options, exec *executor.Executor) Model {
	s := &screens{
		status:  statusbar.New(opts.EventTimeout),
		welcome: welcome.New(),
		project: project.New(opts.MarkdownStyle),
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := presenter.New(api, s, exec)
	p.OnViewSwitched(func() {
		s.welcome.Dismiss()
		log.Debug(log.CatView, "View switched", "state", p.ViewState())
	})
	p.Start(ctx)

	m := Model{
		exec:       exec,
		presenter:  p,
		screens:    s,
		opts:       opts,
		help:       help.New(),
		logOverlay: logoverlay.New(),
		ctx:        ctx,
		cancel:     cancel,
	}
	if opts.Debug {
		m.logListener = log.NewListener(ctx)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.exec.Wake()}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case executor.WakeMsg:
		m.exec.RunPending()
		m.noticeSession()
		return m, tea.Batch(m.exec.Wake(), m.screens.status.Cmd())

	case spinner.TickMsg, statusbar.ExpireMsg:
		return m, m.screens.status.Update(msg)

	case log.LogEvent:
		m.logOverlay.Append(msg.Payload)
		if m.logListener == nil {
			return m, nil
		}
		return m, m.logListener.Listen()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := m.bodyHeight()
		m.screens.status.SetWidth(msg.Width)
		m.screens.welcome.SetSize(msg.Width, bodyHeight)
		m.screens.project.SetSize(msg.Width, bodyHeight)
		m.help.SetSize(msg.Width, msg.Height)
		m.logOverlay.SetSize(msg.Width, msg.Height)
		return m, nil

	case welcome.OpenMsg:
		log.Debug(log.CatCommand, "Open requested", "name", msg.Name)
		m.presenter.OpenProject(msg.Name)
		return m, nil

	case welcome.CreateMsg:
		log.Debug(log.CatCommand, "Create requested")
		m.presenter.CreateProject()
		return m, nil

	case tea.KeyMsg:
		if m.opts.Debug && key.Matches(msg, keys.App.Logs) {
			m.logOverlay.Toggle()
			return m, nil
		}
		if m.logOverlay.Update(msg) {
			return m, nil
		}
		if m.help.Visible() {
			if key.Matches(msg, keys.App.Help) || msg.Type == tea.KeyEsc {
				m.help.Hide()
				return m, nil
			}
		} else if key.Matches(msg, keys.App.Help) {
			if m.screens.onProject {
				m.help.SetScreen(help.Project)
			} else {
				m.help.SetScreen(help.Welcome)
			}
			m.help.Toggle()
			return m, nil
		}
		if key.Matches(msg, keys.App.Quit) {
			m.Close()
			return m, tea.Quit
		}
	}

	if m.screens.onProject {
		return m, m.screens.project.Update(msg)
	}
	return m, m.screens.welcome.Update(msg)
}

// noticeSession reports a newly installed session once.
func (m *Model) noticeSession() {
	s := m.presenter.Session()
	if s == nil || s == m.lastSession {
		return
	}
	m.lastSession = s
	if m.opts.OnProjectOpened != nil && s.Project != nil {
		m.opts.OnProjectOpened(s.Project.Name())
	}
}

func (m Model) bodyHeight() int {
	if m.opts.ShowStatusBar {
		return max(m.height-1, 1)
	}
	return m.height
}

// View implements tea.Model.
func (m Model) View() string {
	var body string
	if m.screens.onProject {
		body = m.screens.project.View()
	} else {
		body = m.screens.welcome.View()
	}

	view := body
	if m.opts.ShowStatusBar {
		view = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body) +
			"\n" + m.screens.status.View()
	}
	view = m.help.Overlay(view)
	if m.opts.Debug {
		view = m.logOverlay.Overlay(view)
	}
	return zone.Scan(strings.TrimRight(view, "\n"))
}

// ViewState returns the attached screen.
func (m Model) ViewState() presenter.ViewState {
	return m.presenter.ViewState()
}

// Close stops the presenter and the executor. Safe to call more than once.
func (m *Model) Close() {
	m.cancel()
	m.presenter.Close()
	m.exec.Close()
}
