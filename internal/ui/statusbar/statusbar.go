// Package statusbar renders the one-line status bar: a spinner with the
// labels of in-flight processes, followed by recent events that expire after
// a timeout.
package statusbar

import (
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/atelier/internal/presenter"
	"github.com/zjrosen/atelier/internal/ui/styles"
)

// maxEvents bounds how many events are kept at once.
const maxEvents = 3

const separator = " · "

// ExpireMsg prunes expired events.
type ExpireMsg struct{}

type event struct {
	label string
	at    time.Time
}

type process struct {
	id    presenter.ProcessID
	label string
}

// Model is the status bar. It is mutated through a pointer because the
// presenter holds on to it as its presenter.StatusBar.
type Model struct {
	spinner   spinner.Model
	events    []event
	processes []process
	nextID    presenter.ProcessID
	timeout   time.Duration
	width     int
	now       func() time.Time

	spinning    bool
	expiryArmed bool
}

var _ presenter.StatusBar = (*Model)(nil)

// New creates an empty status bar. Events stay visible for timeout; zero
// keeps them until displaced by newer ones.
func New(timeout time.Duration) *Model {
	return &Model{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.SpinnerStyle)),
		timeout: timeout,
		now:     time.Now,
	}
}

// AddEvent shows label until it expires.
func (m *Model) AddEvent(label string) {
	m.events = append(m.events, event{label: label, at: m.now()})
	if len(m.events) > maxEvents {
		m.events = slices.Delete(m.events, 0, len(m.events)-maxEvents)
	}
}

// AddProcess shows label with a spinner until FinishProcess.
func (m *Model) AddProcess(label string) presenter.ProcessID {
	m.nextID++
	m.processes = append(m.processes, process{id: m.nextID, label: label})
	return m.nextID
}

// FinishProcess removes the process. Unknown ids are ignored.
func (m *Model) FinishProcess(id presenter.ProcessID) {
	m.processes = slices.DeleteFunc(m.processes, func(p process) bool { return p.id == id })
}

// Busy reports whether any process is in flight.
func (m *Model) Busy() bool { return len(m.processes) > 0 }

// Events returns the visible event labels, oldest first.
func (m *Model) Events() []string {
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.label)
	}
	return out
}

// Processes returns the in-flight process labels in start order.
func (m *Model) Processes() []string {
	out := make([]string, 0, len(m.processes))
	for _, p := range m.processes {
		out = append(out, p.label)
	}
	return out
}

// SetWidth sets the rendered width. Zero disables truncation.
func (m *Model) SetWidth(width int) { m.width = width }

// Cmd returns the ticks the current state needs: the spinner while busy and
// an expiry timer while events are shown. Call it after mutating the bar.
func (m *Model) Cmd() tea.Cmd {
	var cmds []tea.Cmd
	if m.Busy() && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	if len(m.events) > 0 && m.timeout > 0 && !m.expiryArmed {
		m.expiryArmed = true
		cmds = append(cmds, m.expireAfter(m.timeout-m.now().Sub(m.events[0].at)))
	}
	return tea.Batch(cmds...)
}

// Update handles spinner ticks and expiry.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.Busy() {
			m.spinning = false
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case ExpireMsg:
		m.expiryArmed = false
		m.expire()
		return m.Cmd()
	}
	return nil
}

func (m *Model) expire() {
	if m.timeout <= 0 {
		return
	}
	now := m.now()
	m.events = slices.DeleteFunc(m.events, func(e event) bool {
		return now.Sub(e.at) >= m.timeout
	})
}

func (m *Model) expireAfter(d time.Duration) tea.Cmd {
	if d < 0 {
		d = 0
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return ExpireMsg{} })
}

// View renders the bar on one line.
func (m *Model) View() string {
	var parts []string
	if m.Busy() {
		parts = append(parts, m.spinner.View()+" "+styles.StatusProcessStyle.Render(strings.Join(m.Processes(), separator)))
	}
	if len(m.events) > 0 {
		parts = append(parts, styles.StatusEventStyle.Render(strings.Join(m.Events(), separator)))
	}
	line := strings.Join(parts, separator)
	if m.width > 0 {
		// Two cells of padding.
		line = styles.TruncateString(line, max(m.width-2, 1))
	}
	return styles.StatusBarStyle.Render(line)
}
