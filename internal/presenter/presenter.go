// Package presenter reconciles the backend's notification stream and the
// user's commands with a single displayed session.
//
// All presenter state lives on one executor.Executor: notifications,
// command continuations and initialization results run as tasks on it, one
// at a time, so the session slot and the process registry need no locks.
// Backend calls are spawned off the queue and never block a task.
package presenter

import (
	"context"
	"runtime"
	"weak"

	"github.com/zjrosen/atelier/internal/backend"
	"github.com/zjrosen/atelier/internal/executor"
	"github.com/zjrosen/atelier/internal/log"
)

// state is everything the notification loop reaches through its weak
// reference.
type state struct {
	registry *Registry
	switcher *ViewSwitch
	sessions *SessionManager
	commands *Commands
}

// Presenter bridges a backend and a view.
type Presenter struct {
	exec   *executor.Executor
	api    backend.API
	st     *state
	cancel context.CancelFunc
}

// New wires the presenter components. Nothing talks to the backend until
// Start.
func New(api backend.API, view View, exec *executor.Executor) *Presenter {
	registry := NewRegistry(view.StatusBar())
	switcher := NewViewSwitch(view)
	return &Presenter{
		exec: exec,
		api:  api,
		st: &state{
			registry: registry,
			switcher: switcher,
			sessions: NewSessionManager(exec, api, view, registry, switcher),
			commands: NewCommands(exec, api, view, registry, switcher),
		},
	}
}

// Start subscribes to the notification stream, fills the welcome screen and
// opens the backend's current project if it has one. The stream
// subscription lives until ctx is done, Close is called or the presenter is
// collected.
func (p *Presenter) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	runtime.AddCleanup(p.st, func(cancel context.CancelFunc) { cancel() }, cancel)

	log.Info(log.CatSession, "Starting presenter")
	multiplex(ctx, p.api, p.exec, weak.Make(p.st))

	st := weak.Make(p.st)
	p.exec.Post(func() {
		s := st.Value()
		if s == nil {
			return
		}
		s.commands.PopulateWelcomeScreen()
		s.sessions.SetupCurrentProject()
	})
}

// Close ends the notification subscription.
func (p *Presenter) Close() {
	if p.cancel != nil {
		p.cancel()
	}
}

// OpenProject opens the project named name.
func (p *Presenter) OpenProject(name string) {
	p.st.commands.OpenProject(name)
}

// CreateProject creates and opens a new project.
func (p *Presenter) CreateProject() {
	p.st.commands.CreateProject()
}

// RequestSession replaces the session with one for ref.
func (p *Presenter) RequestSession(ref backend.ProjectRef) {
	p.st.sessions.RequestSession(ref)
}

// Session returns the installed session, or nil.
func (p *Presenter) Session() *Session {
	return p.st.sessions.Current()
}

// ViewState returns the attached screen.
func (p *Presenter) ViewState() ViewState {
	return p.st.switcher.State()
}

// OnViewSwitched registers fn to run when the project screen is attached.
func (p *Presenter) OnViewSwitched(fn func()) {
	p.st.switcher.OnSwitched(fn)
}

// Registry exposes the process registry.
func (p *Presenter) Registry() *Registry {
	return p.st.registry
}
