package presenter

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/atelier/internal/backend"
	"github.com/zjrosen/atelier/internal/executor"
	"github.com/zjrosen/atelier/internal/graph"
	"github.com/zjrosen/atelier/internal/log"
	"github.com/zjrosen/atelier/internal/module"
	"github.com/zjrosen/atelier/internal/undo"
)

var errNoResult = errors.New("backend returned no result")

// Session is the live state of the displayed project.
type Session struct {
	Project backend.ProjectRef
	View    ProjectView
	Graph   *graph.Controller
	Text    string
	Module  *module.Model
	History *undo.Repository
}

// SessionManager owns the single active session.
//
// The slot is cleared synchronously before every initialization starts, so
// an initialization that was already running can only ever install its
// session over an empty slot or over a session that completed earlier.
// Initializations are not cancelled: when two overlap, the one completing
// last is installed.
type SessionManager struct {
	exec     *executor.Executor
	api      backend.API
	view     View
	status   *Registry
	switcher *ViewSwitch

	current  *Session
	requests int
}

// NewSessionManager creates a manager with an empty slot.
func NewSessionManager(exec *executor.Executor, api backend.API, view View, status *Registry, switcher *ViewSwitch) *SessionManager {
	return &SessionManager{
		exec:     exec,
		api:      api,
		view:     view,
		status:   status,
		switcher: switcher,
	}
}

// Current returns the installed session, or nil.
func (m *SessionManager) Current() *Session {
	return m.current
}

// RequestSession replaces the current session with one for ref.
func (m *SessionManager) RequestSession(ref backend.ProjectRef) {
	if ref == nil {
		log.Error(log.CatSession, "Session requested without a project")
		return
	}
	if m.current != nil {
		log.Debug(log.CatSession, "Dropping session", "project", m.current.Project.Name())
	}
	m.current = nil

	m.requests++
	req := m.requests
	log.Info(log.CatSession, "Initializing project", "project", ref.Name(), "request", req)

	executor.Spawn(m.exec,
		func(ctx context.Context) (*backend.InitResult, error) {
			return m.api.InitializeProject(ctx, ref)
		},
		func(res *backend.InitResult, err error) {
			if err == nil && res == nil {
				err = errNoResult
			}
			if err != nil {
				log.ErrorErr(log.CatSession, "Initialization failed", err, "project", ref.Name(), "request", req)
				m.status.OnEvent(fmt.Sprintf("Failed to initialize project: %v", err))
				return
			}
			m.install(ref, req, res)
		},
	)
}

// SetupCurrentProject starts a session for the backend's current project.
// With no current project it only clears the slot.
func (m *SessionManager) SetupCurrentProject() {
	ref := m.api.CurrentProject()
	if ref == nil {
		log.Debug(log.CatSession, "No current project")
		m.current = nil
		return
	}
	m.RequestSession(ref)
}

func (m *SessionManager) install(ref backend.ProjectRef, req int, res *backend.InitResult) {
	s := &Session{
		Project: ref,
		View:    m.view.ProjectView(),
		Graph:   res.Graph,
		Text:    res.Text,
		Module:  res.Module,
		History: res.History,
	}
	if s.History == nil && s.Module != nil {
		s.History = s.Module.History()
	}

	// Edits made while initializing must not be undoable.
	if s.History != nil {
		s.History.ClearAll()
	}
	if s.Module != nil && s.Module.History() != s.History {
		s.Module.History().ClearAll()
	}

	if m.current != nil {
		log.Debug(log.CatSession, "Replacing session", "old", m.current.Project.Name(), "new", ref.Name())
	}
	m.current = s
	log.Info(log.CatSession, "Session installed", "project", ref.Name(), "request", req)

	if s.View != nil {
		s.View.Show(s)
	}
	m.switcher.Switch()
}
