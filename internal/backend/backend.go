// Package backend defines the capability interface the presenter consumes,
// the values exchanged through it, and the unified notification stream.
package backend

import (
	"context"

	"github.com/google/uuid"

	"github.com/zjrosen/atelier/internal/graph"
	"github.com/zjrosen/atelier/internal/module"
	"github.com/zjrosen/atelier/internal/undo"
)

// ProjectID identifies a project across renames.
type ProjectID = uuid.UUID

// Project is one entry of a project listing.
type Project struct {
	Name string
	ID   ProjectID
}

// ProjectRef is a reference to the backend's model of a project.
type ProjectRef interface {
	ID() ProjectID
	Name() string
}

// InitResult is everything a successful initialization produces.
type InitResult struct {
	Graph   *graph.Controller
	Text    string
	Module  *module.Model
	History *undo.Repository
}

// API is the capability interface the presenter talks to.
type API interface {
	// ListProjects returns every known project in backend order.
	ListProjects(ctx context.Context) ([]Project, error)

	// OpenProject makes the project current. Success is announced on the
	// notification stream with ProjectOpened.
	OpenProject(ctx context.Context, id ProjectID) error

	// CreateProject creates a project and makes it current. Success is
	// announced with NewProjectCreated.
	CreateProject(ctx context.Context) error

	// InitializeProject loads the project's main module.
	InitializeProject(ctx context.Context, ref ProjectRef) (*InitResult, error)

	// CurrentProject returns the current project, or nil when none is open.
	CurrentProject() ProjectRef

	// Subscribe returns the unified notification stream. Items arrive in
	// emission order; the channel closes when ctx is done or the backend
	// shuts down.
	Subscribe(ctx context.Context) <-chan Notification
}

// ref is the ProjectRef implementation shared by the backends in this
// module.
type ref struct {
	id   ProjectID
	name string
}

// NewProjectRef returns a ProjectRef for the given id and name.
func NewProjectRef(id ProjectID, name string) ProjectRef {
	return ref{id: id, name: name}
}

func (r ref) ID() ProjectID  { return r.id }
func (r ref) Name() string   { return r.name }
func (r ref) String() string { return r.name + " (" + r.id.String() + ")" }
