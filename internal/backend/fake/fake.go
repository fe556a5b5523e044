package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zjrosen/atelier/internal/backend"
	"github.com/zjrosen/atelier/internal/graph"
	"github.com/zjrosen/atelier/internal/module"
)

// Project is a listing entry.
type Project = backend.Project

// DefaultText is the main module every fake project starts with.
const DefaultText = "main =\n    operator1 = 42\n"

// Backend is a fake backend.API.
type Backend struct {
	// ListErr, OpenErr, CreateErr and InitErr make the matching call fail.
	ListErr   error
	OpenErr   error
	CreateErr error
	InitErr   error

	// InitFunc replaces the default initialization when set.
	InitFunc func(ctx context.Context, ref backend.ProjectRef) (*backend.InitResult, error)

	mu          sync.Mutex
	projects    []Project
	texts       map[backend.ProjectID]string
	current     backend.ProjectRef
	listCalls   int
	openCalls   []backend.ProjectID
	createCalls int
	initCalls   []backend.ProjectRef
	notifier    *backend.Notifier
}

var _ backend.API = (*Backend)(nil)

// New creates a fake listing projects in the given order.
func New(projects ...Project) *Backend {
	return &Backend{
		projects: append([]Project(nil), projects...),
		texts:    make(map[backend.ProjectID]string),
		notifier: backend.NewNotifier(),
	}
}

// SetText sets the main module text returned when initializing id.
func (b *Backend) SetText(id backend.ProjectID, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.texts[id] = text
}

// SetCurrent makes p current without emitting anything, as if the backend
// had been started with it open.
func (b *Backend) SetCurrent(p Project) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = backend.NewProjectRef(p.ID, p.Name)
}

// ListProjects returns the configured listing.
func (b *Backend) ListProjects(ctx context.Context) ([]backend.Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++
	if b.ListErr != nil {
		return nil, b.ListErr
	}
	return append([]backend.Project(nil), b.projects...), nil
}

// OpenProject records the call, makes the project current and emits
// ProjectOpened.
func (b *Backend) OpenProject(ctx context.Context, id backend.ProjectID) error {
	b.mu.Lock()
	b.openCalls = append(b.openCalls, id)
	if b.OpenErr != nil {
		b.mu.Unlock()
		return b.OpenErr
	}
	p, ok := b.lookup(id)
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("%w: %s", backend.ErrProjectNotFound, id)
	}
	b.current = backend.NewProjectRef(p.ID, p.Name)
	b.mu.Unlock()

	b.notifier.Emit(backend.ProjectOpened{})
	return nil
}

// CreateProject adds an "Unnamed" project, makes it current and emits
// NewProjectCreated.
func (b *Backend) CreateProject(ctx context.Context) error {
	b.mu.Lock()
	b.createCalls++
	if b.CreateErr != nil {
		b.mu.Unlock()
		return b.CreateErr
	}
	p := Project{Name: b.freeName(), ID: uuid.New()}
	b.projects = append(b.projects, p)
	b.current = backend.NewProjectRef(p.ID, p.Name)
	b.mu.Unlock()

	b.notifier.Emit(backend.NewProjectCreated{})
	return nil
}

// InitializeProject builds a module from the project's text. Like a real
// backend it edits the module while initializing (it appends a node), so the
// returned history is never empty.
func (b *Backend) InitializeProject(ctx context.Context, ref backend.ProjectRef) (*backend.InitResult, error) {
	b.mu.Lock()
	b.initCalls = append(b.initCalls, ref)
	initFunc, initErr := b.InitFunc, b.InitErr
	text, ok := b.texts[ref.ID()]
	b.mu.Unlock()

	if initFunc != nil {
		return initFunc(ctx, ref)
	}
	if initErr != nil {
		return nil, initErr
	}
	if !ok {
		text = DefaultText
	}

	m := module.New(ref.Name()+"/src/Main.atl", text, nil)
	g := graph.New(m)
	if _, err := g.EnsureMain(); err != nil {
		return nil, err
	}
	if _, err := g.AddNode("operator1"); err != nil {
		return nil, err
	}
	return &backend.InitResult{Graph: g, Text: m.Text(), Module: m, History: m.History()}, nil
}

// CurrentProject returns the current project or nil.
func (b *Backend) CurrentProject() backend.ProjectRef {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Subscribe returns the notification stream.
func (b *Backend) Subscribe(ctx context.Context) <-chan backend.Notification {
	return b.notifier.Subscribe(ctx)
}

// Emit pushes n onto the notification stream.
func (b *Backend) Emit(n backend.Notification) {
	b.notifier.Emit(n)
}

// Subscribers returns the number of live stream subscriptions.
func (b *Backend) Subscribers() int {
	return b.notifier.Subscribers()
}

// Close ends the notification stream.
func (b *Backend) Close() {
	b.notifier.Close()
}

// ListCalls returns how many times ListProjects was called.
func (b *Backend) ListCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listCalls
}

// OpenCalls returns the ids OpenProject was called with, in call order.
func (b *Backend) OpenCalls() []backend.ProjectID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]backend.ProjectID(nil), b.openCalls...)
}

// CreateCalls returns how many times CreateProject was called.
func (b *Backend) CreateCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createCalls
}

// InitCalls returns the refs InitializeProject was called with.
func (b *Backend) InitCalls() []backend.ProjectRef {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]backend.ProjectRef(nil), b.initCalls...)
}

func (b *Backend) lookup(id backend.ProjectID) (Project, bool) {
	for _, p := range b.projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

func (b *Backend) freeName() string {
	taken := make(map[string]bool, len(b.projects))
	for _, p := range b.projects {
		taken[p.Name] = true
	}
	name := "Unnamed"
	for i := 1; taken[name]; i++ {
		name = fmt.Sprintf("Unnamed_%d", i)
	}
	return name
}
