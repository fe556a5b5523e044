// Package local is the production backend: a project catalog in SQLite and
// one directory per project on disk.
//
// Layout of a project:
//
//	<projects_dir>/<name>/src/Main.atl
//
// Long operations run as background tasks announced on the notification
// stream, and the main module of the current project is watched for changes
// made outside atelier.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/atelier/internal/backend"
	"github.com/zjrosen/atelier/internal/cachemanager"
	"github.com/zjrosen/atelier/internal/graph"
	"github.com/zjrosen/atelier/internal/infrastructure/sqlite"
	"github.com/zjrosen/atelier/internal/log"
	"github.com/zjrosen/atelier/internal/module"
)

const (
	// MainFile is the main module of every project, relative to its directory.
	MainFile = "src/Main.atl"

	// Template is the main module of a new project.
	Template = "main =\n    operator1 = 42\n"

	unnamed    = "Unnamed"
	listingKey = listKey("projects")
)

type listKey string

// Config configures a local backend.
type Config struct {
	ProjectsDir string
	Database    string
	// Initial names the project that is current from the start. A missing
	// project is logged and ignored.
	Initial       string
	ListCacheTTL  time.Duration
	Watch         bool
	WatchDebounce time.Duration
}

// Backend implements backend.API on the local filesystem.
type Backend struct {
	cfg      Config
	db       *sqlite.DB
	repo     *sqlite.ProjectRepository
	listing  *cachemanager.ReadThrough[listKey, []backend.Project]
	notifier *backend.Notifier
	now      func() time.Time

	createMu sync.Mutex

	mu      sync.Mutex
	current backend.ProjectRef
	watch   *watch
	closed  bool
}

var _ backend.API = (*Backend)(nil)

// New opens the catalog and the projects directory.
func New(cfg Config) (*Backend, error) {
	if err := os.MkdirAll(cfg.ProjectsDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating projects directory: %w", err)
	}
	db, err := sqlite.NewDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	b := &Backend{
		cfg:      cfg,
		db:       db,
		repo:     db.ProjectRepository(),
		notifier: backend.NewNotifier(),
		now:      time.Now,
	}
	cache := cachemanager.NewMemory[listKey, []backend.Project](
		"project-listing", cfg.ListCacheTTL, cachemanager.DefaultCleanupInterval)
	b.listing = cachemanager.NewReadThrough[listKey, []backend.Project](cache, cfg.ListCacheTTL, b.loadListing)

	if cfg.Initial != "" {
		p, err := b.repo.FindByName(cfg.Initial)
		switch {
		case err == nil:
			b.setCurrent(p.ID, p.Name)
		case errors.Is(err, sqlite.ErrNotFound):
			log.Warn(log.CatBackend, "Initial project not found", "name", cfg.Initial)
		default:
			_ = db.Close()
			return nil, fmt.Errorf("looking up project %s: %w", cfg.Initial, err)
		}
	}

	log.Info(log.CatBackend, "Local backend ready", "projects_dir", cfg.ProjectsDir, "database", cfg.Database)
	return b, nil
}

// ListProjects returns the catalog, most recently opened first.
func (b *Backend) ListProjects(ctx context.Context) ([]backend.Project, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	projects, err := b.listing.Get(ctx, listingKey)
	if err != nil {
		return nil, err
	}
	return slices.Clone(projects), nil
}

func (b *Backend) loadListing(ctx context.Context, _ listKey) ([]backend.Project, error) {
	rows, err := b.repo.List()
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	projects := make([]backend.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, backend.Project{Name: row.Name, ID: row.ID})
	}
	return projects, nil
}

// OpenProject makes id current.
func (b *Backend) OpenProject(ctx context.Context, id backend.ProjectID) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	p, err := b.repo.FindByID(id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return fmt.Errorf("%w: %s", backend.ErrProjectNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("looking up project %s: %w", id, err)
	}
	if err := b.repo.MarkOpened(p.ID, b.now()); err != nil {
		return fmt.Errorf("marking project %s opened: %w", p.Name, err)
	}
	b.listing.Invalidate(ctx, listingKey)
	b.setCurrent(p.ID, p.Name)

	log.Info(log.CatBackend, "Opened project", "name", p.Name, "id", p.ID)
	b.notifier.Emit(backend.Event{Label: "Opened project " + p.Name})
	b.notifier.Emit(backend.ProjectOpened{})
	return nil
}

// CreateProject creates a project with the first free "Unnamed" name and
// makes it current.
func (b *Backend) CreateProject(ctx context.Context) error {
	_, err := b.Create(ctx)
	return err
}

// Create is CreateProject returning the new project.
func (b *Backend) Create(ctx context.Context) (backend.Project, error) {
	if err := b.checkOpen(); err != nil {
		return backend.Project{}, err
	}

	var created backend.Project
	err := b.task("Creating project", func() error {
		p, err := b.create(ctx)
		created = p
		return err
	})
	if err != nil {
		return backend.Project{}, err
	}

	b.notifier.Emit(backend.NewProjectCreated{})
	return created, nil
}

func (b *Backend) create(ctx context.Context) (backend.Project, error) {
	b.createMu.Lock()
	defer b.createMu.Unlock()

	if err := ctx.Err(); err != nil {
		return backend.Project{}, err
	}
	name, err := b.freeName()
	if err != nil {
		return backend.Project{}, err
	}

	main := b.mainPath(name)
	if err := os.MkdirAll(filepath.Dir(main), 0o750); err != nil {
		return backend.Project{}, fmt.Errorf("creating project directory: %w", err)
	}
	if err := os.WriteFile(main, []byte(Template), 0o600); err != nil {
		_ = os.RemoveAll(b.projectDir(name))
		return backend.Project{}, fmt.Errorf("writing main module: %w", err)
	}

	now := b.now()
	row := sqlite.Project{ID: uuid.New(), Name: name, CreatedAt: now, OpenedAt: now}
	if err := b.repo.Insert(row); err != nil {
		_ = os.RemoveAll(b.projectDir(name))
		return backend.Project{}, fmt.Errorf("recording project %s: %w", name, err)
	}
	b.listing.Invalidate(ctx, listingKey)
	b.setCurrent(row.ID, row.Name)

	log.Info(log.CatBackend, "Created project", "name", name, "id", row.ID)
	return backend.Project{Name: row.Name, ID: row.ID}, nil
}

// freeName returns Unnamed, Unnamed_1, ... skipping names that are in the
// catalog or already have a directory.
func (b *Backend) freeName() (string, error) {
	rows, err := b.repo.List()
	if err != nil {
		return "", fmt.Errorf("listing projects: %w", err)
	}
	taken := make(map[string]bool, len(rows))
	for _, row := range rows {
		taken[row.Name] = true
	}
	name := unnamed
	for i := 1; ; i++ {
		if !taken[name] {
			if _, err := os.Stat(b.projectDir(name)); os.IsNotExist(err) {
				return name, nil
			}
		}
		name = fmt.Sprintf("%s_%d", unnamed, i)
	}
}

// InitializeProject loads the main module of ref. A module without a main
// block gets one inserted as an undoable edit.
func (b *Backend) InitializeProject(ctx context.Context, ref backend.ProjectRef) (*backend.InitResult, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, fmt.Errorf("%w: no project given", backend.ErrProjectNotFound)
	}

	var result *backend.InitResult
	err := b.task("Initializing project "+ref.Name(), func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := b.mainPath(ref.Name())
		data, err := os.ReadFile(path) //nolint:gosec // G304: path is inside the projects directory
		if err != nil {
			return fmt.Errorf("reading main module of %s: %w", ref.Name(), err)
		}

		m := module.New(path, string(data), nil)
		g := graph.New(m)
		if inserted, err := g.EnsureMain(); err != nil {
			return fmt.Errorf("preparing main block: %w", err)
		} else if inserted {
			log.Debug(log.CatBackend, "Inserted main block", "project", ref.Name())
		}

		result = &backend.InitResult{Graph: g, Text: m.Text(), Module: m, History: m.History()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
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

// Close stops the watcher, ends the notification stream and closes the
// catalog. Calls after the first return nil.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	w := b.watch
	b.watch = nil
	b.mu.Unlock()

	w.stop()
	b.notifier.Close()
	log.Info(log.CatBackend, "Local backend closed")
	return b.db.Close()
}

// task runs fn as a background task visible on the notification stream.
func (b *Backend) task(label string, fn func() error) error {
	handle := backend.TaskHandle(uuid.NewString())
	b.notifier.Emit(backend.BackgroundTaskStarted{Label: label, Handle: handle})
	defer b.notifier.Emit(backend.BackgroundTaskFinished{Handle: handle})

	start := b.now()
	err := fn()
	if err != nil {
		log.ErrorErr(log.CatBackend, "Task failed", err, "task", label)
	} else {
		log.Debug(log.CatBackend, "Task finished", "task", label, "took", b.now().Sub(start))
	}
	return err
}

func (b *Backend) checkOpen() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return backend.ErrClosed
	}
	return nil
}

// setCurrent records the current project and moves the watcher to it. It
// does nothing once the backend is closed.
func (b *Backend) setCurrent(id backend.ProjectID, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.current = backend.NewProjectRef(id, name)
	if !b.cfg.Watch {
		return
	}
	b.watch.stop()
	b.watch = b.startWatch(b.mainPath(name))
}

func (b *Backend) projectDir(name string) string {
	return filepath.Join(b.cfg.ProjectsDir, name)
}

func (b *Backend) mainPath(name string) string {
	return filepath.Join(b.projectDir(name), filepath.FromSlash(MainFile))
}
