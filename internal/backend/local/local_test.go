package local

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/atelier/internal/backend"
	"github.com/zjrosen/atelier/internal/cachemanager"
	"github.com/zjrosen/atelier/internal/infrastructure/sqlite"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		ProjectsDir:  filepath.Join(dir, "projects"),
		Database:     filepath.Join(dir, "atelier.db"),
		ListCacheTTL: time.Minute,
	}
}

func newBackend(t *testing.T, cfg Config) *Backend {
	t.Helper()
	b, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// clock returns a now func advancing one minute per call.
func clock() func() time.Time {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		at = at.Add(time.Minute)
		return at
	}
}

func subscribe(t *testing.T, b *Backend) <-chan backend.Notification {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return b.Subscribe(ctx)
}

func next(t *testing.T, ch <-chan backend.Notification) backend.Notification {
	t.Helper()
	select {
	case n, ok := <-ch:
		require.True(t, ok, "stream closed")
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func names(projects []backend.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Name)
	}
	return out
}

func TestCreate_NamesAndFiles(t *testing.T) {
	cfg := testConfig(t)
	b := newBackend(t, cfg)
	ctx := context.Background()

	first, err := b.Create(ctx)
	require.NoError(t, err)
	second, err := b.Create(ctx)
	require.NoError(t, err)

	require.Equal(t, "Unnamed", first.Name)
	require.Equal(t, "Unnamed_1", second.Name)

	data, err := os.ReadFile(filepath.Join(cfg.ProjectsDir, "Unnamed", "src", "Main.atl"))
	require.NoError(t, err)
	require.Equal(t, Template, string(data))

	current := b.CurrentProject()
	require.NotNil(t, current)
	require.Equal(t, second.ID, current.ID())
	require.Equal(t, "Unnamed_1", current.Name())
}

func TestCreate_SkipsExistingDirectory(t *testing.T) {
	cfg := testConfig(t)
	b := newBackend(t, cfg)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.ProjectsDir, "Unnamed"), 0o750))

	p, err := b.Create(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Unnamed_1", p.Name)
}

func TestCreateProject_Notifications(t *testing.T) {
	b := newBackend(t, testConfig(t))
	stream := subscribe(t, b)

	require.NoError(t, b.CreateProject(context.Background()))

	started, ok := next(t, stream).(backend.BackgroundTaskStarted)
	require.True(t, ok)
	require.Equal(t, "Creating project", started.Label)
	require.NotEmpty(t, started.Handle)

	require.Equal(t, backend.BackgroundTaskFinished{Handle: started.Handle}, next(t, stream))
	require.Equal(t, backend.NewProjectCreated{}, next(t, stream))
}

func TestListProjects_MostRecentlyOpenedFirst(t *testing.T) {
	b := newBackend(t, testConfig(t))
	b.now = clock()
	ctx := context.Background()

	a, err := b.Create(ctx)
	require.NoError(t, err)
	_, err = b.Create(ctx)
	require.NoError(t, err)

	projects, err := b.ListProjects(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Unnamed_1", "Unnamed"}, names(projects))

	require.NoError(t, b.OpenProject(ctx, a.ID))

	projects, err = b.ListProjects(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Unnamed", "Unnamed_1"}, names(projects))
}

func TestListProjects_Cached(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want []string
	}{
		{name: "cached", ttl: time.Minute, want: []string{}},
		{name: "cache disabled", ttl: 0, want: []string{"Outside"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.ListCacheTTL = tt.ttl
			b := newBackend(t, cfg)
			ctx := context.Background()

			projects, err := b.ListProjects(ctx)
			require.NoError(t, err)
			require.Empty(t, projects)

			require.NoError(t, b.repo.Insert(sqlite.Project{ID: uuid.New(), Name: "Outside", CreatedAt: time.Now()}))

			projects, err = b.ListProjects(ctx)
			require.NoError(t, err)
			require.Equal(t, tt.want, names(projects))
		})
	}
}

func TestListProjects_CreateDuringLoadIsNotHidden(t *testing.T) {
	cfg := testConfig(t)
	b := newBackend(t, cfg)
	ctx := context.Background()

	loaded := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	cache := cachemanager.NewMemory[listKey, []backend.Project]("test-listing", cfg.ListCacheTTL, cachemanager.DefaultCleanupInterval)
	b.listing = cachemanager.NewReadThrough[listKey, []backend.Project](cache, cfg.ListCacheTTL,
		func(ctx context.Context, key listKey) ([]backend.Project, error) {
			projects, err := b.loadListing(ctx, key)
			once.Do(func() {
				close(loaded)
				<-release
			})
			return projects, err
		})

	done := make(chan []backend.Project, 1)
	go func() {
		projects, err := b.ListProjects(ctx)
		assert.NoError(t, err)
		done <- projects
	}()

	<-loaded
	_, err := b.Create(ctx)
	require.NoError(t, err)
	close(release)
	require.Empty(t, <-done)

	projects, err := b.ListProjects(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Unnamed"}, names(projects))
}

func TestListProjects_ReturnsCopy(t *testing.T) {
	b := newBackend(t, testConfig(t))
	ctx := context.Background()
	_, err := b.Create(ctx)
	require.NoError(t, err)

	projects, err := b.ListProjects(ctx)
	require.NoError(t, err)
	projects[0].Name = "changed"

	projects, err = b.ListProjects(ctx)
	require.NoError(t, err)
	require.Equal(t, "Unnamed", projects[0].Name)
}

func TestOpenProject(t *testing.T) {
	b := newBackend(t, testConfig(t))
	ctx := context.Background()
	p, err := b.Create(ctx)
	require.NoError(t, err)
	_, err = b.Create(ctx)
	require.NoError(t, err)

	stream := subscribe(t, b)
	require.NoError(t, b.OpenProject(ctx, p.ID))

	require.Equal(t, backend.Event{Label: "Opened project Unnamed"}, next(t, stream))
	require.Equal(t, backend.ProjectOpened{}, next(t, stream))
	require.Equal(t, p.ID, b.CurrentProject().ID())
}

func TestOpenProject_Unknown(t *testing.T) {
	b := newBackend(t, testConfig(t))

	err := b.OpenProject(context.Background(), uuid.New())
	require.ErrorIs(t, err, backend.ErrProjectNotFound)
	require.Nil(t, b.CurrentProject())
}

func TestInitializeProject(t *testing.T) {
	b := newBackend(t, testConfig(t))
	ctx := context.Background()
	p, err := b.Create(ctx)
	require.NoError(t, err)

	stream := subscribe(t, b)
	result, err := b.InitializeProject(ctx, backend.NewProjectRef(p.ID, p.Name))
	require.NoError(t, err)

	require.Equal(t, Template, result.Text)
	require.Same(t, result.Module, result.Graph.Module())
	require.Same(t, result.History, result.Module.History())
	require.Equal(t, 0, result.History.Len())

	nodes, err := result.Graph.Nodes()
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, "operator1", nodes[0].ID)

	started, ok := next(t, stream).(backend.BackgroundTaskStarted)
	require.True(t, ok)
	require.Equal(t, "Initializing project Unnamed", started.Label)
	require.Equal(t, backend.BackgroundTaskFinished{Handle: started.Handle}, next(t, stream))
}

func TestInitializeProject_InsertsMainBlock(t *testing.T) {
	cfg := testConfig(t)
	b := newBackend(t, cfg)
	ctx := context.Background()
	p, err := b.Create(ctx)
	require.NoError(t, err)
	main := filepath.Join(cfg.ProjectsDir, p.Name, "src", "Main.atl")
	require.NoError(t, os.WriteFile(main, []byte("helper x = x\n"), 0o600))

	result, err := b.InitializeProject(ctx, backend.NewProjectRef(p.ID, p.Name))
	require.NoError(t, err)

	require.Equal(t, "helper x = x\nmain =\n", result.Text)
	require.Equal(t, 1, result.History.UndoLen())
}

func TestInitializeProject_MissingModule(t *testing.T) {
	cfg := testConfig(t)
	b := newBackend(t, cfg)
	ctx := context.Background()
	p, err := b.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(cfg.ProjectsDir, p.Name)))

	stream := subscribe(t, b)
	_, err = b.InitializeProject(ctx, backend.NewProjectRef(p.ID, p.Name))
	require.ErrorIs(t, err, os.ErrNotExist)

	started, ok := next(t, stream).(backend.BackgroundTaskStarted)
	require.True(t, ok)
	require.Equal(t, backend.BackgroundTaskFinished{Handle: started.Handle}, next(t, stream))
}

func TestInitializeProject_CanceledContext(t *testing.T) {
	b := newBackend(t, testConfig(t))
	p, err := b.Create(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.InitializeProject(ctx, backend.NewProjectRef(p.ID, p.Name))
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_InitialProject(t *testing.T) {
	cfg := testConfig(t)
	b, err := New(cfg)
	require.NoError(t, err)
	p, err := b.Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, b.Close())

	cfg.Initial = p.Name
	reopened := newBackend(t, cfg)
	require.NotNil(t, reopened.CurrentProject())
	require.Equal(t, p.ID, reopened.CurrentProject().ID())

	cfg.Initial = "Missing"
	require.NoError(t, reopened.Close())
	missing := newBackend(t, cfg)
	require.Nil(t, missing.CurrentProject())
}

func TestClose(t *testing.T) {
	b, err := New(testConfig(t))
	require.NoError(t, err)
	stream := subscribe(t, b)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	select {
	case _, ok := <-stream:
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed")
	}

	_, err = b.ListProjects(context.Background())
	require.ErrorIs(t, err, backend.ErrClosed)
	require.ErrorIs(t, b.CreateProject(context.Background()), backend.ErrClosed)
}

func TestClose_LateSetCurrentStartsNoWatcher(t *testing.T) {
	cfg := testConfig(t)
	cfg.Watch = true
	b := newBackend(t, cfg)
	p, err := b.Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, b.Close())

	// A create or open finishing after Close.
	b.setCurrent(p.ID, p.Name)

	b.mu.Lock()
	defer b.mu.Unlock()
	require.Nil(t, b.watch)
}

func TestWatch_ChangedOnDisk(t *testing.T) {
	cfg := testConfig(t)
	cfg.Watch = true
	cfg.WatchDebounce = 20 * time.Millisecond
	b := newBackend(t, cfg)
	p, err := b.Create(context.Background())
	require.NoError(t, err)

	stream := subscribe(t, b)
	main := filepath.Join(cfg.ProjectsDir, p.Name, "src", "Main.atl")
	require.NoError(t, os.WriteFile(main, []byte("main =\n    operator1 = 7\n"), 0o600))

	require.Equal(t, backend.Event{Label: ChangedOnDisk}, next(t, stream))
}
