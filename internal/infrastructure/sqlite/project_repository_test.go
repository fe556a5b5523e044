package sqlite

import (
	"fmt"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func setupTestRepo(t *testing.T) *ProjectRepository {
	t.Helper()
	db, _ := openTestDB(t)
	return db.ProjectRepository()
}

func newProject(name string) Project {
	return Project{ID: uuid.New(), Name: name, CreatedAt: time.UnixMilli(1_000_000)}
}

func TestProjectRepository_InsertAndFind(t *testing.T) {
	repo := setupTestRepo(t)
	p := newProject("Foo")
	require.NoError(t, repo.Insert(p))

	byID, err := repo.FindByID(p.ID)
	require.NoError(t, err)
	require.Equal(t, p.Name, byID.Name)
	require.True(t, byID.OpenedAt.IsZero())
	require.Equal(t, p.CreatedAt.UnixMilli(), byID.CreatedAt.UnixMilli())

	byName, err := repo.FindByName("Foo")
	require.NoError(t, err)
	require.Equal(t, p.ID, byName.ID)
}

func TestProjectRepository_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.FindByID(uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByName("missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, repo.MarkOpened(uuid.New(), time.Now()), ErrNotFound)
}

func TestProjectRepository_DuplicateName(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.Insert(newProject("Foo")))

	err := repo.Insert(newProject("Foo"))
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestProjectRepository_ListOrder(t *testing.T) {
	repo := setupTestRepo(t)
	for _, name := range []string{"Charlie", "Alpha", "Bravo", "Delta"} {
		require.NoError(t, repo.Insert(newProject(name)))
	}
	bravo, err := repo.FindByName("Bravo")
	require.NoError(t, err)
	delta, err := repo.FindByName("Delta")
	require.NoError(t, err)
	require.NoError(t, repo.MarkOpened(bravo.ID, time.UnixMilli(2_000)))
	require.NoError(t, repo.MarkOpened(delta.ID, time.UnixMilli(1_000)))

	projects, err := repo.List()
	require.NoError(t, err)

	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	require.Equal(t, []string{"Bravo", "Delta", "Alpha", "Charlie"}, names)
}

// List always returns opened projects newest first, then the rest by name.
func TestProjectRepository_ListOrderProperty(t *testing.T) {
	dir := t.TempDir()
	run := 0
	rapid.Check(t, func(rt *rapid.T) {
		run++
		db, err := NewDB(filepath.Join(dir, fmt.Sprintf("prop-%d.db", run)))
		if err != nil {
			rt.Fatalf("NewDB: %v", err)
		}
		defer db.Close()
		repo := db.ProjectRepository()

		n := rapid.IntRange(0, 8).Draw(rt, "projects")
		var want []Project
		for i := 0; i < n; i++ {
			p := newProject(fmt.Sprintf("P%02d", i))
			if rapid.Bool().Draw(rt, "opened") {
				p.OpenedAt = time.UnixMilli(int64(rapid.IntRange(1, 1000).Draw(rt, "openedAt")))
			}
			if err := repo.Insert(p); err != nil {
				rt.Fatalf("Insert: %v", err)
			}
			want = append(want, p)
		}
		sort.SliceStable(want, func(i, j int) bool {
			a, b := want[i], want[j]
			if a.OpenedAt.IsZero() != b.OpenedAt.IsZero() {
				return !a.OpenedAt.IsZero()
			}
			if !a.OpenedAt.Equal(b.OpenedAt) {
				return a.OpenedAt.After(b.OpenedAt)
			}
			return a.Name < b.Name
		})

		got, err := repo.List()
		if err != nil {
			rt.Fatalf("List: %v", err)
		}
		if len(got) != len(want) {
			rt.Fatalf("got %d projects, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i].ID != want[i].ID {
				rt.Fatalf("position %d: got %s, want %s", i, got[i].Name, want[i].Name)
			}
		}
	})
}
