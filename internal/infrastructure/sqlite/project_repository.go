package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	msqlite "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("project not found")
	// ErrDuplicateName is returned when inserting a name that is taken.
	ErrDuplicateName = errors.New("project name already exists")
)

const projectColumns = `id, name, created_at, opened_at`

// ProjectRepository reads and writes the projects table.
type ProjectRepository struct {
	db *sql.DB
}

func newProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(scanner interface{ Scan(...any) error }) (Project, error) {
	var model ProjectModel
	if err := scanner.Scan(&model.ID, &model.Name, &model.CreatedAt, &model.OpenedAt); err != nil {
		return Project{}, err
	}
	return model.toProject()
}

// Insert adds p.
func (r *ProjectRepository) Insert(p Project) error {
	model := toProjectModel(p)
	_, err := r.db.Exec(
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?)`,
		model.ID, model.Name, model.CreatedAt, model.OpenedAt,
	)
	var sqliteErr msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == msqlite.ErrConstraintUnique {
		return fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// FindByID returns the project with id.
func (r *ProjectRepository) FindByID(id uuid.UUID) (Project, error) {
	return r.findOne(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id.String())
}

// FindByName returns the project named name.
func (r *ProjectRepository) FindByName(name string) (Project, error) {
	return r.findOne(`SELECT `+projectColumns+` FROM projects WHERE name = ?`, name)
}

func (r *ProjectRepository) findOne(query string, arg any) (Project, error) {
	p, err := scanProject(r.db.QueryRow(query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, fmt.Errorf("failed to find project: %w", err)
	}
	return p, nil
}

// List returns every project, most recently opened first. Projects never
// opened come last; ties are ordered by name.
func (r *ProjectRepository) List() ([]Project, error) {
	rows, err := r.db.Query(
		`SELECT ` + projectColumns + ` FROM projects
		ORDER BY opened_at IS NULL, opened_at DESC, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// MarkOpened records that id was opened at at.
func (r *ProjectRepository) MarkOpened(id uuid.UUID, at time.Time) error {
	res, err := r.db.Exec(`UPDATE projects SET opened_at = ? WHERE id = ?`, at.UnixMilli(), id.String())
	if err != nil {
		return fmt.Errorf("failed to mark project opened: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
