package sqlite

import (
	"time"

	"github.com/google/uuid"
)

// Project is a row of the projects table.
type Project struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	// OpenedAt is zero for projects that were never opened.
	OpenedAt time.Time
}

// ProjectModel maps directly to SQL columns, with Unix millisecond times.
type ProjectModel struct {
	ID        string
	Name      string
	CreatedAt int64
	OpenedAt  *int64 // nullable
}

func toProjectModel(p Project) ProjectModel {
	m := ProjectModel{
		ID:        p.ID.String(),
		Name:      p.Name,
		CreatedAt: p.CreatedAt.UnixMilli(),
	}
	if !p.OpenedAt.IsZero() {
		openedAt := p.OpenedAt.UnixMilli()
		m.OpenedAt = &openedAt
	}
	return m
}

func (m ProjectModel) toProject() (Project, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return Project{}, err
	}
	p := Project{
		ID:        id,
		Name:      m.Name,
		CreatedAt: time.UnixMilli(m.CreatedAt),
	}
	if m.OpenedAt != nil {
		p.OpenedAt = time.UnixMilli(*m.OpenedAt)
	}
	return p, nil
}
