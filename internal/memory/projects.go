package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by getters when no row matches.
var ErrNotFound = errors.New("not found")

// Project is a top-level scope every other entity belongs to.
type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// CreateProject inserts a project with a fresh ID. Names are unique; a
// duplicate name returns an error.
func (s *Store) CreateProject(ctx context.Context, name string) (*Project, error) {
	p := &Project{ID: uuid.NewString(), Name: name}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name) VALUES (?, ?)`, p.ID, p.Name)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, fmt.Errorf("project %q already exists", name)
		}
		return nil, fmt.Errorf("create project: %w", err)
	}

	return s.GetProject(ctx, p.ID)
}

// GetProject returns the project with the given ID, or ErrNotFound.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM projects WHERE id = ?`, id)

	var p Project
	if err := row.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// ListProjects returns all projects in natural order (creation time).
func (s *Store) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM projects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// ProjectCounts summarizes a project's contents for the status command.
type ProjectCounts struct {
	Todos      int
	OpenTodos  int
	Notes      int
	Components int
	Stack      int
}

// CountsForProject returns per-collection counts for one project.
func (s *Store) CountsForProject(ctx context.Context, projectID string) (*ProjectCounts, error) {
	var c ProjectCounts

	queries := []struct {
		dest  *int
		query string
	}{
		{&c.Todos, `SELECT COUNT(*) FROM todos WHERE project_id = ?`},
		{&c.OpenTodos, `SELECT COUNT(*) FROM todos WHERE project_id = ? AND status != 'done'`},
		{&c.Notes, `SELECT COUNT(*) FROM notes WHERE project_id = ?`},
		{&c.Components, `SELECT COUNT(*) FROM components WHERE project_id = ?`},
		{&c.Stack, `SELECT COUNT(*) FROM stack_entries WHERE project_id = ?`},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query, projectID).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
	}

	return &c, nil
}
