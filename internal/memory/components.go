package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Component is an architectural building block of a project.
type Component struct {
	ID          string
	ProjectID   string
	Name        string
	Category    string
	Description string
	CreatedAt   time.Time
}

// CreateComponent inserts a component.
func (s *Store) CreateComponent(ctx context.Context, projectID, name, category, description string) (*Component, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO components (id, project_id, name, category, description)
		VALUES (?, ?, ?, ?, ?)
	`, id, projectID, name, category, description)
	if err != nil {
		return nil, fmt.Errorf("create component: %w", err)
	}
	return s.GetComponent(ctx, id)
}

// GetComponent returns the component with the given ID, or ErrNotFound.
func (s *Store) GetComponent(ctx context.Context, id string) (*Component, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, category, description, created_at
		FROM components WHERE id = ?
	`, id)

	var c Component
	err := row.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Category, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get component: %w", err)
	}
	return &c, nil
}

// ListComponents returns a project's components in natural order, optionally
// filtered by category.
func (s *Store) ListComponents(ctx context.Context, projectID, category string) ([]*Component, error) {
	query := `
		SELECT id, project_id, name, category, description, created_at
		FROM components WHERE project_id = ?`
	args := []any{projectID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()

	var components []*Component
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Category, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		components = append(components, &c)
	}
	return components, rows.Err()
}

// DeleteComponent removes a component.
func (s *Store) DeleteComponent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM components WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete component: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// StackEntry records one technology a project uses.
type StackEntry struct {
	ID        string
	ProjectID string
	Name      string
	Layer     string
	Version   string
	CreatedAt time.Time
}

// CreateStackEntry inserts a stack entry.
func (s *Store) CreateStackEntry(ctx context.Context, projectID, name, layer, version string) (*StackEntry, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stack_entries (id, project_id, name, layer, version)
		VALUES (?, ?, ?, ?, ?)
	`, id, projectID, name, layer, version)
	if err != nil {
		return nil, fmt.Errorf("create stack entry: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, layer, version, created_at
		FROM stack_entries WHERE id = ?
	`, id)
	var e StackEntry
	if err := row.Scan(&e.ID, &e.ProjectID, &e.Name, &e.Layer, &e.Version, &e.CreatedAt); err != nil {
		return nil, fmt.Errorf("get stack entry: %w", err)
	}
	return &e, nil
}

// ListStackEntries returns a project's stack in natural order.
func (s *Store) ListStackEntries(ctx context.Context, projectID string) ([]*StackEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, name, layer, version, created_at
		FROM stack_entries WHERE project_id = ?
		ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list stack entries: %w", err)
	}
	defer rows.Close()

	var entries []*StackEntry
	for rows.Next() {
		var e StackEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Name, &e.Layer, &e.Version, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stack entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
