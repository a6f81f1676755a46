package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Todo is a single work item inside a project.
type Todo struct {
	ID        string
	ProjectID string
	Title     string
	Content   string
	Priority  string
	Status    string
	DueAt     *time.Time
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTodo carries the fields accepted when creating a todo. Zero values
// fall back to column defaults (priority "medium", status "todo").
type NewTodo struct {
	Title    string
	Content  string
	Priority string
	Status   string
	DueAt    *time.Time
}

// CreateTodo inserts a todo at the end of the project's ordering.
func (s *Store) CreateTodo(ctx context.Context, projectID string, nt NewTodo) (*Todo, error) {
	if nt.Priority == "" {
		nt.Priority = "medium"
	}
	if nt.Status == "" {
		nt.Status = "todo"
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (id, project_id, title, content, priority, status, due_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM todos WHERE project_id = ?))
	`, id, projectID, nt.Title, nt.Content, nt.Priority, nt.Status, nt.DueAt, projectID)
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	return s.GetTodo(ctx, id)
}

// GetTodo returns the todo with the given ID, or ErrNotFound.
func (s *Store) GetTodo(ctx context.Context, id string) (*Todo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, title, content, priority, status, due_at, position, created_at, updated_at
		FROM todos WHERE id = ?
	`, id)

	t, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

// TodoFilter narrows ListTodos. Empty fields match everything.
type TodoFilter struct {
	Status   string
	Priority string
}

// ListTodos returns a project's todos in natural order: position, then
// creation time. This is the ordering ordinal references index into.
func (s *Store) ListTodos(ctx context.Context, projectID string, filter TodoFilter) ([]*Todo, error) {
	query := `
		SELECT id, project_id, title, content, priority, status, due_at, position, created_at, updated_at
		FROM todos WHERE project_id = ?`
	args := []any{projectID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, filter.Priority)
	}
	query += ` ORDER BY position, created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []*Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// todoColumns lists the fields UpdateTodoField accepts. Guarding here keeps
// handler bugs from turning into SQL injection via the field name.
var todoColumns = map[string]string{
	"title":    "title",
	"content":  "content",
	"priority": "priority",
	"status":   "status",
	"due":      "due_at",
}

// UpdateTodoField sets one editable field on a todo.
func (s *Store) UpdateTodoField(ctx context.Context, id, field, value string) error {
	column, ok := todoColumns[field]
	if !ok {
		return fmt.Errorf("todo has no editable field %q", field)
	}

	var bound any = value
	if field == "due" {
		due, err := ParseDueDate(value)
		if err != nil {
			return err
		}
		bound = due
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE todos SET %s = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, column),
		bound, id)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteTodo marks a todo done.
func (s *Store) CompleteTodo(ctx context.Context, id string) error {
	return s.UpdateTodoField(ctx, id, "status", "done")
}

// DeleteTodo removes a todo.
func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DueTodos returns unfinished todos due within the window, across all
// projects, ordered by due date. Used by the reminders digest.
func (s *Store) DueTodos(ctx context.Context, window time.Duration) ([]*Todo, error) {
	cutoff := time.Now().Add(window)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, title, content, priority, status, due_at, position, created_at, updated_at
		FROM todos
		WHERE status != 'done' AND due_at IS NOT NULL AND due_at <= ?
		ORDER BY due_at, id
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("due todos: %w", err)
	}
	defer rows.Close()

	var todos []*Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// ParseDueDate parses the date forms the command language accepts:
// "2006-01-02", "Jan 2" (current year), "today", "tomorrow", and "+Nd"
// (N days from today). Relative forms resolve against the local date.
func ParseDueDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch strings.ToLower(v) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}

	if rest, ok := strings.CutPrefix(v, "+"); ok {
		if days, ok := strings.CutSuffix(rest, "d"); ok {
			if n, err := strconv.Atoi(days); err == nil && n > 0 {
				return today.AddDate(0, 0, n), nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid due date %q, relative form is +Nd", value)
	}

	if due, err := time.Parse("2006-01-02", v); err == nil {
		return due, nil
	}
	if due, err := time.Parse("Jan 2", v); err == nil {
		return time.Date(now.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("invalid due date %q, expected YYYY-MM-DD, \"Jan 2\", today, tomorrow, or +Nd", value)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (*Todo, error) {
	var t Todo
	var due sql.NullTime
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Content, &t.Priority,
		&t.Status, &due, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		t.DueAt = &due.Time
	}
	return &t, nil
}
