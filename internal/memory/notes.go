package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Note is free-form project documentation.
type Note struct {
	ID        string
	ProjectID string
	Title     string
	Content   string
	Tags      string // comma-separated
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateNote inserts a note.
func (s *Store) CreateNote(ctx context.Context, projectID, title, content, tags string) (*Note, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, project_id, title, content, tags)
		VALUES (?, ?, ?, ?, ?)
	`, id, projectID, title, content, tags)
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return s.GetNote(ctx, id)
}

// GetNote returns the note with the given ID, or ErrNotFound.
func (s *Store) GetNote(ctx context.Context, id string) (*Note, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, title, content, tags, created_at, updated_at
		FROM notes WHERE id = ?
	`, id)

	var n Note
	err := row.Scan(&n.ID, &n.ProjectID, &n.Title, &n.Content, &n.Tags, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}
	return &n, nil
}

// ListNotes returns a project's notes in natural order (creation time).
func (s *Store) ListNotes(ctx context.Context, projectID string) ([]*Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, title, content, tags, created_at, updated_at
		FROM notes WHERE project_id = ?
		ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.ProjectID, &n.Title, &n.Content, &n.Tags, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

// noteColumns lists the fields UpdateNoteField accepts.
var noteColumns = map[string]string{
	"title":   "title",
	"content": "content",
	"tags":    "tags",
}

// UpdateNoteField sets one editable field on a note.
func (s *Store) UpdateNoteField(ctx context.Context, id, field, value string) error {
	column, ok := noteColumns[field]
	if !ok {
		return fmt.Errorf("note has no editable field %q", field)
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE notes SET %s = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, column),
		value, id)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
