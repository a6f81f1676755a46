package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/stewardapp/steward/internal/engine"
)

func (h *Handlers) addNote(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	title := inv.Arg("title")
	if title == "" {
		return nil, fmt.Errorf("note title is required")
	}

	note, err := h.store.CreateNote(ctx, inv.Project.ID,
		title, inv.Flag("content", ""), inv.Flag("tags", ""))
	if err != nil {
		return nil, err
	}
	return engine.Successf("Added note %q to %s.", note.Title, inv.Project.Name).
		WithMeta("note_id", note.ID), nil
}

func (h *Handlers) listNotes(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	notes, err := h.store.ListNotes(ctx, inv.Project.ID)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return engine.Infof("No notes in %s.", inv.Project.Name), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Notes in %s (%d):\n", inv.Project.Name, len(notes))
	for i, n := range notes {
		fmt.Fprintf(&b, "%d. %s", i+1, n.Title)
		if n.Tags != "" {
			fmt.Fprintf(&b, " [%s]", n.Tags)
		}
		b.WriteString("\n")
	}
	return engine.DataResponse(strings.TrimRight(b.String(), "\n"), notes), nil
}

func (h *Handlers) viewNote(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	note, err := h.store.GetNote(ctx, inv.Resolution.Entity.ID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Note %q\n", note.Title)
	if note.Tags != "" {
		fmt.Fprintf(&b, "Tags: %s\n", note.Tags)
	}
	b.WriteString(note.Content)
	return engine.DataResponse(b.String(), note), nil
}

var editableNoteFields = []string{"title", "content", "tags"}

func (h *Handlers) editNote(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	id := inv.Resolution.Entity.ID

	var changed []string
	for _, field := range editableNoteFields {
		value, ok := inv.Cmd.Flags[field]
		if !ok {
			continue
		}
		if err := h.store.UpdateNoteField(ctx, id, field, value); err != nil {
			return nil, err
		}
		changed = append(changed, field)
	}
	if len(changed) == 0 {
		return nil, fmt.Errorf("nothing to change: pass --title, --content, or --tags")
	}
	return engine.Successf("Updated %s of %q.", strings.Join(changed, ", "), inv.Resolution.Entity.Title), nil
}

func (h *Handlers) deleteNote(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	if err := h.store.DeleteNote(ctx, inv.Resolution.Entity.ID); err != nil {
		return nil, err
	}
	return engine.Successf("Deleted note %q.", inv.Resolution.Entity.Title), nil
}
