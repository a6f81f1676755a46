package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stewardapp/steward/internal/engine"
	"github.com/stewardapp/steward/internal/memory"
)

func (h *Handlers) addTodo(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	title := inv.Arg("title")
	if title == "" {
		return nil, fmt.Errorf("todo title is required")
	}

	nt := memory.NewTodo{
		Title:    title,
		Content:  inv.Flag("content", ""),
		Priority: inv.Flag("priority", ""),
		Status:   inv.Flag("status", ""),
	}
	if due := inv.Flag("due", ""); due != "" {
		parsed, err := memory.ParseDueDate(due)
		if err != nil {
			return nil, err
		}
		nt.DueAt = &parsed
	}

	todo, err := h.store.CreateTodo(ctx, inv.Project.ID, nt)
	if err != nil {
		return nil, err
	}
	return engine.Successf("Added todo #%d %q to %s.", todo.Position, todo.Title, inv.Project.Name).
		WithMeta("todo_id", todo.ID), nil
}

func (h *Handlers) listTodos(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	filter := memory.TodoFilter{
		Status:   inv.Flag("status", ""),
		Priority: inv.Flag("priority", ""),
	}
	todos, err := h.store.ListTodos(ctx, inv.Project.ID, filter)
	if err != nil {
		return nil, err
	}
	if len(todos) == 0 {
		return engine.Infof("No todos in %s.", inv.Project.Name), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Todos in %s (%d):\n", inv.Project.Name, len(todos))
	for i, t := range todos {
		b.WriteString(formatTodoLine(i+1, t))
	}
	return engine.DataResponse(strings.TrimRight(b.String(), "\n"), todos), nil
}

func (h *Handlers) viewTodo(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	todo, err := h.store.GetTodo(ctx, inv.Resolution.Entity.ID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Todo %q\n", todo.Title)
	fmt.Fprintf(&b, "  Status: %s  Priority: %s\n", todo.Status, todo.Priority)
	if todo.DueAt != nil {
		fmt.Fprintf(&b, "  Due: %s\n", todo.DueAt.Format("2006-01-02"))
	}
	if todo.Content != "" {
		fmt.Fprintf(&b, "  %s\n", todo.Content)
	}
	fmt.Fprintf(&b, "  Created: %s", todo.CreatedAt.Format(time.RFC3339))
	return engine.DataResponse(b.String(), todo), nil
}

// editableTodoFields is the order edits are applied and reported in.
var editableTodoFields = []string{"title", "content", "priority", "status", "due"}

func (h *Handlers) editTodo(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	id := inv.Resolution.Entity.ID

	var changed []string
	for _, field := range editableTodoFields {
		value, ok := inv.Cmd.Flags[field]
		if !ok {
			continue
		}
		if err := h.store.UpdateTodoField(ctx, id, field, value); err != nil {
			return nil, err
		}
		changed = append(changed, field)
	}
	if len(changed) == 0 {
		return nil, fmt.Errorf("nothing to change: pass --title, --content, --priority, --status, or --due")
	}
	return engine.Successf("Updated %s of %q.", strings.Join(changed, ", "), inv.Resolution.Entity.Title), nil
}

func (h *Handlers) completeTodo(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	if err := h.store.CompleteTodo(ctx, inv.Resolution.Entity.ID); err != nil {
		return nil, err
	}
	return engine.Successf("Completed %q.", inv.Resolution.Entity.Title), nil
}

func (h *Handlers) deleteTodo(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	if err := h.store.DeleteTodo(ctx, inv.Resolution.Entity.ID); err != nil {
		return nil, err
	}
	return engine.Successf("Deleted todo %q.", inv.Resolution.Entity.Title), nil
}

func formatTodoLine(ordinal int, t *memory.Todo) string {
	mark := " "
	if t.Status == "done" {
		mark = "x"
	}
	line := fmt.Sprintf("[%s] %d. %s (%s)", mark, ordinal, t.Title, t.Priority)
	if t.Status == "in_progress" {
		line += " [in progress]"
	}
	if t.DueAt != nil {
		line += " due " + t.DueAt.Format("2006-01-02")
	}
	return line + "\n"
}
