// Package handlers implements the leaf operation behind every command:
// the engine resolves scope and references, handlers talk to storage and
// format the reply.
package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/stewardapp/steward/internal/engine"
	"github.com/stewardapp/steward/internal/memory"
	"github.com/stewardapp/steward/internal/registry"
)

// Handlers binds the command surface to the persistence layer.
type Handlers struct {
	store *memory.Store
	specs *registry.Registry
}

// Register builds the full handler registry over the given store.
func Register(specs *registry.Registry, store *memory.Store) *engine.HandlerRegistry {
	h := &Handlers{store: store, specs: specs}
	hr := engine.NewHandlerRegistry()

	hr.Register("add project", h.addProject)
	hr.Register("list projects", h.listProjects)
	hr.Register("view project", h.viewProject)
	hr.Register("switch", h.switchProject)
	hr.Register("status", h.status)
	hr.Register("help", h.help)

	hr.Register("add todo", h.addTodo)
	hr.Register("list todos", h.listTodos)
	hr.Register("view todo", h.viewTodo)
	hr.Register("edit todo", h.editTodo)
	hr.Register("complete todo", h.completeTodo)
	hr.Register("delete todo", h.deleteTodo)

	hr.Register("add note", h.addNote)
	hr.Register("list notes", h.listNotes)
	hr.Register("view note", h.viewNote)
	hr.Register("edit note", h.editNote)
	hr.Register("delete note", h.deleteNote)

	hr.Register("add component", h.addComponent)
	hr.Register("list components", h.listComponents)
	hr.Register("delete component", h.deleteComponent)

	hr.Register("add stack", h.addStack)
	hr.Register("list stack", h.listStack)

	return hr
}

func (h *Handlers) addProject(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	name := inv.Arg("name")
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	p, err := h.store.CreateProject(ctx, name)
	if err != nil {
		return nil, err
	}

	resp := engine.Successf("Created project %q.", p.Name).
		WithMeta("project_id", p.ID)
	// Creating the first project makes it active right away.
	if inv.Project == nil {
		inv.SwitchProject(engine.ProjectScope{ID: p.ID, Name: p.Name})
		resp.Message += " It is now the active project."
	}
	return resp, nil
}

func (h *Handlers) listProjects(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	projects, err := h.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return engine.Infof("No projects yet. Create one with /add project \"Name\"."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Projects (%d):\n", len(projects))
	for i, p := range projects {
		marker := " "
		if inv.Project != nil && inv.Project.ID == p.ID {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %d. %s\n", marker, i+1, p.Name)
	}
	return engine.DataResponse(strings.TrimRight(b.String(), "\n"), projects), nil
}

func (h *Handlers) viewProject(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	p, err := h.store.GetProject(ctx, inv.Resolution.Entity.ID)
	if err != nil {
		return nil, err
	}
	counts, err := h.store.CountsForProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project %s\n", p.Name)
	fmt.Fprintf(&b, "  Todos: %d (%d open)\n", counts.Todos, counts.OpenTodos)
	fmt.Fprintf(&b, "  Notes: %d\n", counts.Notes)
	fmt.Fprintf(&b, "  Components: %d\n", counts.Components)
	fmt.Fprintf(&b, "  Stack entries: %d", counts.Stack)
	return engine.DataResponse(b.String(), p), nil
}

func (h *Handlers) switchProject(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	entity := inv.Resolution.Entity
	inv.SwitchProject(engine.ProjectScope{ID: entity.ID, Name: entity.Title})
	return engine.Successf("Switched to project %q.", entity.Title), nil
}

func (h *Handlers) status(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	counts, err := h.store.CountsForProject(ctx, inv.Project.ID)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%s: %d open todos of %d, %d notes, %d components, %d stack entries.",
		inv.Project.Name, counts.OpenTodos, counts.Todos, counts.Notes, counts.Components, counts.Stack)
	return engine.DataResponse(msg, counts), nil
}

func (h *Handlers) help(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	specs := h.specs.All()
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })

	var b strings.Builder
	b.WriteString("Commands (chain with &&, up to 10 per message):\n")
	for _, spec := range specs {
		fmt.Fprintf(&b, "  %s\n", spec.Help)
	}
	b.WriteString("Mention a project with @ProjectName to target it for one command.")
	return engine.Infof("%s", b.String()), nil
}
