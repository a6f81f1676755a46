package registry

// Enum value sets shared by several commands.
var (
	Priorities = []string{"low", "medium", "high"}
	Statuses   = []string{"todo", "in_progress", "done"}
	Categories = []string{"frontend", "backend", "database", "devops", "other"}
	Layers     = []string{"frontend", "backend", "database", "infrastructure", "tooling"}
)

// Default builds the full command table for the project-management surface.
func Default() *Registry {
	r := New()

	r.Register(&CommandSpec{
		Name:    "add project",
		Aliases: []string{"add projects", "new project"},
		MinArgs: 1,
		Steps: []StepSpec{
			{Field: "name", Prompt: "Project name?"},
		},
		Help: "/add project \"Name\" — create a project",
	})

	r.Register(&CommandSpec{
		Name:         "add todo",
		NeedsProject: true,
		Aliases:      []string{"add todos", "add task"},
		MinArgs:      1,
		FlagEnums: map[string][]string{
			"priority": Priorities,
			"status":   Statuses,
		},
		Steps: []StepSpec{
			{Field: "title", Prompt: "What needs to be done?"},
			{Field: "priority", Prompt: "Priority? (low/medium/high, enter to skip)", Enum: Priorities, Optional: true},
			{Field: "due", Prompt: "Due date? (YYYY-MM-DD, tomorrow, +Nd; enter to skip)", Optional: true},
		},
		Help: "/add todo \"Title\" [--priority=low|medium|high] [--due=DATE] — create a todo",
	})

	r.Register(&CommandSpec{
		Name:          "add note",
		NeedsProject:  true,
		Aliases:       []string{"add notes"},
		MinArgs:       1,
		RequiredFlags: []string{"content"},
		Steps: []StepSpec{
			{Field: "title", Prompt: "Note title?"},
			{Field: "content", Prompt: "Note content?"},
		},
		Help: "/add note \"Title\" --content=\"...\" — create a note",
	})

	r.Register(&CommandSpec{
		Name:          "add component",
		NeedsProject:  true,
		Aliases:       []string{"add components"},
		MinArgs:       1,
		RequiredFlags: []string{"category"},
		FlagEnums: map[string][]string{
			"category": Categories,
		},
		Steps: []StepSpec{
			{Field: "name", Prompt: "Component name?"},
			{Field: "category", Prompt: "Category? (frontend/backend/database/devops/other)", Enum: Categories},
		},
		Help: "/add component \"Name\" --category=frontend|backend|database|devops|other",
	})

	r.Register(&CommandSpec{
		Name:         "add stack",
		NeedsProject: true,
		Aliases:      []string{"add stacks", "add tech"},
		MinArgs:      1,
		FlagEnums: map[string][]string{
			"layer": Layers,
		},
		Steps: []StepSpec{
			{Field: "name", Prompt: "Technology name?"},
			{Field: "layer", Prompt: "Layer? (frontend/backend/database/infrastructure/tooling, enter to skip)", Enum: Layers, Optional: true},
			{Field: "version", Prompt: "Version? (enter to skip)", Optional: true},
		},
		Help: "/add stack \"Name\" [--layer=...] [--version=...] — record a stack entry",
	})

	r.Register(&CommandSpec{
		Name:         "list todos",
		NeedsProject: true,
		Aliases:      []string{"list todo", "todos"},
		FlagEnums: map[string][]string{
			"priority": Priorities,
			"status":   Statuses,
		},
		Help: "/list todos [--status=...] [--priority=...] — list todos in the active project",
	})

	r.Register(&CommandSpec{
		Name:         "list notes",
		NeedsProject: true,
		Aliases:      []string{"list note", "notes"},
		Help:         "/list notes — list notes in the active project",
	})

	r.Register(&CommandSpec{
		Name:         "list components",
		NeedsProject: true,
		Aliases:      []string{"list component", "components"},
		FlagEnums: map[string][]string{
			"category": Categories,
		},
		Help: "/list components [--category=...] — list components",
	})

	r.Register(&CommandSpec{
		Name:         "list stack",
		NeedsProject: true,
		Aliases:      []string{"list stacks", "stack"},
		Help:         "/list stack — list stack entries",
	})

	r.Register(&CommandSpec{
		Name:    "list projects",
		Aliases: []string{"list project", "projects"},
		Help:    "/list projects — list all projects",
	})

	r.Register(&CommandSpec{
		Name:         "edit todo",
		NeedsProject: true,
		Aliases:      []string{"edit todos"},
		MinArgs:      1,
		ResolveKind:  "todo",
		FlagEnums: map[string][]string{
			"priority": Priorities,
			"status":   Statuses,
		},
		Steps: []StepSpec{
			{Field: "ref", Prompt: "Which todo? (number, id, or text)"},
			{Field: "field", Prompt: "Change what? (title/content/priority/status/due)", Enum: []string{"title", "content", "priority", "status", "due"}},
			{Field: "value", Prompt: "New value?"},
		},
		Help: "/edit todo <ref> [--title=...] [--priority=...] [--status=...] [--due=...]",
	})

	r.Register(&CommandSpec{
		Name:         "edit note",
		NeedsProject: true,
		Aliases:      []string{"edit notes"},
		MinArgs:      1,
		ResolveKind:  "note",
		Steps: []StepSpec{
			{Field: "ref", Prompt: "Which note? (number, id, or text)"},
			{Field: "field", Prompt: "Change what? (title/content/tags)", Enum: []string{"title", "content", "tags"}},
			{Field: "value", Prompt: "New value?"},
		},
		Help: "/edit note <ref> [--title=...] [--content=...] [--tags=...]",
	})

	r.Register(&CommandSpec{
		Name:         "complete todo",
		NeedsProject: true,
		Aliases:      []string{"complete todos", "done"},
		MinArgs:      1,
		ResolveKind:  "todo",
		Selector:     true,
		Steps: []StepSpec{
			{Field: "ref", Prompt: "Which todo is done? (number, id, or text; 'cancel' to stop)"},
		},
		Help: "/complete todo <ref> — mark a todo done",
	})

	r.Register(&CommandSpec{
		Name:         "delete todo",
		NeedsProject: true,
		Aliases:      []string{"delete todos", "remove todo"},
		MinArgs:      1,
		ResolveKind:  "todo",
		Selector:     true,
		Steps: []StepSpec{
			{Field: "ref", Prompt: "Delete which todo? (number, id, or text; 'cancel' to stop)"},
		},
		Help: "/delete todo <ref> — delete a todo",
	})

	r.Register(&CommandSpec{
		Name:         "delete note",
		NeedsProject: true,
		Aliases:      []string{"delete notes", "remove note"},
		MinArgs:      1,
		ResolveKind:  "note",
		Selector:     true,
		Steps: []StepSpec{
			{Field: "ref", Prompt: "Delete which note? (number, id, or text; 'cancel' to stop)"},
		},
		Help: "/delete note <ref> — delete a note",
	})

	r.Register(&CommandSpec{
		Name:         "delete component",
		NeedsProject: true,
		Aliases:      []string{"delete components", "remove component"},
		MinArgs:      1,
		ResolveKind:  "component",
		Selector:     true,
		Steps: []StepSpec{
			{Field: "ref", Prompt: "Delete which component? (number, id, or text; 'cancel' to stop)"},
		},
		Help: "/delete component <ref> — delete a component",
	})

	r.Register(&CommandSpec{
		Name:         "view todo",
		NeedsProject: true,
		Aliases:      []string{"view todos", "show todo"},
		MinArgs:      1,
		ResolveKind:  "todo",
		Steps: []StepSpec{
			{Field: "ref", Prompt: "Which todo? (number, id, or text)"},
		},
		Help: "/view todo <ref> — show a todo's details",
	})

	r.Register(&CommandSpec{
		Name:         "view note",
		NeedsProject: true,
		Aliases:      []string{"view notes", "show note"},
		MinArgs:      1,
		ResolveKind:  "note",
		Steps: []StepSpec{
			{Field: "ref", Prompt: "Which note? (number, id, or text)"},
		},
		Help: "/view note <ref> — show a note's content",
	})

	r.Register(&CommandSpec{
		Name:        "view project",
		Aliases:     []string{"view projects", "show project"},
		MinArgs:     1,
		ResolveKind: "project",
		Steps: []StepSpec{
			{Field: "ref", Prompt: "Which project? (number, id, or text)"},
		},
		Help: "/view project <ref> — show a project summary",
	})

	r.Register(&CommandSpec{
		Name:        "switch",
		Aliases:     []string{"use"},
		MinArgs:     1,
		ResolveKind: "project",
		Steps: []StepSpec{
			{Field: "ref", Prompt: "Switch to which project? (number, id, or text)"},
		},
		Help: "/switch <project> — change the active project for this conversation",
	})

	r.Register(&CommandSpec{
		Name:         "status",
		NeedsProject: true,
		Help:         "/status — counts per entity kind for the active project",
	})

	r.Register(&CommandSpec{
		Name:    "help",
		Aliases: []string{"h", "commands"},
		Help:    "/help — list available commands",
	})

	return r
}
