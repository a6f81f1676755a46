package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/stewardapp/steward/internal/engine"
	"github.com/stewardapp/steward/internal/memory"
	"github.com/stewardapp/steward/internal/registry"
)

// newEngine wires registry, handlers and a throwaway store into a full
// engine, the same composition the binary uses.
func newEngine(t *testing.T) (*engine.Engine, *memory.Store) {
	t.Helper()

	store, err := memory.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	specs := registry.Default()
	return engine.New(specs, Register(specs, store), store, engine.DefaultConfig()), store
}

func run(t *testing.T, e *engine.Engine, input string) *engine.Response {
	t.Helper()
	resp := e.Execute(context.Background(), "conv", input)
	if resp == nil {
		t.Fatalf("Execute(%q) returned nil", input)
	}
	return resp
}

func mustSucceed(t *testing.T, e *engine.Engine, input string) *engine.Response {
	t.Helper()
	resp := run(t, e, input)
	if resp.Type == engine.TypeError {
		t.Fatalf("Execute(%q) failed: %s", input, resp.Message)
	}
	return resp
}

func TestProjectCommands(t *testing.T) {
	e, _ := newEngine(t)

	resp := mustSucceed(t, e, `/add project "Phoenix"`)
	if !strings.Contains(resp.Message, "active project") {
		t.Errorf("first project should become active, got %q", resp.Message)
	}

	mustSucceed(t, e, `/add project "Atlas"`)

	resp = mustSucceed(t, e, "/list projects")
	if !strings.Contains(resp.Message, "Phoenix") || !strings.Contains(resp.Message, "Atlas") {
		t.Errorf("list projects = %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "* 1. Phoenix") {
		t.Errorf("active project not marked: %q", resp.Message)
	}

	resp = run(t, e, `/add project "Phoenix"`)
	if resp.Type != engine.TypeError {
		t.Errorf("duplicate project name should fail, got %v", resp.Type)
	}

	mustSucceed(t, e, "/switch Atlas")
	resp = mustSucceed(t, e, "/status")
	if !strings.Contains(resp.Message, "Atlas") {
		t.Errorf("status after switch = %q", resp.Message)
	}
}

func TestTodoCommands(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	mustSucceed(t, e, `/add project "Phoenix"`)
	mustSucceed(t, e, `/add todo "Fix login bug" --priority=high`)
	mustSucceed(t, e, `/add todo "Write docs" --due=2026-09-15`)
	mustSucceed(t, e, `/add todo "Deploy" --priority=low`)

	resp := mustSucceed(t, e, "/list todos")
	for _, want := range []string{"Fix login bug", "Write docs", "Deploy"} {
		if !strings.Contains(resp.Message, want) {
			t.Errorf("list todos missing %q: %q", want, resp.Message)
		}
	}

	resp = mustSucceed(t, e, "/list todos --priority=high")
	if strings.Contains(resp.Message, "Deploy") {
		t.Errorf("priority filter leaked: %q", resp.Message)
	}

	// Ordinal reference.
	mustSucceed(t, e, "/complete todo 1")
	resp = mustSucceed(t, e, "/list todos --status=done")
	if !strings.Contains(resp.Message, "Fix login bug") {
		t.Errorf("completed todo not done: %q", resp.Message)
	}

	// Fuzzy reference.
	mustSucceed(t, e, `/edit todo docs --priority=high`)
	resp = mustSucceed(t, e, "/view todo docs")
	if !strings.Contains(resp.Message, "Priority: high") {
		t.Errorf("edit did not stick: %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "Due: 2026-09-15") {
		t.Errorf("due date lost: %q", resp.Message)
	}

	mustSucceed(t, e, "/delete todo Deploy")
	outcome := e.Handle(ctx, "conv", "/list todos")
	if strings.Contains(outcome.Results[0].Message, "Deploy") {
		t.Errorf("deleted todo still listed: %q", outcome.Results[0].Message)
	}

	resp = run(t, e, "/view todo nosuch")
	if resp.Type != engine.TypeError {
		t.Errorf("unknown ref should fail, got %v", resp.Type)
	}
}

func TestInvalidDueDateSurfaces(t *testing.T) {
	e, _ := newEngine(t)
	mustSucceed(t, e, `/add project "Phoenix"`)

	resp := run(t, e, `/add todo "Bad date" --due=tomorrow`)
	if resp.Type != engine.TypeError || !strings.Contains(resp.Message, "YYYY-MM-DD") {
		t.Errorf("got %v %q, want date format error", resp.Type, resp.Message)
	}
}

func TestNoteCommands(t *testing.T) {
	e, _ := newEngine(t)

	mustSucceed(t, e, `/add project "Phoenix"`)
	mustSucceed(t, e, `/add note "Deploy runbook" --content="Step 1\nStep 2" --tags=ops`)

	resp := mustSucceed(t, e, "/view note runbook")
	if !strings.Contains(resp.Message, "Step 1\nStep 2") {
		t.Errorf("escaped newline lost: %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "ops") {
		t.Errorf("tags lost: %q", resp.Message)
	}

	mustSucceed(t, e, `/edit note 1 --title="Release runbook"`)
	resp = mustSucceed(t, e, "/list notes")
	if !strings.Contains(resp.Message, "Release runbook") {
		t.Errorf("rename not visible: %q", resp.Message)
	}

	mustSucceed(t, e, "/delete note 1")
	resp = mustSucceed(t, e, "/list notes")
	if resp.Type != engine.TypeInfo {
		t.Errorf("want empty-list info, got %v %q", resp.Type, resp.Message)
	}

	// Missing required --content errors without opening a wizard (flags given).
	resp = run(t, e, `/add note "No body" --tags=x`)
	if resp.Type != engine.TypeError {
		t.Errorf("missing required flag should fail, got %v", resp.Type)
	}
}

func TestComponentAndStackCommands(t *testing.T) {
	e, _ := newEngine(t)

	mustSucceed(t, e, `/add project "Phoenix"`)
	mustSucceed(t, e, `/add component "API server" --category=backend`)
	mustSucceed(t, e, `/add component "Dashboard" --category=frontend`)
	mustSucceed(t, e, `/add stack "PostgreSQL" --layer=database --version=16`)

	resp := mustSucceed(t, e, "/list components --category=backend")
	if !strings.Contains(resp.Message, "API server") || strings.Contains(resp.Message, "Dashboard") {
		t.Errorf("category filter wrong: %q", resp.Message)
	}

	resp = run(t, e, `/add component "Queue" --category=messaging`)
	if resp.Type != engine.TypeError {
		t.Errorf("invalid category should fail validation, got %v", resp.Type)
	}

	resp = mustSucceed(t, e, "/list stack")
	if !strings.Contains(resp.Message, "PostgreSQL 16 [database]") {
		t.Errorf("stack line = %q", resp.Message)
	}

	mustSucceed(t, e, "/delete component Dashboard")
	resp = mustSucceed(t, e, "/list components")
	if strings.Contains(resp.Message, "Dashboard") {
		t.Errorf("deleted component still listed: %q", resp.Message)
	}
}

func TestBatchAcrossHandlers(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()

	input := `/add project "Phoenix" && /add todo "Ship" --priority=high && /add note "Plan" --content=ok && /status`
	outcome := e.ExecuteBatch(ctx, "conv", input)
	if outcome.Executed != 4 {
		for _, r := range outcome.Results {
			t.Logf("%s: %s", r.Type, r.Message)
		}
		t.Fatalf("Executed = %d, want 4", outcome.Executed)
	}

	last := outcome.Results[3]
	if !strings.Contains(last.Message, "1 open todos of 1") {
		t.Errorf("status = %q", last.Message)
	}
}

func TestProjectMentionRouting(t *testing.T) {
	e, _ := newEngine(t)

	mustSucceed(t, e, `/add project "Phoenix"`)
	mustSucceed(t, e, `/add project "Atlas"`)
	// Active project is Phoenix; mention routes one command to Atlas.
	mustSucceed(t, e, `/add todo "Atlas work" @Atlas`)

	resp := mustSucceed(t, e, "/list todos")
	if strings.Contains(resp.Message, "Atlas work") {
		t.Errorf("todo landed in the active project: %q", resp.Message)
	}
	resp = mustSucceed(t, e, "/list todos @Atlas")
	if !strings.Contains(resp.Message, "Atlas work") {
		t.Errorf("todo missing from mentioned project: %q", resp.Message)
	}
}

func TestHelpListsEveryCommand(t *testing.T) {
	e, _ := newEngine(t)

	resp := mustSucceed(t, e, "/help")
	for _, spec := range registry.Default().All() {
		if !strings.Contains(resp.Message, "/"+spec.Name) {
			t.Errorf("help missing /%s", spec.Name)
		}
	}
}

func TestReferenceCommandsRequireReference(t *testing.T) {
	e, _ := newEngine(t)
	mustSucceed(t, e, `/add project "Phoenix"`)
	mustSucceed(t, e, `/add todo "Fix login"`)
	mustSucceed(t, e, `/add note "Standup" --content="notes"`)

	// Valid flags without a positional reference must fail cleanly for
	// every resolving command, not reach a handler with nothing resolved.
	for _, input := range []string{
		"/edit todo --priority=high",
		"/edit note --title=Renamed",
		"/complete todo --priority=high",
		"/delete todo --priority=high",
		"/view note --tags=x",
		"/view project --name=x",
		"/switch --name=x",
	} {
		resp := run(t, e, input)
		if resp.Type != engine.TypeError {
			t.Errorf("Execute(%q).Type = %v, want error", input, resp.Type)
		}
	}

	// The todo is untouched.
	resp := mustSucceed(t, e, "/view todo 1")
	if strings.Contains(resp.Message, "high") {
		t.Errorf("flag-only edit changed the todo: %q", resp.Message)
	}
}
