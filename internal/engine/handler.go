package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/stewardapp/steward/internal/parser"
	"github.com/stewardapp/steward/internal/registry"
	"github.com/stewardapp/steward/internal/resolver"
)

// ProjectScope names the project a command executes against. Scope travels
// on the invocation, never in process-wide state: two conversations can
// work in different projects concurrently.
type ProjectScope struct {
	ID   string
	Name string
}

// Invocation is the fully validated, resolved payload a handler receives.
type Invocation struct {
	Spec    *registry.CommandSpec
	Cmd     *parser.ParsedCommand
	ConvID  string
	Project *ProjectScope // nil when the command runs outside a project
	// Resolution is set for commands whose spec names a ResolveKind.
	Resolution *resolver.Resolution

	// SwitchProject updates the conversation's active project. Installed by
	// the engine for handlers that change scope.
	SwitchProject func(ProjectScope)
}

// Arg returns the joined positional arguments, or the named flag when no
// positionals were given. Wizard-synthesized commands deliver most fields
// as flags, so handlers read both through this one accessor.
func (inv *Invocation) Arg(flagName string) string {
	if len(inv.Cmd.Args) > 0 {
		return strings.Join(inv.Cmd.Args, " ")
	}
	return inv.Cmd.Flags[flagName]
}

// Flag returns a flag value with a default.
func (inv *Invocation) Flag(name, fallback string) string {
	if v, ok := inv.Cmd.Flags[name]; ok {
		return v
	}
	return fallback
}

// Handler is a leaf command implementation. It receives a validated payload
// and returns a structured Response; returned errors are translated into
// error-typed Responses by the dispatcher.
type Handler func(ctx context.Context, inv *Invocation) (*Response, error)

// HandlerRegistry maps canonical command names to handlers. Populated once
// at startup; duplicate registration panics.
type HandlerRegistry struct {
	handlers map[string]Handler
}

// NewHandlerRegistry returns an empty handler registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]Handler)}
}

// Register installs a handler under a canonical command name.
func (hr *HandlerRegistry) Register(name string, h Handler) {
	if _, exists := hr.handlers[name]; exists {
		panic(fmt.Sprintf("handlers: duplicate handler for %q", name))
	}
	hr.handlers[name] = h
}

// Get returns the handler for a canonical command name.
func (hr *HandlerRegistry) Get(name string) (Handler, bool) {
	h, ok := hr.handlers[name]
	return h, ok
}
