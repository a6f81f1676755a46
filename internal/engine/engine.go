// Package engine composes the command pipeline: tokenize, extract, match,
// validate, resolve, dispatch. It owns batch semantics, wizard sessions,
// and per-conversation project scope.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/stewardapp/steward/internal/logging"
	"github.com/stewardapp/steward/internal/parser"
	"github.com/stewardapp/steward/internal/registry"
	"github.com/stewardapp/steward/internal/resolver"
	"github.com/stewardapp/steward/internal/token"
	"github.com/stewardapp/steward/internal/wizard"
)

// LookupSource supplies the read-only collection capability the resolver
// needs, per entity kind. The persistence layer implements it.
type LookupSource interface {
	LookupFor(kind, projectID string) resolver.CollectionLookup
}

// Config holds engine tunables.
type Config struct {
	// BatchLimit is the maximum number of chained commands (1-10).
	BatchLimit int `yaml:"batch_limit"`
	// CancelWord aborts an active wizard session.
	CancelWord string `yaml:"cancel_word"`
	// WizardTTL discards wizard sessions idle longer than this,
	// as a duration string like "10m".
	WizardTTL string `yaml:"wizard_ttl"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchLimit: 10,
		CancelWord: "cancel",
		WizardTTL:  "10m",
	}
}

// Engine runs command input through the full pipeline and into handlers.
// The parsing stages are pure; Engine itself only mutates wizard sessions
// and per-conversation scope, both behind locks, so concurrent conversations
// need no external coordination.
type Engine struct {
	specs    *registry.Registry
	handlers *HandlerRegistry
	lookups  LookupSource
	wizards  *wizard.Store

	batchLimit int
	cancelWord string
	log        *slog.Logger

	mu     sync.RWMutex
	scopes map[string]ProjectScope // convID -> active project
}

// New wires an engine from its collaborators.
func New(specs *registry.Registry, handlers *HandlerRegistry, lookups LookupSource, cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ttl, err := time.ParseDuration(cfg.WizardTTL)
	if err != nil || ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &Engine{
		specs:      specs,
		handlers:   handlers,
		lookups:    lookups,
		wizards:    wizard.NewStore(ttl),
		batchLimit: cfg.BatchLimit,
		cancelWord: cfg.CancelWord,
		log:        logging.WithComponent("engine"),
	}
}

// Handle routes one line of user input for a conversation: if a wizard
// session is active the line is a step answer, otherwise it is a command
// batch. This is the single entry point transports use.
func (e *Engine) Handle(ctx context.Context, convID, input string) *BatchOutcome {
	if sess := e.wizards.Get(convID); sess != nil {
		ctx := logging.ContextWithConversation(ctx, convID)
		results := e.resume(ctx, convID, sess, input)
		return &BatchOutcome{
			Results:  results,
			Executed: countExecuted(results),
			Total:    1,
		}
	}
	return e.ExecuteBatch(ctx, convID, input)
}

// ExecuteBatch splits input on unquoted "&&" and runs each command through
// the pipeline in order, stopping at the first error. Commands after the
// failure are reported verbatim in Unexecuted. A batch longer than the
// limit is rejected before anything runs.
func (e *Engine) ExecuteBatch(ctx context.Context, convID, input string) *BatchOutcome {
	ctx = logging.ContextWithConversation(ctx, convID)
	parts := token.SplitBatch(input)
	outcome := &BatchOutcome{Total: len(parts)}

	if len(parts) == 0 {
		return outcome
	}
	if len(parts) > e.batchLimit {
		err := &BatchLimitExceededError{Count: len(parts), Limit: e.batchLimit}
		outcome.Results = append(outcome.Results, Errorf("%v", err))
		outcome.Unexecuted = parts
		return outcome
	}

	// Wizards would stall a multi-command chain, so incomplete commands
	// only open one when the batch is a single command.
	allowWizard := len(parts) == 1

	for i, part := range parts {
		resp, _ := e.execute(ctx, convID, part, allowWizard, nil)
		outcome.Results = append(outcome.Results, resp)

		if resp.Type == TypeError {
			outcome.Unexecuted = append(outcome.Unexecuted, parts[i+1:]...)
			e.log.Debug("batch stopped on error",
				"conversation_id", convID,
				"command", part,
				"skipped", len(outcome.Unexecuted),
			)
			break
		}
		if resp.Type != TypePrompt {
			outcome.Executed++
		}
	}
	return outcome
}

// Execute runs a single command line through the full pipeline.
func (e *Engine) Execute(ctx context.Context, convID, input string) *Response {
	resp, _ := e.execute(ctx, convID, input, true, nil)
	return resp
}

// ActiveProject returns the conversation's active project scope.
func (e *Engine) ActiveProject(convID string) (ProjectScope, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	scope, ok := e.scopes[convID]
	return scope, ok
}

func (e *Engine) setScope(convID string, scope ProjectScope) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scopes == nil {
		e.scopes = make(map[string]ProjectScope)
	}
	e.scopes[convID] = scope
}

// execute parses and runs one command. Every parse-time failure is
// recovered here and converted to an error Response; nothing escapes past
// a single command's processing.
func (e *Engine) execute(ctx context.Context, convID, input string, allowWizard bool, sess *wizard.Session) (*Response, *Invocation) {
	cmd, err := parser.Parse(input)
	if err != nil {
		return Errorf("%v", err), nil
	}

	spec, rest, err := e.specs.Match(cmd.Args)
	if err != nil {
		return Errorf("%v", err), nil
	}
	cmd.Verb = spec.Verb()
	cmd.Noun = spec.NounPart()
	cmd.Args = rest

	ctx = logging.ContextWithCommand(ctx, spec.Name)
	return e.run(ctx, convID, spec, cmd, allowWizard, sess)
}

// run validates, resolves, and dispatches an already-matched command.
func (e *Engine) run(ctx context.Context, convID string, spec *registry.CommandSpec, cmd *parser.ParsedCommand, allowWizard bool, sess *wizard.Session) (*Response, *Invocation) {
	if sess == nil && e.needsWizard(spec, cmd) {
		if !allowWizard {
			return Errorf("missing arguments for /%s; usage: %s", spec.Name, spec.Help), nil
		}
		session := wizard.NewSession(spec, cmd.Args, cmd.Flags)
		if session.State() == wizard.StateCollecting {
			e.wizards.Put(convID, session)
			logging.WithContext(ctx).Debug("wizard opened")
			return Promptf("%s", session.CurrentPrompt()).WithMeta("wizard", spec.Name), nil
		}
		// Everything was seeded after all; fall through and run directly.
		cmd = session.Synthesize()
	}

	// Arity holds even when flags suppressed the wizard: a resolving
	// command without its reference must never reach a handler.
	if len(cmd.Args) < spec.MinArgs {
		return Errorf("missing arguments for /%s; usage: %s", spec.Name, spec.Help), nil
	}
	if spec.MaxArgs > 0 && len(cmd.Args) > spec.MaxArgs {
		return Errorf("too many arguments for /%s; usage: %s", spec.Name, spec.Help), nil
	}

	if err := e.specs.Validate(spec, cmd.Flags); err != nil {
		return Errorf("%v", err), nil
	}

	scope, errResp := e.resolveScope(ctx, convID, spec, cmd)
	if errResp != nil {
		return errResp, nil
	}
	if scope != nil {
		ctx = logging.ContextWithProject(ctx, scope.Name)
	}

	inv := &Invocation{
		Spec:    spec,
		Cmd:     cmd,
		ConvID:  convID,
		Project: scope,
		SwitchProject: func(ps ProjectScope) {
			e.setScope(convID, ps)
		},
	}

	if spec.ResolveKind != "" && len(cmd.Args) > 0 {
		resp := e.resolveReference(ctx, inv, sess)
		if resp != nil {
			return resp, inv
		}
	}

	handler, ok := e.handlers.Get(spec.Name)
	if !ok {
		return Errorf("no handler registered for /%s", spec.Name), inv
	}

	resp, err := handler(ctx, inv)
	if err != nil {
		logging.ErrorContext(ctx, "handler error", "error", err)
		return Errorf("%v", err), inv
	}

	if inv.Resolution != nil && inv.Resolution.Ambiguous {
		titles := make([]string, 0, len(inv.Resolution.Candidates))
		for _, c := range inv.Resolution.Candidates {
			titles = append(titles, c.Title)
		}
		resp.WithMeta("ambiguous_ref", "true").
			WithMeta("candidates", strings.Join(titles, ", "))
	}

	return resp, inv
}

// needsWizard reports whether the direct syntax left required fields unfilled
// and no flags were given to fill them.
func (e *Engine) needsWizard(spec *registry.CommandSpec, cmd *parser.ParsedCommand) bool {
	if len(spec.Steps) == 0 || len(cmd.Flags) > 0 {
		return false
	}
	return len(cmd.Args) < spec.MinArgs || len(spec.RequiredFlags) > 0
}

// resolveScope determines the project a command executes against: an
// explicit @mention wins, otherwise the conversation's active project.
func (e *Engine) resolveScope(ctx context.Context, convID string, spec *registry.CommandSpec, cmd *parser.ParsedCommand) (*ProjectScope, *Response) {
	if cmd.ProjectMention != "" {
		lookup := e.lookups.LookupFor("project", "")
		res, err := resolver.Resolve(ctx, cmd.ProjectMention, lookup)
		if err != nil {
			return nil, Errorf("project %q not found", cmd.ProjectMention)
		}
		return &ProjectScope{ID: res.Entity.ID, Name: res.Entity.Title}, nil
	}

	if scope, ok := e.ActiveProject(convID); ok {
		return &scope, nil
	}

	if spec.NeedsProject {
		return nil, Errorf("no active project: mention one with @ProjectName or run /switch first")
	}
	return nil, nil
}

// resolveReference resolves the command's positional reference against its
// entity collection. Returns a non-nil error Response on failure.
func (e *Engine) resolveReference(ctx context.Context, inv *Invocation, sess *wizard.Session) *Response {
	projectID := ""
	if inv.Project != nil {
		projectID = inv.Project.ID
	}

	lookup := e.lookups.LookupFor(inv.Spec.ResolveKind, projectID)
	if lookup == nil {
		return Errorf("no collection for %q", inv.Spec.ResolveKind)
	}

	ref := strings.Join(inv.Cmd.Args, " ")
	res, err := resolver.Resolve(ctx, ref, lookup)
	if err != nil {
		return Errorf("%v", err)
	}

	// Selector sessions skip items handled earlier in the same session so
	// a shrinking candidate list keeps working without re-resolving.
	if sess != nil && inv.Spec.Selector {
		res = skipHandled(res, sess)
		if res == nil {
			return Errorf("no remaining match for %q", ref)
		}
	}

	inv.Resolution = res
	return nil
}

// skipHandled drops candidates a selector session already acted on and
// re-picks the first remaining one. Returns nil when nothing is left.
func skipHandled(res *resolver.Resolution, sess *wizard.Session) *resolver.Resolution {
	if len(res.Candidates) == 0 {
		if sess.Handled(res.Entity.ID) {
			return nil
		}
		return res
	}

	var remaining []resolver.Entity
	for _, c := range res.Candidates {
		if !sess.Handled(c.ID) {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		return nil
	}
	return &resolver.Resolution{
		Strategy:   res.Strategy,
		Entity:     remaining[0],
		Candidates: remaining,
		Ambiguous:  len(remaining) > 1,
	}
}

// resume feeds one input line to an active wizard session.
func (e *Engine) resume(ctx context.Context, convID string, sess *wizard.Session, input string) []*Response {
	result := sess.Advance(input, e.cancelWord)

	switch result.State {
	case wizard.StateCancelled:
		e.wizards.Delete(convID)
		return []*Response{Infof("Cancelled, nothing changed.")}

	case wizard.StateCollecting:
		resp := Promptf("%s", result.Prompt).WithMeta("wizard", sess.CommandName)
		if result.Rejected {
			resp.WithMeta("rejected", "true")
		}
		return []*Response{resp}
	}

	// Completed: run the synthesized command through validation, resolution
	// and dispatch exactly as the direct syntax would.
	cmd := sess.Synthesize()
	resp, inv := e.run(ctx, convID, sess.Spec, cmd, false, sess)

	if !sess.Spec.Selector {
		e.wizards.Delete(convID)
		return []*Response{resp}
	}

	return e.continueSelector(ctx, convID, sess, resp, inv)
}

// continueSelector keeps a selector wizard alive after each operation so
// the user can work through the remaining items, and closes it when the
// candidate list is exhausted.
func (e *Engine) continueSelector(ctx context.Context, convID string, sess *wizard.Session, resp *Response, inv *Invocation) []*Response {
	if resp.Type != TypeError && inv != nil && inv.Resolution != nil {
		sess.MarkHandled(inv.Resolution.Entity.ID)
	}

	remaining := e.remainingCandidates(ctx, convID, sess, inv)
	if remaining == 0 {
		e.wizards.Delete(convID)
		return []*Response{resp, Infof("All done, nothing left to select.")}
	}

	sess.Rearm()
	prompt := Promptf("%s", sess.CurrentPrompt()).WithMeta("wizard", sess.CommandName)
	return []*Response{resp, prompt}
}

// remainingCandidates counts items not yet handled by the session.
func (e *Engine) remainingCandidates(ctx context.Context, convID string, sess *wizard.Session, inv *Invocation) int {
	projectID := ""
	if inv != nil && inv.Project != nil {
		projectID = inv.Project.ID
	} else if scope, ok := e.ActiveProject(convID); ok {
		projectID = scope.ID
	}

	lookup := e.lookups.LookupFor(sess.Spec.ResolveKind, projectID)
	if lookup == nil {
		return 0
	}

	// An empty query matches every item, in natural order.
	items, err := lookup.FindByTextMatch(ctx, "")
	if err != nil {
		return 0
	}

	remaining := 0
	for _, item := range items {
		if !sess.Handled(item.ID) {
			remaining++
		}
	}
	return remaining
}

func countExecuted(results []*Response) int {
	n := 0
	for _, r := range results {
		if r.Type != TypeError && r.Type != TypePrompt {
			n++
		}
	}
	return n
}
