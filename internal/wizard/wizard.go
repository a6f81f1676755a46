// Package wizard implements the interactive multi-step flow used when a
// command is invoked without its required arguments. Each user line fills
// one step; a completed session synthesizes the same parsed command the
// direct flag syntax would have produced.
package wizard

import (
	"strings"
	"time"

	"github.com/stewardapp/steward/internal/parser"
	"github.com/stewardapp/steward/internal/registry"
)

// State is the lifecycle state of a session.
type State int

const (
	StateCollecting State = iota
	StateCompleted
	StateCancelled
)

// Session collects a command's fields one step at a time. A session is
// owned by a single conversation; the Store serializes access.
type Session struct {
	CommandName string
	Spec        *registry.CommandSpec
	Collected   map[string]string
	StepIndex   int

	state      State
	handled    map[string]bool // entity IDs already acted on (selector flows)
	lastActive time.Time
}

// NewSession creates a collecting session, seeding fields the user already
// supplied: positional args fill the first step's field, flags fill their
// matching steps.
func NewSession(spec *registry.CommandSpec, args []string, flags map[string]string) *Session {
	s := &Session{
		CommandName: spec.Name,
		Spec:        spec,
		Collected:   make(map[string]string),
		handled:     make(map[string]bool),
		lastActive:  time.Now(),
	}

	if len(args) > 0 && len(spec.Steps) > 0 {
		s.Collected[spec.Steps[0].Field] = strings.Join(args, " ")
	}
	for key, value := range flags {
		s.Collected[key] = value
	}

	s.StepIndex = s.nextUnfilled(0)
	if s.StepIndex >= len(spec.Steps) {
		s.state = StateCompleted
	}
	return s
}

// State returns the session's lifecycle state.
func (s *Session) State() State { return s.state }

// CurrentPrompt returns the prompt for the step awaiting input.
func (s *Session) CurrentPrompt() string {
	if s.state != StateCollecting || s.StepIndex >= len(s.Spec.Steps) {
		return ""
	}
	return s.Spec.Steps[s.StepIndex].Prompt
}

// Result describes the outcome of feeding one input line to the session.
type Result struct {
	State  State
	Prompt string // next prompt while still collecting
	// Rejected is true when the input failed the step's enum constraint;
	// Prompt repeats the same step.
	Rejected bool
}

// Advance interprets input as the literal value for the current step. It is
// not parsed as a command: wizard input is free text. cancelWord aborts the
// session without side effects.
func (s *Session) Advance(input, cancelWord string) Result {
	s.lastActive = time.Now()
	input = strings.TrimSpace(input)

	if strings.EqualFold(input, cancelWord) {
		s.state = StateCancelled
		return Result{State: StateCancelled}
	}

	step := s.Spec.Steps[s.StepIndex]

	switch {
	case input == "" && step.Optional:
		// Skipped; leave the field unset.
	case len(step.Enum) > 0 && !enumMember(step.Enum, input):
		return Result{State: StateCollecting, Prompt: step.Prompt, Rejected: true}
	case input == "":
		return Result{State: StateCollecting, Prompt: step.Prompt, Rejected: true}
	default:
		s.Collected[step.Field] = input
	}

	s.StepIndex = s.nextUnfilled(s.StepIndex + 1)
	if s.StepIndex >= len(s.Spec.Steps) {
		s.state = StateCompleted
		return Result{State: StateCompleted}
	}
	return Result{State: StateCollecting, Prompt: s.Spec.Steps[s.StepIndex].Prompt}
}

// nextUnfilled returns the index of the first step at or after from whose
// field is not yet collected.
func (s *Session) nextUnfilled(from int) int {
	for i := from; i < len(s.Spec.Steps); i++ {
		if _, ok := s.Collected[s.Spec.Steps[i].Field]; !ok {
			return i
		}
	}
	return len(s.Spec.Steps)
}

// Synthesize builds the ParsedCommand a completed session stands for. The
// field of the first step becomes the positional argument ("title", "name",
// "ref"); a "field"/"value" step pair becomes a single flag keyed by the
// chosen field; every other collected field becomes a flag of its own name.
func (s *Session) Synthesize() *parser.ParsedCommand {
	cmd := &parser.ParsedCommand{
		Verb:  s.Spec.Verb(),
		Noun:  s.Spec.NounPart(),
		Flags: make(map[string]string),
		Raw:   "/" + s.Spec.Name + " (wizard)",
	}

	positional := ""
	if len(s.Spec.Steps) > 0 {
		positional = s.Spec.Steps[0].Field
	}

	for key, value := range s.Collected {
		switch key {
		case positional:
			cmd.Args = []string{value}
		case "field", "value":
			// Handled as a pair below.
		default:
			cmd.Flags[key] = value
		}
	}

	if field, ok := s.Collected["field"]; ok {
		if value, ok := s.Collected["value"]; ok {
			cmd.Flags[field] = value
		}
	}

	return cmd
}

// MarkHandled records an entity ID a selector session has already acted on.
func (s *Session) MarkHandled(id string) {
	s.handled[id] = true
}

// Handled reports whether the ID was already acted on in this session.
func (s *Session) Handled(id string) bool {
	return s.handled[id]
}

// HandledCount returns how many entities this session has acted on.
func (s *Session) HandledCount() int {
	return len(s.handled)
}

// Rearm returns a selector session to the reference step so the user can
// pick the next item from the shrinking candidate list.
func (s *Session) Rearm() {
	delete(s.Collected, "ref")
	s.state = StateCollecting
	s.StepIndex = s.nextUnfilled(0)
}

func enumMember(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
