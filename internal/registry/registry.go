// Package registry holds the static command table: specs, aliases, matching,
// and per-command schema validation. The table is populated once at startup
// and never mutated afterwards.
package registry

import (
	"fmt"
	"sort"
	"strings"
)

// StepSpec describes one wizard prompt for a command invoked without its
// required arguments.
type StepSpec struct {
	Field    string   // payload field this step fills
	Prompt   string   // question shown to the user
	Enum     []string // allowed values, empty for free text
	Optional bool     // empty input skips the step
}

// CommandSpec is a single immutable registry entry.
type CommandSpec struct {
	// Name is the canonical "verb" or "verb noun" key, e.g. "add todo".
	Name string
	// Aliases are alternate keys (singular/plural noun forms, shorthands).
	Aliases []string
	// RequiredFlags lists flags that must be present, in declared order.
	RequiredFlags []string
	// FlagEnums constrains flag values to a fixed allowed set.
	FlagEnums map[string][]string
	// MinArgs is the number of positional arguments the direct syntax needs.
	MinArgs int
	// MaxArgs caps the positional arguments; zero means unlimited (multi
	// word titles and references join into one value downstream).
	MaxArgs int
	// ResolveKind names the entity collection a positional reference
	// resolves against ("todo", "note", ...). Empty means no resolution.
	ResolveKind string
	// NeedsProject marks commands that only make sense inside a project
	// scope (an @mention or the conversation's active project).
	NeedsProject bool
	// Selector marks wizards that repeatedly pick items from a shrinking
	// candidate list (delete, complete).
	Selector bool
	// Steps drive the wizard when the direct syntax is incomplete.
	Steps []StepSpec
	// Help is the one-line usage summary shown by /help.
	Help string
}

// Verb returns the first word of the canonical name.
func (s *CommandSpec) Verb() string {
	verb, _, _ := strings.Cut(s.Name, " ")
	return verb
}

// NounPart returns the second word of the canonical name, if any.
func (s *CommandSpec) NounPart() string {
	_, noun, _ := strings.Cut(s.Name, " ")
	return noun
}

// UnknownCommandError reports input whose leading tokens match no registered
// command or alias.
type UnknownCommandError struct {
	Input string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q, try /help", e.Input)
}

// MissingFlagError reports a required flag that was not provided.
type MissingFlagError struct {
	Flag string
}

func (e *MissingFlagError) Error() string {
	return fmt.Sprintf("missing required flag --%s", e.Flag)
}

// InvalidEnumValueError reports a flag value outside its allowed set.
type InvalidEnumValueError struct {
	Flag    string
	Value   string
	Allowed []string
}

func (e *InvalidEnumValueError) Error() string {
	return fmt.Sprintf("invalid value %q for --%s (allowed: %s)",
		e.Value, e.Flag, strings.Join(e.Allowed, ", "))
}

// Registry is the lookup table for command specs.
type Registry struct {
	byName  map[string]*CommandSpec
	byAlias map[string]*CommandSpec
	ordered []*CommandSpec
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byName:  make(map[string]*CommandSpec),
		byAlias: make(map[string]*CommandSpec),
	}
}

// Register adds a spec to the registry. Duplicate names or aliases panic:
// the table is wired at startup and a collision is a programming error.
func (r *Registry) Register(spec *CommandSpec) {
	if _, exists := r.byName[spec.Name]; exists {
		panic(fmt.Sprintf("registry: duplicate command %q", spec.Name))
	}
	r.byName[spec.Name] = spec
	r.ordered = append(r.ordered, spec)

	for _, alias := range spec.Aliases {
		if _, exists := r.byAlias[alias]; exists {
			panic(fmt.Sprintf("registry: duplicate alias %q", alias))
		}
		r.byAlias[alias] = spec
	}
}

// Match finds the spec for the leading positional arguments. Lookup order:
// two-word canonical key, one-word canonical key, two-word alias, one-word
// alias. Consumed verb/noun words are removed from the returned args.
func (r *Registry) Match(args []string) (*CommandSpec, []string, error) {
	if len(args) == 0 {
		return nil, nil, &UnknownCommandError{Input: ""}
	}

	if len(args) >= 2 {
		key := strings.ToLower(args[0]) + " " + strings.ToLower(args[1])
		if spec, ok := r.byName[key]; ok {
			return spec, args[2:], nil
		}
	}
	if spec, ok := r.byName[strings.ToLower(args[0])]; ok {
		return spec, args[1:], nil
	}
	if len(args) >= 2 {
		key := strings.ToLower(args[0]) + " " + strings.ToLower(args[1])
		if spec, ok := r.byAlias[key]; ok {
			return spec, args[2:], nil
		}
	}
	if spec, ok := r.byAlias[strings.ToLower(args[0])]; ok {
		return spec, args[1:], nil
	}

	return nil, nil, &UnknownCommandError{Input: strings.Join(args, " ")}
}

// Validate checks a command's flags against its spec: required flags first
// (in declared order, so the reported flag is deterministic), then enum
// membership with case-sensitive exact matching.
func (r *Registry) Validate(spec *CommandSpec, flags map[string]string) error {
	for _, required := range spec.RequiredFlags {
		if _, ok := flags[required]; !ok {
			return &MissingFlagError{Flag: required}
		}
	}

	// Enum checks run in sorted key order for deterministic reporting.
	keys := make([]string, 0, len(flags))
	for k := range flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		allowed, constrained := spec.FlagEnums[key]
		if !constrained {
			continue
		}
		value := flags[key]
		if !contains(allowed, value) {
			return &InvalidEnumValueError{Flag: key, Value: value, Allowed: allowed}
		}
	}
	return nil
}

// Lookup returns the spec registered under the exact canonical name.
func (r *Registry) Lookup(name string) (*CommandSpec, bool) {
	spec, ok := r.byName[name]
	return spec, ok
}

// All returns a copy of the spec list in registration order. Callers may
// reorder the returned slice without affecting the registry.
func (r *Registry) All() []*CommandSpec {
	out := make([]*CommandSpec, len(r.ordered))
	copy(out, r.ordered)
	return out
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
