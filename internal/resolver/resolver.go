// Package resolver turns free-text entity references into concrete items
// using a fixed three-tier priority: exact ID, 1-based ordinal, fuzzy text.
package resolver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Entity is the resolver's view of a stored item: its identifier and the
// primary text field the fuzzy tier matches against.
type Entity struct {
	ID    string
	Title string
}

// CollectionLookup is the read-only capability the persistence layer
// supplies per entity kind. Implementations must return items in a stable
// natural order — the same order the corresponding listing command shows,
// so ordinal references line up with what the user sees.
type CollectionLookup interface {
	// FindByID returns the item with the exact identifier, or nil if absent.
	FindByID(ctx context.Context, id string) (*Entity, error)
	// FindByOrdinal returns the item at the 1-based position n, or nil if
	// out of range.
	FindByOrdinal(ctx context.Context, n int) (*Entity, error)
	// FindByTextMatch returns all items whose title contains the query
	// case-insensitively, in natural order.
	FindByTextMatch(ctx context.Context, query string) ([]Entity, error)
}

// Strategy names the tier that produced a resolution.
type Strategy string

const (
	StrategyUUID  Strategy = "uuid"
	StrategyIndex Strategy = "index"
	StrategyFuzzy Strategy = "fuzzy"
)

// Resolution is a successful resolve outcome. When the fuzzy tier matched
// more than one item, Ambiguous is set and Candidates holds every match in
// natural order; Entity is always the first candidate. Ambiguity is
// surfaced for the caller to log or display, never treated as failure here.
type Resolution struct {
	Strategy   Strategy
	Entity     Entity
	Candidates []Entity
	Ambiguous  bool
}

// EntityNotFoundError reports a reference no tier could resolve.
type EntityNotFoundError struct {
	Ref string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("no match for %q", e.Ref)
}

// Resolve resolves ref against the collection. Tiers run in fixed order and
// the first tier producing at least one candidate decides the outcome: a
// well-formed identifier is never reinterpreted as an ordinal or text, and
// an in-range ordinal is never reinterpreted as text.
func Resolve(ctx context.Context, ref string, lookup CollectionLookup) (*Resolution, error) {
	if isStoreID(ref) {
		entity, err := lookup.FindByID(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("lookup by id: %w", err)
		}
		if entity == nil {
			return nil, &EntityNotFoundError{Ref: ref}
		}
		return &Resolution{Strategy: StrategyUUID, Entity: *entity}, nil
	}

	if n, err := strconv.Atoi(ref); err == nil && n > 0 {
		entity, err := lookup.FindByOrdinal(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("lookup by ordinal: %w", err)
		}
		if entity == nil {
			return nil, &EntityNotFoundError{Ref: ref}
		}
		return &Resolution{Strategy: StrategyIndex, Entity: *entity}, nil
	}

	matches, err := lookup.FindByTextMatch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("lookup by text: %w", err)
	}
	if len(matches) == 0 {
		return nil, &EntityNotFoundError{Ref: ref}
	}
	return &Resolution{
		Strategy:   StrategyFuzzy,
		Entity:     matches[0],
		Candidates: matches,
		Ambiguous:  len(matches) > 1,
	}, nil
}

// isStoreID reports whether ref is a canonical 36-character UUID string,
// the identifier format the store generates.
func isStoreID(ref string) bool {
	if len(ref) != 36 {
		return false
	}
	return uuid.Validate(ref) == nil
}
