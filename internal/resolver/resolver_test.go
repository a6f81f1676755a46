package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeLookup serves a fixed ordered collection from memory.
type fakeLookup struct {
	items []Entity
}

func (f *fakeLookup) FindByID(_ context.Context, id string) (*Entity, error) {
	for _, item := range f.items {
		if item.ID == id {
			e := item
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeLookup) FindByOrdinal(_ context.Context, n int) (*Entity, error) {
	if n < 1 || n > len(f.items) {
		return nil, nil
	}
	e := f.items[n-1]
	return &e, nil
}

func (f *fakeLookup) FindByTextMatch(_ context.Context, query string) ([]Entity, error) {
	var matches []Entity
	for _, item := range f.items {
		if strings.Contains(strings.ToLower(item.Title), strings.ToLower(query)) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

const (
	alphaID = "6ba7b810-9dad-11d1-80b4-00c04fd430c1"
	betaID  = "6ba7b810-9dad-11d1-80b4-00c04fd430c2"
	gammaID = "6ba7b810-9dad-11d1-80b4-00c04fd430c3"
)

func newFakeLookup() *fakeLookup {
	return &fakeLookup{items: []Entity{
		{ID: alphaID, Title: "Alpha"},
		{ID: betaID, Title: "Beta"},
		{ID: gammaID, Title: "Gamma"},
	}}
}

func TestResolveTiers(t *testing.T) {
	lookup := newFakeLookup()

	tests := []struct {
		name         string
		ref          string
		wantStrategy Strategy
		wantTitle    string
	}{
		{"uuid tier", gammaID, StrategyUUID, "Gamma"},
		{"index tier", "2", StrategyIndex, "Beta"},
		{"fuzzy tier", "bet", StrategyFuzzy, "Beta"},
		{"fuzzy is case insensitive", "ALPHA", StrategyFuzzy, "Alpha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(context.Background(), tt.ref, lookup)
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.ref, err)
			}
			if res.Strategy != tt.wantStrategy {
				t.Errorf("strategy = %q, want %q", res.Strategy, tt.wantStrategy)
			}
			if res.Entity.Title != tt.wantTitle {
				t.Errorf("entity = %q, want %q", res.Entity.Title, tt.wantTitle)
			}
		})
	}
}

func TestResolveAmbiguousFuzzyPicksFirst(t *testing.T) {
	lookup := &fakeLookup{items: []Entity{
		{ID: alphaID, Title: "fix login"},
		{ID: betaID, Title: "fix logout"},
		{ID: gammaID, Title: "write docs"},
	}}

	res, err := Resolve(context.Background(), "fix", lookup)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !res.Ambiguous {
		t.Error("expected ambiguous resolution")
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(res.Candidates))
	}
	if res.Entity.Title != "fix login" {
		t.Errorf("picked %q, want first candidate in natural order", res.Entity.Title)
	}
}

func TestResolveNotFound(t *testing.T) {
	lookup := newFakeLookup()

	tests := []struct {
		name string
		ref  string
	}{
		{"no text match", "delta"},
		{"ordinal out of range", "7"},
		{"unknown uuid", "00000000-0000-0000-0000-000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(context.Background(), tt.ref, lookup)
			var nferr *EntityNotFoundError
			if !errors.As(err, &nferr) {
				t.Fatalf("Resolve(%q) error = %v, want EntityNotFoundError", tt.ref, err)
			}
		})
	}
}

// A well-formed identifier must never fall through to later tiers, and an
// in-range ordinal must never fall through to text matching.
func TestResolveTierPriority(t *testing.T) {
	lookup := &fakeLookup{items: []Entity{
		{ID: alphaID, Title: "2"},
		{ID: betaID, Title: gammaID},
	}}

	res, err := Resolve(context.Background(), "1", lookup)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.Strategy != StrategyIndex || res.Entity.ID != alphaID {
		t.Errorf("ordinal reference resolved via %q to %q, want index tier to win", res.Strategy, res.Entity.ID)
	}

	res, err = Resolve(context.Background(), gammaID, lookup)
	if err == nil {
		t.Fatalf("Resolve(%q) = %+v, want not-found from the id tier, not a fuzzy fallback", gammaID, res)
	}
	var nferr *EntityNotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("error = %v, want EntityNotFoundError", err)
	}
}
