package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/stewardapp/steward/internal/resolver"
)

// The lookup adapters expose each collection to the entity resolver. Every
// adapter is scoped to one project (except projects themselves) and serves
// ordinal and fuzzy lookups from the same listing the list commands render,
// so "2" always means the second line the user saw.

type listLookup struct {
	byID func(ctx context.Context, id string) (*resolver.Entity, error)
	list func(ctx context.Context) ([]resolver.Entity, error)
}

func (l *listLookup) FindByID(ctx context.Context, id string) (*resolver.Entity, error) {
	return l.byID(ctx, id)
}

func (l *listLookup) FindByOrdinal(ctx context.Context, n int) (*resolver.Entity, error) {
	items, err := l.list(ctx)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(items) {
		return nil, nil
	}
	item := items[n-1]
	return &item, nil
}

func (l *listLookup) FindByTextMatch(ctx context.Context, query string) ([]resolver.Entity, error) {
	items, err := l.list(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var matches []resolver.Entity
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), query) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

// TodoLookup resolves todo references within one project.
func (s *Store) TodoLookup(projectID string) resolver.CollectionLookup {
	return &listLookup{
		byID: func(ctx context.Context, id string) (*resolver.Entity, error) {
			t, err := s.GetTodo(ctx, id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil, nil
				}
				return nil, err
			}
			if t.ProjectID != projectID {
				return nil, nil
			}
			return &resolver.Entity{ID: t.ID, Title: t.Title}, nil
		},
		list: func(ctx context.Context) ([]resolver.Entity, error) {
			todos, err := s.ListTodos(ctx, projectID, TodoFilter{})
			if err != nil {
				return nil, err
			}
			entities := make([]resolver.Entity, 0, len(todos))
			for _, t := range todos {
				entities = append(entities, resolver.Entity{ID: t.ID, Title: t.Title})
			}
			return entities, nil
		},
	}
}

// NoteLookup resolves note references within one project.
func (s *Store) NoteLookup(projectID string) resolver.CollectionLookup {
	return &listLookup{
		byID: func(ctx context.Context, id string) (*resolver.Entity, error) {
			n, err := s.GetNote(ctx, id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil, nil
				}
				return nil, err
			}
			if n.ProjectID != projectID {
				return nil, nil
			}
			return &resolver.Entity{ID: n.ID, Title: n.Title}, nil
		},
		list: func(ctx context.Context) ([]resolver.Entity, error) {
			notes, err := s.ListNotes(ctx, projectID)
			if err != nil {
				return nil, err
			}
			entities := make([]resolver.Entity, 0, len(notes))
			for _, n := range notes {
				entities = append(entities, resolver.Entity{ID: n.ID, Title: n.Title})
			}
			return entities, nil
		},
	}
}

// ComponentLookup resolves component references within one project.
func (s *Store) ComponentLookup(projectID string) resolver.CollectionLookup {
	return &listLookup{
		byID: func(ctx context.Context, id string) (*resolver.Entity, error) {
			c, err := s.GetComponent(ctx, id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil, nil
				}
				return nil, err
			}
			if c.ProjectID != projectID {
				return nil, nil
			}
			return &resolver.Entity{ID: c.ID, Title: c.Name}, nil
		},
		list: func(ctx context.Context) ([]resolver.Entity, error) {
			components, err := s.ListComponents(ctx, projectID, "")
			if err != nil {
				return nil, err
			}
			entities := make([]resolver.Entity, 0, len(components))
			for _, c := range components {
				entities = append(entities, resolver.Entity{ID: c.ID, Title: c.Name})
			}
			return entities, nil
		},
	}
}

// ProjectLookup resolves project references; projects are global, not
// scoped to another project.
func (s *Store) ProjectLookup() resolver.CollectionLookup {
	return &listLookup{
		byID: func(ctx context.Context, id string) (*resolver.Entity, error) {
			p, err := s.GetProject(ctx, id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil, nil
				}
				return nil, err
			}
			return &resolver.Entity{ID: p.ID, Title: p.Name}, nil
		},
		list: func(ctx context.Context) ([]resolver.Entity, error) {
			projects, err := s.ListProjects(ctx)
			if err != nil {
				return nil, err
			}
			entities := make([]resolver.Entity, 0, len(projects))
			for _, p := range projects {
				entities = append(entities, resolver.Entity{ID: p.ID, Title: p.Name})
			}
			return entities, nil
		},
	}
}

// LookupFor returns the lookup for an entity kind name as used by the
// command table. Unknown kinds return nil.
func (s *Store) LookupFor(kind, projectID string) resolver.CollectionLookup {
	switch kind {
	case "todo":
		return s.TodoLookup(projectID)
	case "note":
		return s.NoteLookup(projectID)
	case "component":
		return s.ComponentLookup(projectID)
	case "project":
		return s.ProjectLookup()
	default:
		return nil
	}
}
