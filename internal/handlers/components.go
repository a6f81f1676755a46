package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/stewardapp/steward/internal/engine"
)

func (h *Handlers) addComponent(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	name := inv.Arg("name")
	if name == "" {
		return nil, fmt.Errorf("component name is required")
	}

	c, err := h.store.CreateComponent(ctx, inv.Project.ID,
		name, inv.Flag("category", "other"), inv.Flag("description", ""))
	if err != nil {
		return nil, err
	}
	return engine.Successf("Added %s component %q to %s.", c.Category, c.Name, inv.Project.Name).
		WithMeta("component_id", c.ID), nil
}

func (h *Handlers) listComponents(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	components, err := h.store.ListComponents(ctx, inv.Project.ID, inv.Flag("category", ""))
	if err != nil {
		return nil, err
	}
	if len(components) == 0 {
		return engine.Infof("No components in %s.", inv.Project.Name), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Components in %s (%d):\n", inv.Project.Name, len(components))
	for i, c := range components {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, c.Name, c.Category)
		if c.Description != "" {
			fmt.Fprintf(&b, " — %s", c.Description)
		}
		b.WriteString("\n")
	}
	return engine.DataResponse(strings.TrimRight(b.String(), "\n"), components), nil
}

func (h *Handlers) deleteComponent(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	if err := h.store.DeleteComponent(ctx, inv.Resolution.Entity.ID); err != nil {
		return nil, err
	}
	return engine.Successf("Deleted component %q.", inv.Resolution.Entity.Title), nil
}

func (h *Handlers) addStack(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	name := inv.Arg("name")
	if name == "" {
		return nil, fmt.Errorf("technology name is required")
	}

	entry, err := h.store.CreateStackEntry(ctx, inv.Project.ID,
		name, inv.Flag("layer", ""), inv.Flag("version", ""))
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Recorded %s", entry.Name)
	if entry.Version != "" {
		msg += " " + entry.Version
	}
	if entry.Layer != "" {
		msg += " (" + entry.Layer + ")"
	}
	return engine.Successf("%s in the %s stack.", msg, inv.Project.Name), nil
}

func (h *Handlers) listStack(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
	entries, err := h.store.ListStackEntries(ctx, inv.Project.ID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return engine.Infof("No stack entries in %s.", inv.Project.Name), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stack of %s (%d):\n", inv.Project.Name, len(entries))
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s", i+1, e.Name)
		if e.Version != "" {
			fmt.Fprintf(&b, " %s", e.Version)
		}
		if e.Layer != "" {
			fmt.Fprintf(&b, " [%s]", e.Layer)
		}
		b.WriteString("\n")
	}
	return engine.DataResponse(strings.TrimRight(b.String(), "\n"), entries), nil
}
