package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/route"
	"github.com/dmitrymomot/waypoint/core/routefile"
)

// table is a route file bound to placeholder components. Each component
// declares the viewports its child routes name, so the file can be resolved
// without the application that owns the real components.
type table struct {
	root   *component.Definition
	routes []*route.Config
}

func loadTable(path string) (*table, error) {
	format, err := routefile.FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file: %w", err)
	}
	f, err := routefile.Decode(data, format)
	if err != nil {
		return nil, err
	}

	viewports := make(map[string][]string)
	collectViewports(f.Routes, "", viewports)

	reg, err := component.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, name := range f.Components() {
		if err := reg.Register(placeholder(name, viewports[name])); err != nil {
			return nil, err
		}
	}

	var opts []routefile.Option
	for _, name := range f.Strategies() {
		def := placeholder(name, viewports[name])
		opts = append(opts, routefile.WithStrategy(name, func(context.Context, route.StrategyRequest) (*component.Definition, error) {
			return def, nil
		}))
	}

	routes, err := f.Bind(reg, opts...)
	if err != nil {
		return nil, err
	}
	return &table{root: placeholder("app", viewports[""]), routes: routes}, nil
}

// collectViewports records, per owning component or strategy name, the
// viewports its child routes load into. The key "" holds the top level.
func collectViewports(routes []routefile.Route, owner string, out map[string][]string) {
	for _, r := range routes {
		vp := r.Viewport
		if vp == "" {
			vp = component.DefaultViewport
		}
		if !slices.Contains(out[owner], vp) {
			out[owner] = append(out[owner], vp)
		}
		name := r.Component
		if name == "" {
			name = r.Strategy
		}
		collectViewports(r.Children, name, out)
	}
}

func placeholder(name string, viewports []string) *component.Definition {
	return &component.Definition{Name: name, Viewports: viewports}
}
