package route

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/instruction"
	"github.com/dmitrymomot/waypoint/core/navigation"
)

// Config describes a navigable unit.
//
// Exactly one of Component, Strategy or RedirectTo must be set.
type Config struct {
	// ID identifies the route in diagnostics and keys the strategy cache.
	// Defaults to the first path pattern.
	ID string
	// Path lists alternative patterns. Segments are separated by "/";
	// ":name" binds a required parameter and "*name" captures the remainder.
	// Defaults to the component name.
	Path []string
	// Component is shown when the route matches.
	Component *component.Definition
	// Strategy resolves the component at navigation time.
	Strategy NavigationStrategy
	Title    string
	// RedirectTo restarts resolution from another path. ":name" segments are
	// replaced with parameters bound by this route.
	RedirectTo string
	// Viewport pins the route to a named viewport of the parent component.
	Viewport string
	Children []*Config
}

// Paths returns the path patterns of the route.
func (c *Config) Paths() []string {
	if len(c.Path) > 0 {
		return c.Path
	}
	if c.Component != nil {
		return []string{c.Component.Name}
	}
	return []string{""}
}

// Key returns the identifier used for diagnostics and caching.
func (c *Config) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Paths()[0]
}

// StrategyRequest is passed to a NavigationStrategy.
type StrategyRequest struct {
	// Instruction is the instruction being resolved; nil for a default route.
	Instruction *instruction.ViewportInstruction
	Navigation  *navigation.Navigation
	// Parent is the node the resolved component will be nested in.
	Parent *Node
	Route  *Config
	Params component.Params
}

// Segments returns the parameter name split on "/". A wildcard capture
// holds the rest of the path joined by "/"; Segments restores its parts.
// Empty segments are dropped and a missing parameter yields nil.
func (r StrategyRequest) Segments(name string) []string {
	var out []string
	for seg := range strings.SplitSeq(r.Params[name], "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// NavigationStrategy resolves the component of a route at navigation time.
// It is invoked at most once per route and distinct parameter set for the
// lifetime of a Resolver.
type NavigationStrategy func(ctx context.Context, req StrategyRequest) (*component.Definition, error)

// RouteProvider is implemented by component instances that decide their
// child routes at runtime. It is consulted once the instance has loaded.
type RouteProvider interface {
	Routes() []*Config
}

// Validate checks configs and their descendants.
func Validate(configs []*Config) error {
	return validate(configs, make(map[string]struct{}))
}

func validate(configs []*Config, ids map[string]struct{}) error {
	for _, c := range configs {
		if c == nil {
			return fmt.Errorf("%w: nil route", ErrAmbiguousConfiguration)
		}

		set := 0
		for _, ok := range []bool{c.Component != nil, c.Strategy != nil, c.RedirectTo != ""} {
			if ok {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("%w: route %q must set exactly one of component, strategy or redirect", ErrAmbiguousConfiguration, c.Key())
		}

		if c.ID != "" {
			if _, dup := ids[c.ID]; dup {
				return fmt.Errorf("%w: duplicate route id %q", ErrAmbiguousConfiguration, c.ID)
			}
			ids[c.ID] = struct{}{}
		}

		for _, p := range c.Paths() {
			if _, err := parsePattern(p); err != nil {
				return fmt.Errorf("route %q: %w", c.Key(), err)
			}
		}

		if err := validate(c.Children, ids); err != nil {
			return err
		}
	}
	return nil
}
