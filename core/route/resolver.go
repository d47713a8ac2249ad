package route

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/instruction"
	"github.com/dmitrymomot/waypoint/core/logger"
	"github.com/dmitrymomot/waypoint/core/navigation"
)

const maxRedirects = 16

// Resolver maps instructions to route nodes.
//
// It owns the navigation strategy cache: a strategy is invoked once per
// route key and parameter set, and the resolved component is reused until
// Invalidate or Reset is called.
type Resolver struct {
	root   []*Config
	logger *slog.Logger

	mu    sync.Mutex
	trees map[*Config]*node
	top   *node
	cache map[string]*component.Definition
	// calls collapses concurrent strategy invocations for one cache key.
	calls singleflight.Group
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver validates the top-level routes and creates a resolver for them.
func NewResolver(routes []*Config, opts ...ResolverOption) (*Resolver, error) {
	if err := Validate(routes); err != nil {
		return nil, err
	}
	top, err := newTree(routes)
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		root:   routes,
		top:    top,
		trees:  make(map[*Config]*node),
		cache:  make(map[string]*component.Definition),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Routes returns the top-level routes.
func (r *Resolver) Routes() []*Config {
	return r.root
}

// Request describes one level of resolution.
type Request struct {
	// Parent is the node the resolved nodes are nested in.
	Parent       *Node
	Instructions []*instruction.ViewportInstruction
	// Configs overrides the child routes of Parent when non-nil.
	Configs    []*Config
	Navigation *navigation.Navigation
	Query      url.Values
	// Deep resolves every descendant level. Otherwise unresolved children are
	// left pending on the returned nodes.
	Deep bool
}

// Resolve builds the nodes for req.Instructions, ordered by the declaration
// order of the parent's viewports. With no instructions, the empty-path route
// of the level is used when one exists.
func (r *Resolver) Resolve(ctx context.Context, req Request) ([]*Node, error) {
	if req.Parent == nil {
		return nil, fmt.Errorf("%w: nil parent", ErrAmbiguousConfiguration)
	}
	tree, err := r.treeFor(req)
	if err != nil {
		return nil, err
	}

	var nodes []*Node
	if len(req.Instructions) == 0 {
		nodes, err = r.resolveOne(ctx, req, tree, nil, 0)
		if errors.Is(err, ErrRouteNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}
	for _, vi := range req.Instructions {
		resolved, err := r.resolveOne(ctx, req, tree, vi, 0)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, resolved...)
	}

	if err := assignViewports(req.Parent.Component, nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// ResolveChildren resolves the pending children of n and fixes them.
func (r *Resolver) ResolveChildren(ctx context.Context, n *Node, configs []*Config, nav *navigation.Navigation, deep bool) error {
	if n.resolved {
		return nil
	}
	children, err := r.Resolve(ctx, Request{
		Parent:       n,
		Instructions: n.pending,
		Configs:      configs,
		Navigation:   nav,
		Query:        n.Query,
		Deep:         deep,
	})
	if err != nil {
		return err
	}
	n.SetChildren(children)
	return nil
}

// Invalidate drops cached strategy results of the route with the given key.
func (r *Resolver) Invalidate(routeKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := routeKey + "?"
	for k := range r.cache {
		if strings.HasPrefix(k, prefix) {
			delete(r.cache, k)
		}
	}
}

// Reset drops every cached strategy result.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.cache)
}

func (r *Resolver) treeFor(req Request) (*node, error) {
	if req.Configs != nil {
		if err := Validate(req.Configs); err != nil {
			return nil, err
		}
		return newTree(req.Configs)
	}

	cfg := req.Parent.Config
	if cfg == nil {
		return r.top, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.trees[cfg]; ok {
		return t, nil
	}
	t, err := newTree(cfg.Children)
	if err != nil {
		return nil, err
	}
	r.trees[cfg] = t
	return t, nil
}

func (r *Resolver) resolveOne(ctx context.Context, req Request, tree *node, vi *instruction.ViewportInstruction, redirects int) ([]*Node, error) {
	var (
		chain []*instruction.ViewportInstruction
		segs  []string
		path  string
	)
	if vi != nil {
		chain = vi.Chain()
		segs = make([]string, len(chain))
		for i, c := range chain {
			segs[i] = c.Component
		}
		path = strings.Join(segs, "/")
	}

	candidates := tree.findRoutes(segs)
	if len(candidates) == 0 {
		return nil, &RouteNotFoundError{Path: path}
	}

	if !req.Deep {
		candidates = preferChildCapable(candidates, chain)
	}

	var lastErr error
	for _, c := range candidates {
		cfg := c.endpoint.config
		rest := remainder(chain, c.consumed)

		if cfg.RedirectTo != "" {
			if redirects >= maxRedirects {
				return nil, fmt.Errorf("%w: %q", ErrRedirectLoop, cfg.RedirectTo)
			}
			target, err := redirectInstructions(cfg.RedirectTo, c.params, rest, vi)
			if err != nil {
				return nil, fmt.Errorf("route %q: %w", cfg.Key(), err)
			}
			r.logger.DebugContext(ctx, "route redirected", logger.Route(cfg.Key()), logger.URL(cfg.RedirectTo))

			var out []*Node
			for _, t := range target {
				nodes, err := r.resolveOne(ctx, req, tree, t, redirects+1)
				if err != nil {
					return nil, err
				}
				out = append(out, nodes...)
			}
			return out, nil
		}

		n := &Node{
			Config:   cfg,
			Segments: segs[:c.consumed],
			Pattern:  c.endpoint.pattern,
			Params:   c.params,
			Query:    req.Query,
			pending:  rest,
		}
		if vi != nil {
			n.Viewport = vi.Viewport
		}
		if n.Viewport == "" {
			n.Viewport = cfg.Viewport
		}

		def, err := r.component(ctx, req, cfg, vi, c.params)
		if err != nil {
			return nil, err
		}
		n.Component = def

		if req.Deep {
			children, err := r.Resolve(ctx, Request{
				Parent:       n,
				Instructions: rest,
				Navigation:   req.Navigation,
				Query:        req.Query,
				Deep:         true,
			})
			if errors.Is(err, ErrRouteNotFound) {
				lastErr = err
				continue
			}
			if err != nil {
				return nil, err
			}
			n.SetChildren(children)
		}
		return []*Node{n}, nil
	}
	return nil, lastErr
}

// component returns the component of cfg, invoking its strategy on a cache
// miss. Concurrent misses for the same key share one invocation.
func (r *Resolver) component(ctx context.Context, req Request, cfg *Config, vi *instruction.ViewportInstruction, params component.Params) (*component.Definition, error) {
	if cfg.Strategy == nil {
		return cfg.Component, nil
	}

	key := cacheKey(cfg, params)
	if def, ok := r.cached(key); ok {
		return def, nil
	}

	v, err, _ := r.calls.Do(key, func() (any, error) {
		if def, ok := r.cached(key); ok {
			return def, nil
		}
		def, err := r.invoke(ctx, req, cfg, vi, params)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[key] = def
		r.mu.Unlock()
		return def, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*component.Definition), nil
}

func (r *Resolver) cached(key string) (*component.Definition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.cache[key]
	return def, ok
}

func (r *Resolver) invoke(ctx context.Context, req Request, cfg *Config, vi *instruction.ViewportInstruction, params component.Params) (def *component.Definition, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			def, err = nil, &AmbiguousParameterError{RouteID: cfg.Key(), Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	def, err = cfg.Strategy(ctx, StrategyRequest{
		Instruction: vi,
		Navigation:  req.Navigation,
		Parent:      req.Parent,
		Route:       cfg,
		Params:      params,
	})
	if err != nil {
		return nil, &AmbiguousParameterError{RouteID: cfg.Key(), Err: err}
	}
	if def == nil {
		return nil, &AmbiguousParameterError{RouteID: cfg.Key(), Err: component.ErrNilDefinition}
	}

	r.logger.DebugContext(ctx, "navigation strategy resolved",
		logger.Route(cfg.Key()),
		logger.Component(def.Name))
	return def, nil
}

func cacheKey(cfg *Config, params component.Params) string {
	v := make(url.Values, len(params))
	for k, p := range params {
		v.Set(k, p)
	}
	return cfg.Key() + "?" + v.Encode()
}

// remainder returns the instructions left after consumed chain elements.
func remainder(chain []*instruction.ViewportInstruction, consumed int) []*instruction.ViewportInstruction {
	if len(chain) == 0 {
		return nil
	}
	if consumed < len(chain) {
		return []*instruction.ViewportInstruction{chain[consumed]}
	}
	return chain[len(chain)-1].Children
}

// preferChildCapable moves candidates that would leave instructions to a
// route without children behind the others. The order is otherwise kept, so
// a lone candidate still surfaces the precise error later.
func preferChildCapable(candidates []candidate, chain []*instruction.ViewportInstruction) []candidate {
	able := func(c candidate) bool {
		cfg := c.endpoint.config
		return len(remainder(chain, c.consumed)) == 0 ||
			cfg.RedirectTo != "" || cfg.Strategy != nil || len(cfg.Children) > 0
	}
	out := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if able(c) {
			out = append(out, c)
		}
	}
	for _, c := range candidates {
		if !able(c) {
			out = append(out, c)
		}
	}
	return out
}

func redirectInstructions(to string, params component.Params, rest []*instruction.ViewportInstruction, from *instruction.ViewportInstruction) ([]*instruction.ViewportInstruction, error) {
	tree, err := instruction.Parse(to)
	if err != nil {
		return nil, err
	}
	if len(tree.Children) == 0 {
		return nil, fmt.Errorf("%w: empty redirect", ErrAmbiguousConfiguration)
	}

	var substitute func(list []*instruction.ViewportInstruction)
	substitute = func(list []*instruction.ViewportInstruction) {
		for _, vi := range list {
			if strings.HasPrefix(vi.Component, ":") {
				if v, ok := params[vi.Component[1:]]; ok {
					vi.Component = v
				}
			}
			substitute(vi.Children)
		}
	}
	substitute(tree.Children)

	first := tree.Children[0]
	chain := first.Chain()
	last := chain[len(chain)-1]
	last.Children = append(last.Children, rest...)
	if from != nil && first.Viewport == "" {
		first.Viewport = from.Viewport
	}
	return tree.Children, nil
}

// assignViewports gives every node a viewport declared by parent: explicit
// viewports first, then the remaining nodes in order into the first free
// declared viewport. Nodes are then sorted by declaration order.
func assignViewports(parent *component.Definition, nodes []*Node) error {
	declared := parent.DeclaredViewports()
	name := "root"
	if parent != nil {
		name = parent.Name
	}
	used := make(map[string]bool, len(nodes))

	for _, n := range nodes {
		if n.Viewport == "" {
			continue
		}
		if !slices.Contains(declared, n.Viewport) {
			return fmt.Errorf("%w: viewport %q is not declared by %q", ErrAmbiguousConfiguration, n.Viewport, name)
		}
		if used[n.Viewport] {
			return fmt.Errorf("%w: viewport %q of %q is targeted twice", ErrAmbiguousConfiguration, n.Viewport, name)
		}
		used[n.Viewport] = true
	}

	for _, n := range nodes {
		if n.Viewport != "" {
			continue
		}
		for _, vp := range declared {
			if !used[vp] {
				n.Viewport = vp
				used[vp] = true
				break
			}
		}
		if n.Viewport == "" {
			return fmt.Errorf("%w: no free viewport in %q for %q", ErrAmbiguousConfiguration, name, n.Path())
		}
	}

	slices.SortStableFunc(nodes, func(a, b *Node) int {
		return slices.Index(declared, a.Viewport) - slices.Index(declared, b.Viewport)
	})
	return nil
}
