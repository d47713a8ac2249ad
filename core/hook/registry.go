package hook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/waypoint/core/instruction"
	"github.com/dmitrymomot/waypoint/core/logger"
	"github.com/dmitrymomot/waypoint/core/navigation"
)

// Registry stores hooks and runs them. Every run works on a snapshot taken
// when it starts, so registrations made meanwhile apply to later navigations.
type Registry struct {
	mu     sync.RWMutex
	hooks  []*registration
	logger *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers h. Include and Exclude only affect BeforeNavigation hooks.
func (r *Registry) Add(h Hook, opts ...Option) error {
	if !h.valid() {
		return fmt.Errorf("%s: %w", h.typ, ErrNilHook)
	}
	reg := &registration{Hook: h}
	for _, opt := range opts {
		opt(reg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, reg)
	return nil
}

// RemoveAll drops every registered hook.
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = nil
}

// Len returns the number of hooks of type t.
func (r *Registry) Len(t Type) int {
	return len(r.snapshot(t))
}

func (r *Registry) snapshot(t Type) []*registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*registration
	for _, h := range r.hooks {
		if h.typ == t {
			out = append(out, h)
		}
	}
	return out
}

// TransformFromURL chains every TransformFromURL hook over loc.
func (r *Registry) TransformFromURL(ctx context.Context, loc instruction.Location, nav *navigation.Navigation) (instruction.Location, error) {
	return r.transform(ctx, TypeTransformFromURL, loc, nav)
}

// TransformToURL chains every TransformToURL hook over loc.
func (r *Registry) TransformToURL(ctx context.Context, loc instruction.Location, nav *navigation.Navigation) (instruction.Location, error) {
	return r.transform(ctx, TypeTransformToURL, loc, nav)
}

func (r *Registry) transform(ctx context.Context, t Type, loc instruction.Location, nav *navigation.Navigation) (instruction.Location, error) {
	for i, h := range r.snapshot(t) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := callTransform(ctx, h.transform, loc, nav)
		if err != nil {
			return nil, &HookExecutionError{Type: t, Index: i, Err: err}
		}
		loc = next
	}
	return loc, nil
}

// BeforeNavigation runs the BeforeNavigation hooks that apply to tree. A
// cancelling hook stops the run. A replacing hook hands its tree to the hooks
// after it and the last replacement is returned.
func (r *Registry) BeforeNavigation(ctx context.Context, tree *instruction.Tree, nav *navigation.Navigation) (Verdict, error) {
	result := Continue()
	for i, h := range r.snapshot(TypeBeforeNavigation) {
		if !h.applies(tree.Paths()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Verdict{}, err
		}

		v, err := callBefore(ctx, h.before, tree, nav)
		if err != nil {
			return Verdict{}, &HookExecutionError{Type: TypeBeforeNavigation, Index: i, Err: err}
		}
		switch v.kind {
		case verdictCancel:
			r.logger.DebugContext(ctx, "navigation cancelled by hook",
				logger.Hook(TypeBeforeNavigation.String()),
				logger.Count("index", i))
			return v, nil
		case verdictReplace:
			tree = v.tree
			result = v
		}
	}
	return result, nil
}

func callTransform(ctx context.Context, fn TransformFunc, loc instruction.Location, nav *navigation.Navigation) (out instruction.Location, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(ctx, loc, nav)
}

func callBefore(ctx context.Context, fn BeforeNavigationFunc, tree *instruction.Tree, nav *navigation.Navigation) (v Verdict, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(ctx, tree, nav)
}
