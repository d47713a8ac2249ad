package component

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrymomot/waypoint/core/logger"
)

// Hook is a view lifecycle stage.
type Hook uint8

const (
	Binding Hook = iota
	Bound
	Attaching
	Attached
	Detaching
	Unbinding
	Dispose
)

var hookNames = [...]string{
	Binding:   "binding",
	Bound:     "bound",
	Attaching: "attaching",
	Attached:  "attached",
	Detaching: "detaching",
	Unbinding: "unbinding",
	Dispose:   "dispose",
}

func (h Hook) String() string {
	if int(h) < len(hookNames) {
		return hookNames[h]
	}
	return "unknown"
}

var (
	// AddHooks are issued, in order, for a component entering the tree.
	AddHooks = []Hook{Binding, Bound, Attaching, Attached}
	// RemoveHooks are issued, in order, for a component leaving the tree.
	RemoveHooks = []Hook{Detaching, Unbinding, Dispose}
)

// Runtime creates component instances and drives their view lifecycle.
type Runtime interface {
	Create(ctx context.Context, def *Definition) (Instance, error)
	Lifecycle(ctx context.Context, inst Instance, h Hook) error
}

// LifecycleAware is implemented by instances that observe lifecycle hooks
// under DefaultRuntime.
type LifecycleAware interface {
	Lifecycle(ctx context.Context, h Hook) error
}

type empty struct{}

// DefaultRuntime creates instances through Definition.New and forwards
// lifecycle hooks to LifecycleAware instances.
type DefaultRuntime struct {
	logger *slog.Logger
}

// RuntimeOption configures a DefaultRuntime.
type RuntimeOption func(*DefaultRuntime)

// WithRuntimeLogger sets the logger.
func WithRuntimeLogger(l *slog.Logger) RuntimeOption {
	return func(r *DefaultRuntime) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRuntime creates a DefaultRuntime.
func NewRuntime(opts ...RuntimeOption) *DefaultRuntime {
	r := &DefaultRuntime{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create implements Runtime.
func (r *DefaultRuntime) Create(ctx context.Context, def *Definition) (inst Instance, err error) {
	if def == nil {
		return nil, ErrNilDefinition
	}
	if def.New == nil {
		return &empty{}, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: %v", ErrCreateFailed, def.Name, rec)
		}
	}()

	inst = def.New()
	if inst == nil {
		return nil, fmt.Errorf("%w: %s returned nil", ErrCreateFailed, def.Name)
	}
	r.logger.DebugContext(ctx, "component created", logger.Component(def.Name))
	return inst, nil
}

// Lifecycle implements Runtime.
func (r *DefaultRuntime) Lifecycle(ctx context.Context, inst Instance, h Hook) (err error) {
	la, ok := inst.(LifecycleAware)
	if !ok {
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: %v", ErrLifecyclePanic, h, rec)
		}
	}()

	return la.Lifecycle(ctx, h)
}
