package router

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/atomic"

	"github.com/dmitrymomot/waypoint/core/instruction"
	"github.com/dmitrymomot/waypoint/core/navigation"
)

// Status is the state of a transition.
type Status int32

const (
	StatusPending Status = iota
	StatusGuarding
	StatusLoading
	StatusCommitting
	StatusCompleted
	StatusCancelled
	StatusFailed
)

var statusNames = [...]string{
	StatusPending:    "pending",
	StatusGuarding:   "guarding",
	StatusLoading:    "loading",
	StatusCommitting: "committing",
	StatusCompleted:  "completed",
	StatusCancelled:  "cancelled",
	StatusFailed:     "failed",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Terminal reports whether the transition has settled.
func (s Status) Terminal() bool {
	return s >= StatusCompleted
}

type request struct {
	ctx  context.Context
	loc  instruction.Location
	opts []LoadOption
}

// Transition is one attempt to move from the committed tree to a new one.
type Transition struct {
	nav    *navigation.Navigation
	status atomic.Int32

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelCauseFunc
	done   chan struct{}

	// guarded by Router.mu
	followUp *request
}

func newTransition(parent context.Context, nav *navigation.Navigation) *Transition {
	ctx, cancel := context.WithCancelCause(navigation.WithNavigation(parent, nav))
	return &Transition{
		nav:    nav,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID returns the navigation id.
func (t *Transition) ID() int64 { return t.nav.ID }

// Navigation returns the metadata handed to every hook of the transition.
func (t *Transition) Navigation() *navigation.Navigation { return t.nav }

// Status returns the current state.
func (t *Transition) Status() Status { return Status(t.status.Load()) }

// Done is closed once the transition has settled.
func (t *Transition) Done() <-chan struct{} { return t.done }

// enter moves the transition forward to s unless it has been cancelled.
// States never move backwards.
func (t *Transition) enter(s Status) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.ctx.Err(); err != nil {
		return context.Cause(t.ctx)
	}
	if Status(t.status.Load()) < s {
		t.status.Store(int32(s))
	}
	return nil
}

// abort cancels the transition with cause unless it is already committing.
func (t *Transition) abort(cause error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if Status(t.status.Load()) >= StatusCommitting {
		return false
	}
	t.cancel(cause)
	return true
}

// check returns the cancellation cause once the transition is cancelled.
func (t *Transition) check() error {
	if t.ctx.Err() != nil {
		return context.Cause(t.ctx)
	}
	return nil
}

func (t *Transition) finish(s Status) {
	t.status.Store(int32(s))
	t.cancel(nil)
}

// superseded reports whether err stems from a newer navigation or router stop.
func superseded(err error) bool {
	return errors.Is(err, ErrTransitionCancelled) || errors.Is(err, ErrRouterStopped)
}
