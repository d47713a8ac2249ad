package viewport

import (
	"context"
	"errors"

	"github.com/dmitrymomot/waypoint/pkg/async"
)

// ErrSiblingFailed is the cancellation cause seen by parallel siblings once
// one of them has failed.
var ErrSiblingFailed = errors.New("sibling failed")

// Stage is a point in a parent's hook sequence that child hooks may wait for.
type Stage uint8

const (
	// StageNone lets children start immediately.
	StageNone Stage = iota
	// StageGuards holds children until the parent's guards settle.
	StageGuards
	// StageLoad holds child resolution until the parent has loaded.
	StageLoad
)

func (s Stage) String() string {
	switch s {
	case StageGuards:
		return "guards"
	case StageLoad:
		return "load"
	default:
		return "none"
	}
}

// Step is one hook sequence of a swap.
type Step func(ctx context.Context) error

// Ordering is the emission order selected by a swap strategy and defer policy.
type Ordering struct {
	Strategy SwapStrategy
	Policy   DeferPolicy

	removeFirst bool
	parallel    bool
	gate        Stage
}

var orderings = [...][3]Ordering{
	SequentialRemoveFirst: {
		DeferLoadHooks:  {SequentialRemoveFirst, DeferLoadHooks, true, false, StageLoad},
		DeferGuardHooks: {SequentialRemoveFirst, DeferGuardHooks, true, false, StageGuards},
		DeferNone:       {SequentialRemoveFirst, DeferNone, true, false, StageNone},
	},
	SequentialAddFirst: {
		DeferLoadHooks:  {SequentialAddFirst, DeferLoadHooks, false, false, StageLoad},
		DeferGuardHooks: {SequentialAddFirst, DeferGuardHooks, false, false, StageGuards},
		DeferNone:       {SequentialAddFirst, DeferNone, false, false, StageNone},
	},
	ParallelRemoveFirst: {
		DeferLoadHooks:  {ParallelRemoveFirst, DeferLoadHooks, true, true, StageLoad},
		DeferGuardHooks: {ParallelRemoveFirst, DeferGuardHooks, true, true, StageGuards},
		DeferNone:       {ParallelRemoveFirst, DeferNone, true, true, StageNone},
	},
}

// Lookup returns the ordering of a strategy and policy. Unknown values fall
// back to the defaults.
func Lookup(s SwapStrategy, d DeferPolicy) Ordering {
	if int(s) >= len(orderings) {
		s = SequentialRemoveFirst
	}
	if int(d) >= len(orderings[s]) {
		d = DeferLoadHooks
	}
	return orderings[s][d]
}

// Gate returns the parent stage a child waits for.
func (o Ordering) Gate() Stage { return o.gate }

// RemoveFirst reports whether removal precedes addition within a subtree.
func (o Ordering) RemoveFirst() bool { return o.removeFirst }

// Parallel reports whether sibling subtrees run concurrently.
func (o Ordering) Parallel() bool { return o.parallel }

// Pair runs the removal and addition steps of one subtree in order. Nil steps
// are skipped and the first error stops the pair.
func (o Ordering) Pair(ctx context.Context, remove, add Step) error {
	first, second := remove, add
	if !o.removeFirst {
		first, second = add, remove
	}
	for _, step := range []Step{first, second} {
		if step == nil {
			continue
		}
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Each calls fn for n siblings. Sequential orderings go left to right and stop
// at the first error. Parallel orderings start every sibling; the first error
// cancels the context the others see with ErrSiblingFailed as its cause. Each
// waits for all of them and joins the errors of the hooks that ran, leaving
// out the ones that only report the stop.
func (o Ordering) Each(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if !o.parallel || n < 2 {
		for i := range n {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	sctx, stop := context.WithCancelCause(ctx)
	defer stop(nil)

	futures := make([]*async.ExecFuture, n)
	for i := range n {
		futures[i] = async.Exec(sctx, i, func(ctx context.Context, i int) error {
			err := fn(ctx, i)
			if err != nil {
				stop(ErrSiblingFailed)
			}
			return err
		})
	}
	err := async.ExecAll(futures...)
	if err == nil || ctx.Err() != nil {
		return err
	}
	if pruned := prune(err); pruned != nil {
		return pruned
	}
	return err
}

// prune drops the errors of siblings that gave up because another failed.
func prune(err error) error {
	if !stopped(err) {
		return err
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	var kept []error
	for _, e := range joined.Unwrap() {
		if e = prune(e); e != nil {
			kept = append(kept, e)
		}
	}
	return errors.Join(kept...)
}

func stopped(err error) bool {
	return errors.Is(err, ErrSiblingFailed) || errors.Is(err, context.Canceled)
}
