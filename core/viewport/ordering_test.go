package viewport_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/core/viewport"
)

func TestLookup_Matrix(t *testing.T) {
	t.Parallel()

	strategies := []viewport.SwapStrategy{
		viewport.SequentialRemoveFirst,
		viewport.SequentialAddFirst,
		viewport.ParallelRemoveFirst,
	}
	policies := map[viewport.DeferPolicy]viewport.Stage{
		viewport.DeferLoadHooks:  viewport.StageLoad,
		viewport.DeferGuardHooks: viewport.StageGuards,
		viewport.DeferNone:       viewport.StageNone,
	}

	for _, s := range strategies {
		for d, gate := range policies {
			t.Run(s.String()+"/"+d.String(), func(t *testing.T) {
				t.Parallel()
				o := viewport.Lookup(s, d)
				assert.Equal(t, s, o.Strategy)
				assert.Equal(t, d, o.Policy)
				assert.Equal(t, gate, o.Gate())
				assert.Equal(t, s != viewport.SequentialAddFirst, o.RemoveFirst())
				assert.Equal(t, s == viewport.ParallelRemoveFirst, o.Parallel())
			})
		}
	}

	fallback := viewport.Lookup(viewport.SwapStrategy(9), viewport.DeferPolicy(9))
	assert.Equal(t, viewport.SequentialRemoveFirst, fallback.Strategy)
	assert.Equal(t, viewport.DeferLoadHooks, fallback.Policy)
}

func TestOrdering_Pair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		strategy viewport.SwapStrategy
		want     []string
	}{
		{viewport.SequentialRemoveFirst, []string{"remove", "add"}},
		{viewport.SequentialAddFirst, []string{"add", "remove"}},
		{viewport.ParallelRemoveFirst, []string{"remove", "add"}},
	}
	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			t.Parallel()

			var got []string
			step := func(name string) viewport.Step {
				return func(context.Context) error {
					got = append(got, name)
					return nil
				}
			}
			o := viewport.Lookup(tt.strategy, viewport.DeferNone)
			require.NoError(t, o.Pair(context.Background(), step("remove"), step("add")))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrdering_PairStopsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	added := false
	o := viewport.Lookup(viewport.SequentialRemoveFirst, viewport.DeferNone)

	err := o.Pair(context.Background(),
		func(context.Context) error { return boom },
		func(context.Context) error { added = true; return nil },
	)
	assert.ErrorIs(t, err, boom)
	assert.False(t, added)

	require.NoError(t, o.Pair(context.Background(), nil, nil))
}

func TestOrdering_EachSequential(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var visited []int
	o := viewport.Lookup(viewport.SequentialRemoveFirst, viewport.DeferLoadHooks)

	err := o.Each(context.Background(), 4, func(_ context.Context, i int) error {
		visited = append(visited, i)
		if i == 1 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{0, 1}, visited)
}

func TestOrdering_EachParallel(t *testing.T) {
	t.Parallel()

	const n = 3
	var (
		started sync.WaitGroup
		done    atomic.Int32
	)
	started.Add(n)
	errA, errB := errors.New("a"), errors.New("b")

	o := viewport.Lookup(viewport.ParallelRemoveFirst, viewport.DeferNone)
	err := o.Each(context.Background(), n, func(_ context.Context, i int) error {
		started.Done()
		// every sibling must be running before any of them returns
		waitTimeout(t, &started, time.Second)
		done.Add(1)
		switch i {
		case 0:
			return errA
		case 2:
			return errB
		}
		return nil
	})
	assert.Equal(t, int32(n), done.Load())
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestOrdering_EachParallelStopsSiblings(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var cause atomic.Value

	o := viewport.Lookup(viewport.ParallelRemoveFirst, viewport.DeferGuardHooks)
	err := o.Each(context.Background(), 2, func(ctx context.Context, i int) error {
		if i == 0 {
			return boom
		}
		select {
		case <-ctx.Done():
			cause.Store(context.Cause(ctx))
			return ctx.Err()
		case <-time.After(time.Second):
			return errors.New("sibling was not stopped")
		}
	})
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, viewport.ErrSiblingFailed)
	if c := cause.Load(); c != nil {
		assert.ErrorIs(t, c.(error), viewport.ErrSiblingFailed)
	}
}

func TestOrdering_EachParallelParentCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	o := viewport.Lookup(viewport.ParallelRemoveFirst, viewport.DeferNone)
	err := o.Each(ctx, 2, func(ctx context.Context, _ int) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrdering_EachCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	o := viewport.Lookup(viewport.SequentialRemoveFirst, viewport.DeferNone)
	err := o.Each(ctx, 2, func(context.Context, int) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestPolicy_UnmarshalText(t *testing.T) {
	t.Parallel()

	var s viewport.SwapStrategy
	require.NoError(t, s.UnmarshalText([]byte("parallel-remove-first")))
	assert.Equal(t, viewport.ParallelRemoveFirst, s)
	assert.ErrorIs(t, s.UnmarshalText([]byte("sideways")), viewport.ErrUnknownPolicy)

	var d viewport.DeferPolicy
	require.NoError(t, d.UnmarshalText([]byte("guard-hooks")))
	assert.Equal(t, viewport.DeferGuardHooks, d)
	assert.ErrorIs(t, d.UnmarshalText([]byte("later")), viewport.ErrUnknownPolicy)

	text, err := viewport.DeferNone.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "none", string(text))
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	ch := make(chan struct{})
	go func() {
		wg.Wait()
		close(ch)
	}()
	select {
	case <-ch:
	case <-time.After(d):
		t.Error("siblings did not run concurrently")
	}
}
