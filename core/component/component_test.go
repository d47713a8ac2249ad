package component_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/core/component"
)

type recorder struct {
	hooks []component.Hook
	fail  component.Hook
}

func (r *recorder) Lifecycle(_ context.Context, h component.Hook) error {
	r.hooks = append(r.hooks, h)
	if h == r.fail {
		return errors.New("boom")
	}
	return nil
}

func TestDefinition_DeclaredViewports(t *testing.T) {
	t.Parallel()

	var nilDef *component.Definition
	assert.Equal(t, []string{component.DefaultViewport}, nilDef.DeclaredViewports())
	assert.Equal(t, []string{component.DefaultViewport}, (&component.Definition{Name: "a"}).DeclaredViewports())
	assert.Equal(t, []string{"left", "right"}, (&component.Definition{Viewports: []string{"left", "right"}}).DeclaredViewports())
}

func TestParams_Equal(t *testing.T) {
	t.Parallel()

	assert.True(t, component.Params{}.Equal(component.Params{}))
	assert.True(t, component.Params{"id": "1"}.Equal(component.Params{"id": "1"}))
	assert.False(t, component.Params{"id": "1"}.Equal(component.Params{"id": "2"}))
	assert.False(t, component.Params{"id": "1"}.Equal(component.Params{}))
}

func TestDefaultRuntime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rt := component.NewRuntime()

	t.Run("create uses factory", func(t *testing.T) {
		t.Parallel()
		def := &component.Definition{Name: "rec", New: func() component.Instance { return &recorder{fail: 255} }}
		inst, err := rt.Create(ctx, def)
		require.NoError(t, err)
		assert.IsType(t, &recorder{}, inst)
	})

	t.Run("create without factory", func(t *testing.T) {
		t.Parallel()
		inst, err := rt.Create(ctx, &component.Definition{Name: "plain"})
		require.NoError(t, err)
		assert.NotNil(t, inst)
	})

	t.Run("create errors", func(t *testing.T) {
		t.Parallel()
		_, err := rt.Create(ctx, nil)
		assert.ErrorIs(t, err, component.ErrNilDefinition)

		_, err = rt.Create(ctx, &component.Definition{Name: "nil", New: func() component.Instance { return nil }})
		assert.ErrorIs(t, err, component.ErrCreateFailed)

		_, err = rt.Create(ctx, &component.Definition{Name: "panic", New: func() component.Instance { panic("no") }})
		assert.ErrorIs(t, err, component.ErrCreateFailed)
	})

	t.Run("lifecycle forwarding", func(t *testing.T) {
		t.Parallel()
		rec := &recorder{fail: component.Unbinding}
		for _, h := range component.AddHooks {
			require.NoError(t, rt.Lifecycle(ctx, rec, h))
		}
		require.NoError(t, rt.Lifecycle(ctx, rec, component.Detaching))
		require.Error(t, rt.Lifecycle(ctx, rec, component.Unbinding))
		assert.Equal(t, []component.Hook{
			component.Binding, component.Bound, component.Attaching, component.Attached,
			component.Detaching, component.Unbinding,
		}, rec.hooks)

		// instances without lifecycle support are ignored
		assert.NoError(t, rt.Lifecycle(ctx, struct{}{}, component.Dispose))
	})
}

func TestHook_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "binding", component.Binding.String())
	assert.Equal(t, "dispose", component.Dispose.String())
	assert.Equal(t, "unknown", component.Hook(99).String())
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	a := &component.Definition{Name: "a"}
	reg, err := component.NewRegistry(a)
	require.NoError(t, err)

	got, err := reg.Get("a")
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, component.ErrUnknownComponent)

	assert.ErrorIs(t, reg.Register(&component.Definition{Name: "a"}), component.ErrDuplicateComponent)
	assert.ErrorIs(t, reg.Register(nil), component.ErrNilDefinition)

	var zero component.Registry
	require.NoError(t, zero.Register(&component.Definition{Name: "z"}))
}
