package hook_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/core/hook"
	"github.com/dmitrymomot/waypoint/core/instruction"
	"github.com/dmitrymomot/waypoint/core/navigation"
)

func prefix(p string) hook.TransformFunc {
	return func(_ context.Context, loc instruction.Location, _ *navigation.Navigation) (instruction.Location, error) {
		return instruction.URL(p + loc.String()), nil
	}
}

func TestTransformFromURL_Chaining(t *testing.T) {
	t.Parallel()

	reg := hook.NewRegistry()
	require.NoError(t, reg.Add(hook.TransformFromURL(prefix("hooked:"))))
	require.NoError(t, reg.Add(hook.TransformFromURL(prefix("hooked2:"))))
	require.NoError(t, reg.Add(hook.TransformToURL(prefix("ignored:"))))

	out, err := reg.TransformFromURL(context.Background(), instruction.URL("testing"), nil)
	require.NoError(t, err)
	assert.Equal(t, "hooked2:hooked:testing", out.String())
	assert.Equal(t, 2, reg.Len(hook.TypeTransformFromURL))
	assert.Equal(t, 1, reg.Len(hook.TypeTransformToURL))
}

func TestTransform_AlternatingRepresentations(t *testing.T) {
	t.Parallel()

	reg := hook.NewRegistry()
	toTree := func(_ context.Context, loc instruction.Location, _ *navigation.Navigation) (instruction.Location, error) {
		_, isURL := loc.(instruction.URL)
		assert.True(t, isURL)
		return instruction.Parse(loc.String())
	}
	toURL := func(_ context.Context, loc instruction.Location, _ *navigation.Navigation) (instruction.Location, error) {
		tree, ok := loc.(*instruction.Tree)
		require.True(t, ok)
		tree.Children[0].Component = "renamed"
		return instruction.URL(tree.String()), nil
	}
	require.NoError(t, reg.Add(hook.TransformToURL(toTree)))
	require.NoError(t, reg.Add(hook.TransformToURL(toURL)))

	out, err := reg.TransformToURL(context.Background(), instruction.URL("a/b"), nil)
	require.NoError(t, err)
	assert.Equal(t, instruction.URL("renamed/b"), out)
}

func TestTransform_SameNavigation(t *testing.T) {
	t.Parallel()

	nav := navigation.New(7, "x", navigation.Options{}, 0)
	var seen []*navigation.Navigation
	record := func(_ context.Context, loc instruction.Location, n *navigation.Navigation) (instruction.Location, error) {
		seen = append(seen, n)
		return loc, nil
	}

	reg := hook.NewRegistry()
	require.NoError(t, reg.Add(hook.TransformFromURL(record)))
	require.NoError(t, reg.Add(hook.TransformFromURL(record)))

	_, err := reg.TransformFromURL(context.Background(), instruction.URL("x"), nav)
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Same(t, nav, seen[0])
	assert.Same(t, nav, seen[1])
}

func TestTransform_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tests := []struct {
		name string
		fn   hook.TransformFunc
		want error
	}{
		{
			name: "returned error",
			fn: func(context.Context, instruction.Location, *navigation.Navigation) (instruction.Location, error) {
				return nil, boom
			},
			want: boom,
		},
		{
			name: "panic",
			fn: func(context.Context, instruction.Location, *navigation.Navigation) (instruction.Location, error) {
				panic("kaboom")
			},
			want: hook.ErrHookExecution,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reg := hook.NewRegistry()
			require.NoError(t, reg.Add(hook.TransformFromURL(prefix("a:"))))
			require.NoError(t, reg.Add(hook.TransformFromURL(tt.fn)))

			_, err := reg.TransformFromURL(context.Background(), instruction.URL("x"), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, hook.ErrHookExecution)

			var he *hook.HookExecutionError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, 1, he.Index)
			assert.Equal(t, hook.TypeTransformFromURL, he.Type)
		})
	}
}

func TestTransform_CancelledContext(t *testing.T) {
	t.Parallel()

	reg := hook.NewRegistry()
	require.NoError(t, reg.Add(hook.TransformFromURL(prefix("a:"))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := reg.TransformFromURL(ctx, instruction.URL("x"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdd_NilHook(t *testing.T) {
	t.Parallel()

	reg := hook.NewRegistry()
	assert.ErrorIs(t, reg.Add(hook.TransformFromURL(nil)), hook.ErrNilHook)
	assert.ErrorIs(t, reg.Add(hook.BeforeNavigation(nil)), hook.ErrNilHook)
	assert.Zero(t, reg.Len(hook.TypeTransformFromURL))
}

func TestRemoveAll(t *testing.T) {
	t.Parallel()

	reg := hook.NewRegistry()
	require.NoError(t, reg.Add(hook.TransformFromURL(prefix("a:"))))
	reg.RemoveAll()

	out, err := reg.TransformFromURL(context.Background(), instruction.URL("x"), nil)
	require.NoError(t, err)
	assert.Equal(t, "x", out.String())
}

func TestBeforeNavigation_Scoping(t *testing.T) {
	t.Parallel()

	reject := func(context.Context, *instruction.Tree, *navigation.Navigation) (hook.Verdict, error) {
		return hook.Cancel(), nil
	}

	tests := []struct {
		name      string
		opts      []hook.Option
		url       string
		cancelled bool
	}{
		{"unscoped", nil, "one", true},
		{"included", []hook.Option{hook.Include("two")}, "two", true},
		{"included prefix", []hook.Option{hook.Include("two")}, "two/details", true},
		{"not included", []hook.Option{hook.Include("two")}, "one", false},
		{"not a segment prefix", []hook.Option{hook.Include("two")}, "twofold", false},
		{"excluded", []hook.Option{hook.Exclude("two")}, "two", false},
		{"not excluded", []hook.Option{hook.Exclude("two")}, "one", true},
		{"sibling included", []hook.Option{hook.Include("two")}, "one+two", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reg := hook.NewRegistry()
			require.NoError(t, reg.Add(hook.BeforeNavigation(reject), tt.opts...))

			v, err := reg.BeforeNavigation(context.Background(), instruction.MustParse(tt.url), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.cancelled, v.Cancelled())
		})
	}
}

func TestBeforeNavigation_Replace(t *testing.T) {
	t.Parallel()

	var second *instruction.Tree
	reg := hook.NewRegistry()
	require.NoError(t, reg.Add(hook.BeforeNavigation(func(context.Context, *instruction.Tree, *navigation.Navigation) (hook.Verdict, error) {
		return hook.Replace(instruction.MustParse("login")), nil
	}), hook.Include("admin")))
	require.NoError(t, reg.Add(hook.BeforeNavigation(func(_ context.Context, tree *instruction.Tree, _ *navigation.Navigation) (hook.Verdict, error) {
		second = tree
		return hook.Continue(), nil
	})))

	v, err := reg.BeforeNavigation(context.Background(), instruction.MustParse("admin/users"), nil)
	require.NoError(t, err)
	assert.False(t, v.Cancelled())
	require.NotNil(t, v.Replacement())
	assert.Equal(t, "login", v.Replacement().String())
	require.NotNil(t, second)
	assert.Equal(t, "login", second.String())

	v, err = reg.BeforeNavigation(context.Background(), instruction.MustParse("home"), nil)
	require.NoError(t, err)
	assert.Nil(t, v.Replacement())
}

func TestBeforeNavigation_CancelStopsRun(t *testing.T) {
	t.Parallel()

	calls := 0
	reg := hook.NewRegistry()
	require.NoError(t, reg.Add(hook.BeforeNavigation(func(context.Context, *instruction.Tree, *navigation.Navigation) (hook.Verdict, error) {
		return hook.Cancel(), nil
	})))
	require.NoError(t, reg.Add(hook.BeforeNavigation(func(context.Context, *instruction.Tree, *navigation.Navigation) (hook.Verdict, error) {
		calls++
		return hook.Continue(), nil
	})))

	v, err := reg.BeforeNavigation(context.Background(), instruction.MustParse("x"), nil)
	require.NoError(t, err)
	assert.True(t, v.Cancelled())
	assert.Zero(t, calls)
}

func TestBeforeNavigation_Panic(t *testing.T) {
	t.Parallel()

	reg := hook.NewRegistry()
	require.NoError(t, reg.Add(hook.BeforeNavigation(func(context.Context, *instruction.Tree, *navigation.Navigation) (hook.Verdict, error) {
		panic("nope")
	})))

	_, err := reg.BeforeNavigation(context.Background(), instruction.MustParse("x"), nil)
	assert.ErrorIs(t, err, hook.ErrHookExecution)
}

func TestVerdict(t *testing.T) {
	t.Parallel()

	assert.False(t, hook.Continue().Cancelled())
	assert.Nil(t, hook.Continue().Replacement())
	assert.True(t, hook.Cancel().Cancelled())
	assert.True(t, hook.Replace(nil).Cancelled())
	assert.Equal(t, "beforeNavigation", hook.TypeBeforeNavigation.String())
}
