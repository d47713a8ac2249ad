package viewport_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/instruction"
	"github.com/dmitrymomot/waypoint/core/route"
	"github.com/dmitrymomot/waypoint/core/viewport"
)

var (
	appDef = &component.Definition{Name: "app", Viewports: []string{"vp1", "vp2"}}
	c1Def  = &component.Definition{Name: "c1"}
	c2Def  = &component.Definition{Name: "c2"}
	c11Def = &component.Definition{Name: "c11"}
	c12Def = &component.Definition{Name: "c12"}
	pDef   = &component.Definition{Name: "p"}
	xDef   = &component.Definition{Name: "x"}
)

func newResolver(t *testing.T) *route.Resolver {
	t.Helper()
	r, err := route.NewResolver([]*route.Config{
		{ID: "c1", Component: c1Def, Children: []*route.Config{
			{ID: "c11", Component: c11Def},
			{ID: "c12", Path: []string{"c12/:id"}, Component: c12Def},
		}},
		{ID: "c2", Component: c2Def},
		{ID: "p", Path: []string{"p/:id"}, Component: pDef, Children: []*route.Config{
			{ID: "x", Component: xDef},
		}},
	})
	require.NoError(t, err)
	return r
}

func tree(t *testing.T, r *route.Resolver, raw string, deep bool) *route.Node {
	t.Helper()
	root := route.NewRoot(appDef, nil)
	nodes, err := r.Resolve(context.Background(), route.Request{
		Parent:       root,
		Instructions: instruction.MustParse(raw).Children,
		Deep:         deep,
	})
	require.NoError(t, err)
	root.SetChildren(nodes)
	return root
}

type flat struct {
	vp   string
	kind viewport.Kind
}

func flatten(set viewport.ChangeSet) []flat {
	var out []flat
	set.Walk(func(c *viewport.Change) {
		out = append(out, flat{c.Viewport, c.Kind})
	})
	return out
}

func TestDiff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    string
		to      string
		want    []flat
		changed bool
	}{
		{
			name:    "initial load",
			to:      "c1+c2",
			want:    []flat{{"vp1", viewport.Add}, {"vp2", viewport.Add}},
			changed: true,
		},
		{
			name:    "siblings swapped",
			from:    "c1+c2",
			to:      "c2+c1",
			want:    []flat{{"vp1", viewport.Replace}, {"vp2", viewport.Replace}},
			changed: true,
		},
		{
			name: "child replaced under unchanged parent",
			from: "c1/c11",
			to:   "c1/c12/1",
			want: []flat{
				{"vp1", viewport.Unchanged},
				{"default", viewport.Replace},
			},
			changed: true,
		},
		{
			name: "parameter change updates the subtree",
			from: "p/1/x",
			to:   "p/2/x",
			want: []flat{
				{"vp1", viewport.Update},
				{"default", viewport.Update},
			},
			changed: true,
		},
		{
			name: "replaced parent removes old children",
			from: "c1/c11",
			to:   "c2",
			want: []flat{
				{"vp1", viewport.Replace},
				{"default", viewport.Remove},
			},
			changed: true,
		},
		{
			name: "sibling removed",
			from: "c1+c2",
			to:   "c1",
			want: []flat{
				{"vp1", viewport.Unchanged},
				{"vp2", viewport.Remove},
			},
			changed: true,
		},
		{
			name:    "same tree",
			from:    "c1/c12/3",
			to:      "c1/c12/3",
			want:    []flat{{"vp1", viewport.Unchanged}, {"default", viewport.Unchanged}},
			changed: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := newResolver(t)

			var from *route.Node
			if tt.from != "" {
				from = tree(t, r, tt.from, true)
			}
			set := viewport.Diff(from, tree(t, r, tt.to, true))
			assert.Equal(t, tt.want, flatten(set))
			assert.Equal(t, tt.changed, set.Changed())
		})
	}
}

func TestDiff_ParameterOnlyChange(t *testing.T) {
	t.Parallel()
	r := newResolver(t)

	from := tree(t, r, "c1/c12/1", true)
	to := tree(t, r, "c1/c12/2", true)
	set := viewport.Diff(from, to)

	require.Len(t, set, 1)
	require.Len(t, set[0].Children, 1)
	child := set[0].Children[0]
	assert.Equal(t, viewport.Update, child.Kind)
	assert.Equal(t, "1", child.From.Params["id"])
	assert.Equal(t, "2", child.To.Params["id"])
}

func TestDiff_Deferred(t *testing.T) {
	t.Parallel()
	r := newResolver(t)

	from := tree(t, r, "c1/c11", true)
	to := tree(t, r, "c1/c12/1", false)

	set := viewport.Diff(from, to)
	require.Len(t, set, 1)
	c := set[0]
	assert.Equal(t, viewport.Unchanged, c.Kind)
	assert.False(t, c.Ready())
	assert.Nil(t, c.DiffChildren())
	assert.True(t, set.Changed(), "an undiffed level counts as changed")

	require.NoError(t, r.ResolveChildren(context.Background(), c.To, nil, nil, false))
	assert.True(t, c.Ready())

	children := c.DiffChildren()
	require.Len(t, children, 1)
	assert.Equal(t, viewport.Replace, children[0].Kind)
	assert.Same(t, children[0], c.DiffChildren()[0], "children are diffed once")
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unchanged", viewport.Unchanged.String())
	assert.Equal(t, "replace", viewport.Replace.String())
	assert.Equal(t, "unknown", viewport.Kind(42).String())
}
