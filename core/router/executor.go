package router

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/hook"
	"github.com/dmitrymomot/waypoint/core/instruction"
	"github.com/dmitrymomot/waypoint/core/logger"
	"github.com/dmitrymomot/waypoint/core/navigation"
	"github.com/dmitrymomot/waypoint/core/route"
	"github.com/dmitrymomot/waypoint/core/viewport"
)

// executor runs the stages of one transition over its change set.
type executor struct {
	r        *Router
	t        *Transition
	ordering viewport.Ordering

	mu        sync.Mutex
	created   []*route.Node
	committed bool
	outbound  *instruction.Tree
}

// execute takes the transition from pending up to the pointer flip. Once the
// transition is cancelled its cause is reported instead of the error of the
// step that noticed it.
func (x *executor) execute(loc instruction.Location) error {
	err := x.attempt(loc)
	if err != nil && x.t.ctx.Err() != nil {
		return context.Cause(x.t.ctx)
	}
	return err
}

func (x *executor) attempt(loc instruction.Location) error {
	r, t := x.r, x.t
	ctx, nav := t.ctx, t.nav
	prev := r.state.Load()

	loc, err := r.hooks.TransformFromURL(ctx, loc, nav)
	if err != nil {
		return err
	}
	tree, err := instruction.FromLocation(loc)
	if err != nil {
		return err
	}
	root, err := x.resolve(ctx, tree, prev)
	if err != nil {
		return err
	}

	verdict, err := r.hooks.BeforeNavigation(ctx, tree, nav)
	switch {
	case err != nil:
		return err
	case verdict.Cancelled():
		return &GuardRejectedError{Hook: hook.TypeBeforeNavigation.String()}
	case verdict.Replacement() != nil:
		tree = verdict.Replacement()
		if root, err = x.resolve(ctx, tree, prev); err != nil {
			return err
		}
	}

	if err := t.enter(StatusGuarding); err != nil {
		return err
	}
	var from *route.Node
	if prev != nil {
		from = prev.root
	}
	set := viewport.Diff(from, root)
	changed := set.Changed()

	switch {
	case !changed:
		// Same tree: the new nodes take over the live instances and no hook runs.
		set.Walk(func(c *viewport.Change) {
			if c.From != nil && c.To != nil {
				c.To.Instance = c.From.Instance
			}
		})
	case x.ordering.Gate() == viewport.StageLoad:
		err = x.stage(ctx, set)
	default:
		err = x.guardAll(ctx, set)
		if err == nil {
			if err = t.enter(StatusLoading); err == nil {
				err = x.loads(ctx, set)
			}
		}
	}
	if err != nil {
		return err
	}

	if err := t.enter(StatusCommitting); err != nil {
		return err
	}
	if changed {
		if err := x.commit(context.WithoutCancel(ctx), set); err != nil {
			return err
		}
	}

	cur, outbound := project(root, tree, nav, r.titleSeparator)
	r.state.Store(&state{root: root, nav: nav, current: cur})
	x.committed = true
	x.outbound = outbound
	return nil
}

// resolve builds the candidate tree. Under the load-hooks policy only the
// top level is resolved; deeper levels follow as their parents load.
func (x *executor) resolve(ctx context.Context, tree *instruction.Tree, prev *state) (*route.Node, error) {
	root := route.NewRoot(x.r.root, tree.Query)
	nodes, err := x.r.resolver.Resolve(ctx, route.Request{
		Parent:       root,
		Instructions: tree.Children,
		Navigation:   x.t.nav,
		Query:        tree.Query,
		Deep:         x.ordering.Gate() != viewport.StageLoad,
	})
	if err != nil {
		return nil, err
	}

	if x.t.nav.Options.TransitionPlan == navigation.PlanAppend && prev != nil {
		nodes = appendKept(x.r.root, nodes, prev.root.Children)
	}
	root.SetChildren(nodes)
	return root, nil
}

// appendKept adds the committed nodes of viewports the new nodes leave empty.
func appendKept(owner *component.Definition, nodes, kept []*route.Node) []*route.Node {
	used := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		used[n.Viewport] = true
	}
	for _, k := range kept {
		if !used[k.Viewport] {
			nodes = append(nodes, k)
		}
	}
	declared := owner.DeclaredViewports()
	slices.SortStableFunc(nodes, func(a, b *route.Node) int {
		return slices.Index(declared, a.Viewport) - slices.Index(declared, b.Viewport)
	})
	return nodes
}

// guardAll evaluates every guard of a fully resolved change set. Without
// deferral all guards are issued at once; otherwise canLoad runs top-down so
// a parent's guard settles before its children's.
func (x *executor) guardAll(ctx context.Context, set viewport.ChangeSet) error {
	if x.ordering.Gate() == viewport.StageNone {
		unloads, loads, err := x.collect(ctx, set)
		if err != nil {
			return err
		}
		if err := fanOut(ctx, unloads, x.canUnload); err != nil {
			return err
		}
		return fanOut(ctx, loads, x.canLoad)
	}

	if err := x.guardUnloads(ctx, set); err != nil {
		return err
	}
	return x.guardLoads(ctx, set)
}

// collect lists the nodes to guard and prepares their instances.
func (x *executor) collect(ctx context.Context, set viewport.ChangeSet) (unloads, loads []*route.Node, err error) {
	for _, c := range set {
		switch c.Kind {
		case viewport.Remove:
			unloads = append(unloads, postOrder(c.From)...)
		case viewport.Replace, viewport.Add:
			if c.From != nil {
				unloads = append(unloads, postOrder(c.From)...)
			}
			for _, n := range preOrder(c.To) {
				if err := x.create(ctx, n); err != nil {
					return nil, nil, err
				}
				loads = append(loads, n)
			}
		case viewport.Update, viewport.Unchanged:
			c.To.Instance = c.From.Instance
			if c.Kind == viewport.Update {
				unloads = append(unloads, c.From)
				loads = append(loads, c.To)
			}
			u, l, err := x.collect(ctx, c.DiffChildren())
			if err != nil {
				return nil, nil, err
			}
			unloads, loads = append(unloads, u...), append(loads, l...)
		}
	}
	return unloads, loads, nil
}

var fanOutOrdering = viewport.Lookup(viewport.ParallelRemoveFirst, viewport.DeferNone)

// fanOut issues fn for every node at once.
func fanOut(ctx context.Context, nodes []*route.Node, fn func(context.Context, *route.Node) error) error {
	return fanOutOrdering.Each(ctx, len(nodes), func(ctx context.Context, i int) error {
		return fn(ctx, nodes[i])
	})
}

func (x *executor) guardUnloads(ctx context.Context, set viewport.ChangeSet) error {
	return x.ordering.Each(ctx, len(set), func(ctx context.Context, i int) error {
		c := set[i]
		switch c.Kind {
		case viewport.Remove, viewport.Replace:
			return x.guardUnloadTree(ctx, c.From)
		case viewport.Update:
			if err := x.guardUnloads(ctx, c.DiffChildren()); err != nil {
				return err
			}
			return x.canUnload(ctx, c.From)
		case viewport.Unchanged:
			return x.guardUnloads(ctx, c.DiffChildren())
		}
		return nil
	})
}

func (x *executor) guardUnloadTree(ctx context.Context, n *route.Node) error {
	err := x.ordering.Each(ctx, len(n.Children), func(ctx context.Context, i int) error {
		return x.guardUnloadTree(ctx, n.Children[i])
	})
	if err != nil {
		return err
	}
	return x.canUnload(ctx, n)
}

func (x *executor) guardLoads(ctx context.Context, set viewport.ChangeSet) error {
	return x.ordering.Each(ctx, len(set), func(ctx context.Context, i int) error {
		c := set[i]
		switch c.Kind {
		case viewport.Add, viewport.Replace:
			return x.guardLoadTree(ctx, c.To)
		case viewport.Update:
			c.To.Instance = c.From.Instance
			if err := x.canLoad(ctx, c.To); err != nil {
				return err
			}
			return x.guardLoads(ctx, c.DiffChildren())
		case viewport.Unchanged:
			c.To.Instance = c.From.Instance
			return x.guardLoads(ctx, c.DiffChildren())
		}
		return nil
	})
}

func (x *executor) guardLoadTree(ctx context.Context, n *route.Node) error {
	if err := x.create(ctx, n); err != nil {
		return err
	}
	if err := x.canLoad(ctx, n); err != nil {
		return err
	}
	return x.ordering.Each(ctx, len(n.Children), func(ctx context.Context, i int) error {
		return x.guardLoadTree(ctx, n.Children[i])
	})
}

// loads issues unload and load hooks over a guarded change set.
func (x *executor) loads(ctx context.Context, set viewport.ChangeSet) error {
	return x.ordering.Each(ctx, len(set), func(ctx context.Context, i int) error {
		c := set[i]
		switch c.Kind {
		case viewport.Remove:
			return x.unloadTree(ctx, c.From)
		case viewport.Add:
			return x.loadTree(ctx, c.To)
		case viewport.Replace:
			return x.ordering.Pair(ctx,
				func(ctx context.Context) error { return x.unloadTree(ctx, c.From) },
				func(ctx context.Context) error { return x.loadTree(ctx, c.To) })
		case viewport.Update:
			err := x.ordering.Pair(ctx,
				func(ctx context.Context) error { return x.unload(ctx, c.From) },
				func(ctx context.Context) error { return x.load(ctx, c.To) })
			if err != nil {
				return err
			}
			return x.loads(ctx, c.DiffChildren())
		default:
			return x.loads(ctx, c.DiffChildren())
		}
	})
}

func (x *executor) loadTree(ctx context.Context, n *route.Node) error {
	if err := x.load(ctx, n); err != nil {
		return err
	}
	return x.ordering.Each(ctx, len(n.Children), func(ctx context.Context, i int) error {
		return x.loadTree(ctx, n.Children[i])
	})
}

func (x *executor) unloadTree(ctx context.Context, n *route.Node) error {
	err := x.ordering.Each(ctx, len(n.Children), func(ctx context.Context, i int) error {
		return x.unloadTree(ctx, n.Children[i])
	})
	if err != nil {
		return err
	}
	return x.unload(ctx, n)
}

// stage runs guards and loads one level at a time. Children of a level are
// resolved only after their parent has loaded, so a loaded instance may
// supply its own child routes.
func (x *executor) stage(ctx context.Context, set viewport.ChangeSet) error {
	err := x.ordering.Each(ctx, len(set), func(ctx context.Context, i int) error {
		c := set[i]
		switch c.Kind {
		case viewport.Remove, viewport.Replace:
			return x.guardUnloadTree(ctx, c.From)
		case viewport.Update:
			return x.canUnload(ctx, c.From)
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = x.ordering.Each(ctx, len(set), func(ctx context.Context, i int) error {
		c := set[i]
		switch c.Kind {
		case viewport.Add, viewport.Replace:
			if err := x.create(ctx, c.To); err != nil {
				return err
			}
			return x.canLoad(ctx, c.To)
		case viewport.Update:
			c.To.Instance = c.From.Instance
			return x.canLoad(ctx, c.To)
		case viewport.Unchanged:
			c.To.Instance = c.From.Instance
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := x.t.enter(StatusLoading); err != nil {
		return err
	}
	err = x.ordering.Each(ctx, len(set), func(ctx context.Context, i int) error {
		c := set[i]
		switch c.Kind {
		case viewport.Remove:
			return x.unloadTree(ctx, c.From)
		case viewport.Add:
			return x.load(ctx, c.To)
		case viewport.Replace:
			return x.ordering.Pair(ctx,
				func(ctx context.Context) error { return x.unloadTree(ctx, c.From) },
				func(ctx context.Context) error { return x.load(ctx, c.To) })
		case viewport.Update:
			return x.ordering.Pair(ctx,
				func(ctx context.Context) error { return x.unload(ctx, c.From) },
				func(ctx context.Context) error { return x.load(ctx, c.To) })
		}
		return nil
	})
	if err != nil {
		return err
	}

	return x.ordering.Each(ctx, len(set), func(ctx context.Context, i int) error {
		c := set[i]
		if c.To == nil {
			return nil
		}
		if err := x.resolveChildren(ctx, c.To); err != nil {
			return err
		}
		if c.Kind == viewport.Add || c.Kind == viewport.Replace {
			return x.stage(ctx, viewport.DiffLevel(c.To.Component, nil, c.To.Children))
		}
		return x.stage(ctx, c.DiffChildren())
	})
}

func (x *executor) resolveChildren(ctx context.Context, n *route.Node) error {
	if n.Resolved() {
		return nil
	}
	var configs []*route.Config
	if rp, ok := n.Instance.(route.RouteProvider); ok {
		err := protect("routes", n.Component.Name, func() error {
			configs = rp.Routes()
			return nil
		})
		if err != nil {
			return err
		}
	}
	return x.r.resolver.ResolveChildren(ctx, n, configs, x.t.nav, false)
}

// commit issues the view lifecycle hooks. It is not cancellable.
func (x *executor) commit(ctx context.Context, set viewport.ChangeSet) error {
	return x.ordering.Each(ctx, len(set), func(ctx context.Context, i int) error {
		c := set[i]
		switch c.Kind {
		case viewport.Remove:
			return x.removeLifecycle(ctx, c.From)
		case viewport.Add:
			return x.addLifecycle(ctx, c.To)
		case viewport.Replace:
			return x.ordering.Pair(ctx,
				func(ctx context.Context) error { return x.removeLifecycle(ctx, c.From) },
				func(ctx context.Context) error { return x.addLifecycle(ctx, c.To) })
		default:
			return x.commit(ctx, c.DiffChildren())
		}
	})
}

func (x *executor) addLifecycle(ctx context.Context, n *route.Node) error {
	for _, h := range component.AddHooks[:3] {
		if err := x.lifecycle(ctx, n, h); err != nil {
			return err
		}
	}
	err := x.ordering.Each(ctx, len(n.Children), func(ctx context.Context, i int) error {
		return x.addLifecycle(ctx, n.Children[i])
	})
	if err != nil {
		return err
	}
	return x.lifecycle(ctx, n, component.Attached)
}

func (x *executor) removeLifecycle(ctx context.Context, n *route.Node) error {
	if err := x.lifecycle(ctx, n, component.Detaching); err != nil {
		return err
	}
	err := x.ordering.Each(ctx, len(n.Children), func(ctx context.Context, i int) error {
		return x.removeLifecycle(ctx, n.Children[i])
	})
	if err != nil {
		return err
	}
	for _, h := range component.RemoveHooks[1:] {
		if err := x.lifecycle(ctx, n, h); err != nil {
			return err
		}
	}
	return nil
}

func (x *executor) lifecycle(ctx context.Context, n *route.Node, h component.Hook) error {
	if n.Instance == nil {
		return nil
	}
	if err := x.r.runtime.Lifecycle(ctx, n.Instance, h); err != nil {
		return &LifecycleError{Hook: h.String(), Component: n.Component.Name, Err: err}
	}
	return nil
}

func (x *executor) create(ctx context.Context, n *route.Node) error {
	if n.Instance != nil {
		return nil
	}
	if err := x.live(ctx); err != nil {
		return err
	}
	inst, err := x.r.runtime.Create(ctx, n.Component)
	if err != nil {
		return &LifecycleError{Hook: "create", Component: n.Component.Name, Err: err}
	}
	n.Instance = inst

	x.mu.Lock()
	x.created = append(x.created, n)
	x.mu.Unlock()
	return nil
}

func (x *executor) args(n *route.Node) component.LoadArgs {
	return component.LoadArgs{Params: n.Params, Query: n.Query, Navigation: x.t.nav}
}

func (x *executor) canLoad(ctx context.Context, n *route.Node) error {
	cl, ok := n.Instance.(component.CanLoader)
	if !ok {
		return nil
	}
	return x.guard(ctx, "canLoad", n, func() (bool, error) {
		return cl.CanLoad(ctx, x.args(n))
	})
}

func (x *executor) canUnload(ctx context.Context, n *route.Node) error {
	cu, ok := n.Instance.(component.CanUnloader)
	if !ok {
		return nil
	}
	return x.guard(ctx, "canUnload", n, func() (bool, error) {
		return cu.CanUnload(ctx, x.t.nav)
	})
}

func (x *executor) guard(ctx context.Context, name string, n *route.Node, fn func() (bool, error)) error {
	if err := x.live(ctx); err != nil {
		return err
	}
	var allowed bool
	err := protect(name, n.Component.Name, func() (err error) {
		allowed, err = fn()
		return err
	})
	if err := x.t.check(); err != nil {
		return err
	}
	if err != nil {
		return err
	}
	if !allowed {
		return &GuardRejectedError{Hook: name, Viewport: n.Viewport, Component: n.Component.Name}
	}
	x.r.logger.DebugContext(ctx, "guard passed",
		logger.Hook(name),
		logger.Component(n.Component.Name),
		logger.Viewport(n.Viewport))
	return nil
}

func (x *executor) load(ctx context.Context, n *route.Node) error {
	l, ok := n.Instance.(component.Loader)
	if !ok {
		return nil
	}
	return x.call(ctx, "load", n, func() error { return l.Load(ctx, x.args(n)) })
}

func (x *executor) unload(ctx context.Context, n *route.Node) error {
	u, ok := n.Instance.(component.Unloader)
	if !ok {
		return nil
	}
	return x.call(ctx, "unload", n, func() error { return u.Unload(ctx, x.t.nav) })
}

func (x *executor) call(ctx context.Context, name string, n *route.Node, fn func() error) error {
	if err := x.live(ctx); err != nil {
		return err
	}
	err := protect(name, n.Component.Name, fn)
	if cerr := x.t.check(); cerr != nil {
		return cerr
	}
	return err
}

// live reports why no further hook may be issued: the transition was
// cancelled or a parallel sibling failed.
func (x *executor) live(ctx context.Context) error {
	if err := x.t.check(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return nil
}

// discard disposes instances created by an attempt that did not commit.
func (x *executor) discard() {
	if x.committed {
		return
	}
	ctx := context.WithoutCancel(x.t.ctx)
	x.mu.Lock()
	created := x.created
	x.created = nil
	x.mu.Unlock()

	for i := len(created) - 1; i >= 0; i-- {
		n := created[i]
		if err := x.r.runtime.Lifecycle(ctx, n.Instance, component.Dispose); err != nil {
			x.r.logger.WarnContext(ctx, "discarded instance failed to dispose",
				logger.Component(n.Component.Name),
				logger.Error(err))
		}
		n.Instance = nil
	}
}

// writeHistory runs the transformToUrl hooks over the committed instructions
// and hands the result to the history synchronizer.
func (x *executor) writeHistory(ctx context.Context, cur *CurrentRoute) error {
	loc, err := x.r.hooks.TransformToURL(ctx, x.outbound, x.t.nav)
	if err != nil {
		return err
	}
	if x.r.history == nil {
		return nil
	}
	_, err = x.r.history.Commit(ctx, x.t.nav, locationString(loc), cur.Title)
	return err
}

// protect runs fn and turns a panic into a LifecycleError.
func protect(hookName, componentName string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &LifecycleError{
				Hook:      hookName,
				Component: componentName,
				Err:       fmt.Errorf("%w: %v", component.ErrLifecyclePanic, rec),
			}
		}
	}()
	if err := fn(); err != nil {
		return &LifecycleError{Hook: hookName, Component: componentName, Err: err}
	}
	return nil
}

func preOrder(n *route.Node) []*route.Node {
	var out []*route.Node
	n.Walk(func(c *route.Node) { out = append(out, c) })
	return out
}

func postOrder(n *route.Node) []*route.Node {
	var out []*route.Node
	for _, c := range n.Children {
		out = append(out, postOrder(c)...)
	}
	return append(out, n)
}
