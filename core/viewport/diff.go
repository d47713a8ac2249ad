package viewport

import (
	"slices"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/route"
)

// Kind classifies a viewport change.
type Kind uint8

const (
	Unchanged Kind = iota
	Update
	Replace
	Add
	Remove
)

var kindNames = [...]string{
	Unchanged: "unchanged",
	Update:    "update",
	Replace:   "replace",
	Add:       "add",
	Remove:    "remove",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// inherit carries the classification of the closest changed ancestor.
type inherit uint8

const (
	inheritNone inherit = iota
	inheritUpdate
	inheritReplace
)

// Change describes what happens to one viewport.
type Change struct {
	Viewport string
	From     *route.Node
	To       *route.Node
	Kind     Kind
	// Children are nil until the child level is diffed.
	Children ChangeSet

	inherit inherit
	diffed  bool
}

// ChangeSet lists the changes of one tree level in declaration order.
type ChangeSet []*Change

// Diff compares the children of two roots, descending into every level whose
// candidate children are resolved.
func Diff(from, to *route.Node) ChangeSet {
	var fromChildren []*route.Node
	if from != nil {
		fromChildren = from.Children
	}
	set := DiffLevel(to.Component, fromChildren, to.Children)
	set.diffResolved()
	return set
}

// DiffLevel compares sibling nodes owned by the component owner.
func DiffLevel(owner *component.Definition, from, to []*route.Node) ChangeSet {
	return diffLevel(owner, from, to, inheritNone)
}

func diffLevel(owner *component.Definition, from, to []*route.Node, in inherit) ChangeSet {
	order := slices.Clone(owner.DeclaredViewports())
	for _, list := range [][]*route.Node{to, from} {
		for _, n := range list {
			if !slices.Contains(order, n.Viewport) {
				order = append(order, n.Viewport)
			}
		}
	}

	var set ChangeSet
	for _, vp := range order {
		f, t := byViewport(from, vp), byViewport(to, vp)
		if f == nil && t == nil {
			continue
		}
		set = append(set, classify(vp, f, t, in))
	}
	return set
}

func byViewport(nodes []*route.Node, vp string) *route.Node {
	for _, n := range nodes {
		if n.Viewport == vp {
			return n
		}
	}
	return nil
}

func classify(vp string, from, to *route.Node, in inherit) *Change {
	c := &Change{Viewport: vp, From: from, To: to}
	switch {
	case from == nil:
		c.Kind = Add
	case to == nil:
		c.Kind = Remove
	case in == inheritReplace || from.Component != to.Component || from.Config != to.Config:
		c.Kind = Replace
	case in == inheritUpdate || from.Path() != to.Path() || !from.Params.Equal(to.Params):
		c.Kind = Update
	default:
		c.Kind = Unchanged
	}

	switch c.Kind {
	case Unchanged:
		c.inherit = inheritNone
	case Update:
		c.inherit = inheritUpdate
	default:
		c.inherit = inheritReplace
	}
	return c
}

// Ready reports whether the child level can be diffed.
func (c *Change) Ready() bool {
	return c.To == nil || c.To.Resolved()
}

// DiffChildren compares the child level of c once its candidate node is
// resolved. It is a no-op when the children were diffed already.
func (c *Change) DiffChildren() ChangeSet {
	if c.diffed || !c.Ready() {
		return c.Children
	}

	var from, to []*route.Node
	var owner *component.Definition
	if c.From != nil {
		from = c.From.Children
		owner = c.From.Component
	}
	if c.To != nil {
		to = c.To.Children
		owner = c.To.Component
	}
	c.Children = diffLevel(owner, from, to, c.inherit)
	c.diffed = true
	return c.Children
}

func (s ChangeSet) diffResolved() {
	for _, c := range s {
		if c.Ready() {
			c.DiffChildren().diffResolved()
		}
	}
}

// Changed reports whether anything in the set differs from the previous tree.
// Levels that are not diffed yet count as changed.
func (s ChangeSet) Changed() bool {
	for _, c := range s {
		if c.Kind != Unchanged || !c.diffed || c.Children.Changed() {
			return true
		}
	}
	return false
}

// Walk visits every change depth first, parents before children.
func (s ChangeSet) Walk(fn func(*Change)) {
	for _, c := range s {
		fn(c)
		c.Children.Walk(fn)
	}
}
