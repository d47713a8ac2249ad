package route

import (
	"net/url"
	"strings"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/instruction"
)

// Node is a resolved unit of a route tree. Nodes are built fresh for every
// transition attempt and are not modified after the attempt commits.
type Node struct {
	// Config is nil for the root node.
	Config    *Config
	Component *component.Definition
	// Segments are the instruction segments consumed by the matched pattern.
	Segments []string
	Pattern  string
	Params   component.Params
	Viewport string
	Query    url.Values
	Children []*Node

	// Instance is set by the transition coordinator once the component has
	// been created or carried over from the previous tree.
	Instance component.Instance

	// pending holds instructions left for the children while resolution is
	// deferred.
	pending  []*instruction.ViewportInstruction
	resolved bool
}

// NewRoot creates the root node of a tree for the application component.
func NewRoot(def *component.Definition, query url.Values) *Node {
	return &Node{Component: def, Params: component.Params{}, Query: query, resolved: true}
}

// Path joins Segments with "/".
func (n *Node) Path() string {
	return strings.Join(n.Segments, "/")
}

// Title returns the configured route title.
func (n *Node) Title() string {
	if n.Config == nil {
		return ""
	}
	return n.Config.Title
}

// Resolved reports whether Children are final.
func (n *Node) Resolved() bool {
	return n.resolved
}

// Pending returns the instructions awaiting child resolution.
func (n *Node) Pending() []*instruction.ViewportInstruction {
	return n.pending
}

// SetChildren fixes the children of n.
func (n *Node) SetChildren(children []*Node) {
	n.Children = children
	n.pending = nil
	n.resolved = true
}

// Walk visits n and its descendants depth first, parents before children.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Tree is a resolved route tree.
type Tree struct {
	Root     *Node
	Query    url.Values
	Fragment string
}
