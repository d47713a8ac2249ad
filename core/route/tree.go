package route

// Segment tree derived from the radix routing tree of the HTTP mux: child
// nodes are grouped by type so that static segments are always tried before
// parameters, and parameters before catch-alls. Unlike the HTTP tree, edges
// hold whole path segments and a lookup yields every candidate in priority
// order, because a route may consume only a prefix of the path and leave the
// remainder to its children.

import (
	"strings"

	"github.com/dmitrymomot/waypoint/core/component"
)

type nodeTyp uint8

const (
	ntStatic   nodeTyp = iota // /home
	ntParam                   // /:id
	ntCatchAll                // /*rest
)

type node struct {
	// child nodes grouped by type, each group in insertion order
	children [ntCatchAll + 1][]*node

	// routes ending on this node, in registration order
	endpoints []*endpoint

	// static text or parameter name
	label string

	typ nodeTyp
}

type endpoint struct {
	config  *Config
	pattern string
}

// candidate is a route able to consume the first consumed segments of a path.
type candidate struct {
	endpoint *endpoint
	params   component.Params
	consumed int
}

func newTree(configs []*Config) (*node, error) {
	root := &node{}
	for _, c := range configs {
		for _, p := range c.Paths() {
			segs, err := parsePattern(p)
			if err != nil {
				return nil, err
			}
			root.insertRoute(segs, &endpoint{config: c, pattern: p})
		}
	}
	return root, nil
}

func (n *node) insertRoute(segs []segment, ep *endpoint) {
	for _, s := range segs {
		child := n.getEdge(s.typ, s.label)
		if child == nil {
			child = &node{typ: s.typ, label: s.label}
			n.children[s.typ] = append(n.children[s.typ], child)
		}
		n = child
	}
	n.endpoints = append(n.endpoints, ep)
}

func (n *node) getEdge(typ nodeTyp, label string) *node {
	for _, c := range n.children[typ] {
		if c.label == label {
			return c
		}
	}
	return nil
}

// findRoutes returns every route matching a prefix of path, most specific
// first: at each segment static beats parameter beats catch-all, longer
// matches come before their own prefixes, and equal matches keep
// registration order.
func (n *node) findRoutes(path []string) []candidate {
	var out []candidate
	n.collect(path, 0, nil, nil, &out)
	return out
}

func (n *node) collect(path []string, i int, keys, vals []string, out *[]candidate) {
	if i == len(path) {
		n.emit(i, keys, vals, out)
		for _, c := range n.children[ntCatchAll] {
			c.emit(i, with(keys, c.label), with(vals, ""), out)
		}
		return
	}

	seg := path[i]
	for _, c := range n.children[ntStatic] {
		if c.label == seg {
			c.collect(path, i+1, keys, vals, out)
		}
	}
	for _, c := range n.children[ntParam] {
		c.collect(path, i+1, with(keys, c.label), with(vals, seg), out)
	}
	for _, c := range n.children[ntCatchAll] {
		c.emit(len(path), with(keys, c.label), with(vals, strings.Join(path[i:], "/")), out)
	}
	n.emit(i, keys, vals, out)
}

func (n *node) emit(consumed int, keys, vals []string, out *[]candidate) {
	for _, ep := range n.endpoints {
		params := make(component.Params, len(keys))
		for k, key := range keys {
			params[key] = vals[k]
		}
		*out = append(*out, candidate{endpoint: ep, params: params, consumed: consumed})
	}
}

// with appends v to a copy of s so sibling branches never share storage.
func with(s []string, v string) []string {
	out := make([]string, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}
