package router

import (
	"net/url"
	"slices"
	"strings"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/instruction"
	"github.com/dmitrymomot/waypoint/core/navigation"
	"github.com/dmitrymomot/waypoint/core/route"
)

// CurrentRoute describes the committed navigation.
type CurrentRoute struct {
	// Path is the instruction path without query or fragment.
	Path string `json:"path"`
	// URL is Path with query and fragment, as written to history before
	// transformToUrl hooks run.
	URL        string                  `json:"url"`
	Title      string                  `json:"title,omitempty"`
	Query      url.Values              `json:"query,omitempty"`
	Fragment   string                  `json:"fragment,omitempty"`
	Parameters []*ParameterInformation `json:"parameters"`
	Navigation *navigation.Navigation  `json:"navigation"`
}

// ParameterInformation mirrors one node of the committed route tree.
type ParameterInformation struct {
	Config    *route.Config           `json:"-"`
	RouteID   string                  `json:"route_id"`
	Component string                  `json:"component"`
	Viewport  string                  `json:"viewport"`
	Path      string                  `json:"path"`
	Params    component.Params        `json:"params,omitempty"`
	Children  []*ParameterInformation `json:"children,omitempty"`
}

// project derives the CurrentRoute of a committed tree together with the
// instructions that reproduce it.
func project(root *route.Node, tree *instruction.Tree, nav *navigation.Navigation, sep string) (*CurrentRoute, *instruction.Tree) {
	outbound := &instruction.Tree{
		Children: toInstructions(root.Component, root.Children),
		Query:    tree.Query,
		Fragment: tree.Fragment,
	}

	var titles []string
	for _, n := range root.Children {
		n.Walk(func(n *route.Node) {
			if t := n.Title(); t != "" {
				titles = append(titles, t)
			}
		})
	}
	slices.Reverse(titles)

	return &CurrentRoute{
		Path:       outbound.Path(),
		URL:        outbound.String(),
		Title:      strings.Join(titles, sep),
		Query:      tree.Query,
		Fragment:   tree.Fragment,
		Parameters: parameters(root.Children),
		Navigation: nav,
	}, outbound.Clone()
}

func parameters(nodes []*route.Node) []*ParameterInformation {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*ParameterInformation, 0, len(nodes))
	for _, n := range nodes {
		p := &ParameterInformation{
			Config:    n.Config,
			Component: n.Component.Name,
			Viewport:  n.Viewport,
			Path:      n.Path(),
			Params:    n.Params,
			Children:  parameters(n.Children),
		}
		if n.Config != nil {
			p.RouteID = n.Config.ID
		}
		out = append(out, p)
	}
	return out
}

// toInstructions rebuilds the instructions of a level. The segments of a
// node form a chain and its children nest under the last segment.
func toInstructions(owner *component.Definition, nodes []*route.Node) []*instruction.ViewportInstruction {
	qualified := qualify(owner, nodes)

	var out []*instruction.ViewportInstruction
	for _, n := range nodes {
		children := toInstructions(n.Component, n.Children)
		if len(n.Segments) == 0 {
			out = append(out, children...)
			continue
		}

		head := &instruction.ViewportInstruction{Component: n.Segments[0]}
		if qualified[n] {
			head.Viewport = n.Viewport
		}
		tail := head
		for _, s := range n.Segments[1:] {
			next := &instruction.ViewportInstruction{Component: s}
			tail.Children = []*instruction.ViewportInstruction{next}
			tail = next
		}
		tail.Children = children
		out = append(out, head)
	}
	return out
}

// qualify reports the nodes whose viewport has to be spelled out in the URL,
// because automatic assignment would put them elsewhere.
func qualify(owner *component.Definition, nodes []*route.Node) map[*route.Node]bool {
	declared := owner.DeclaredViewports()
	qualified := make(map[*route.Node]bool)
	pinned := func(n *route.Node) bool {
		return qualified[n] || (n.Config != nil && n.Config.Viewport == n.Viewport && n.Viewport != "")
	}

	for range len(nodes) + 1 {
		used := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			if pinned(n) {
				used[n.Viewport] = true
			}
		}

		moved := false
		for _, n := range nodes {
			if pinned(n) {
				continue
			}
			var expected string
			for _, vp := range declared {
				if !used[vp] {
					expected = vp
					break
				}
			}
			used[expected] = true
			if expected != n.Viewport {
				qualified[n] = true
				moved = true
				break
			}
		}
		if !moved {
			break
		}
	}
	return qualified
}
