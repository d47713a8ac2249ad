package instruction

import (
	"net/url"
	"strings"
)

// Location is a navigation target: either a raw URL or a parsed Tree.
// Transform hooks may convert between the two representations freely.
type Location interface {
	String() string
	location()
}

// URL is an unparsed navigation target.
type URL string

func (u URL) String() string { return string(u) }
func (URL) location()        {}

// ViewportInstruction asks for Component to be shown in Viewport of the
// enclosing component, with Children nested inside it.
type ViewportInstruction struct {
	Component string
	// Viewport is empty when the router is free to pick the viewport.
	Viewport string
	Children []*ViewportInstruction
}

// Chain returns vi followed by every sole descendant that does not name its
// own viewport. The resolver matches route patterns against this chain.
func (vi *ViewportInstruction) Chain() []*ViewportInstruction {
	chain := []*ViewportInstruction{vi}
	for cur := vi; len(cur.Children) == 1 && cur.Children[0].Viewport == ""; {
		cur = cur.Children[0]
		chain = append(chain, cur)
	}
	return chain
}

// Path joins the components of Chain with "/".
func (vi *ViewportInstruction) Path() string {
	chain := vi.Chain()
	parts := make([]string, len(chain))
	for i, c := range chain {
		parts[i] = c.Component
	}
	return strings.Join(parts, "/")
}

// Clone returns a deep copy of vi.
func (vi *ViewportInstruction) Clone() *ViewportInstruction {
	if vi == nil {
		return nil
	}
	c := &ViewportInstruction{Component: vi.Component, Viewport: vi.Viewport}
	c.Children = cloneList(vi.Children)
	return c
}

func cloneList(list []*ViewportInstruction) []*ViewportInstruction {
	if list == nil {
		return nil
	}
	out := make([]*ViewportInstruction, len(list))
	for i, vi := range list {
		out[i] = vi.Clone()
	}
	return out
}

// Tree is a parsed navigation target.
type Tree struct {
	Children []*ViewportInstruction
	Query    url.Values
	Fragment string
}

func (*Tree) location() {}

// Path renders the instruction part of the tree without query or fragment.
func (t *Tree) Path() string {
	var b strings.Builder
	writeSiblings(&b, t.Children)
	return b.String()
}

// String renders the tree as a URL accepted by Parse.
func (t *Tree) String() string {
	var b strings.Builder
	writeSiblings(&b, t.Children)
	if len(t.Query) > 0 {
		b.WriteByte('?')
		b.WriteString(t.Query.Encode())
	}
	if t.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(t.Fragment)
	}
	return b.String()
}

// Paths returns the Path of every top-level instruction.
func (t *Tree) Paths() []string {
	paths := make([]string, len(t.Children))
	for i, vi := range t.Children {
		paths[i] = vi.Path()
	}
	return paths
}

// Clone returns a deep copy of t.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	c := &Tree{Children: cloneList(t.Children), Fragment: t.Fragment}
	if t.Query != nil {
		c.Query = make(url.Values, len(t.Query))
		for k, v := range t.Query {
			c.Query[k] = append([]string(nil), v...)
		}
	}
	return c
}

// FromLocation parses loc when it is a URL and returns it unchanged when it
// is already a Tree. A nil location yields an empty tree.
func FromLocation(loc Location) (*Tree, error) {
	switch v := loc.(type) {
	case nil:
		return &Tree{}, nil
	case *Tree:
		if v == nil {
			return &Tree{}, nil
		}
		return v, nil
	default:
		return Parse(loc.String())
	}
}

func writeSiblings(b *strings.Builder, list []*ViewportInstruction) {
	for i, vi := range list {
		if i > 0 {
			b.WriteByte('+')
		}
		writeScoped(b, vi)
	}
}

func writeScoped(b *strings.Builder, vi *ViewportInstruction) {
	b.WriteString(escape(vi.Component))
	if vi.Viewport != "" {
		b.WriteByte('@')
		b.WriteString(escape(vi.Viewport))
	}
	switch len(vi.Children) {
	case 0:
	case 1:
		b.WriteByte('/')
		writeScoped(b, vi.Children[0])
	default:
		b.WriteString("/(")
		writeSiblings(b, vi.Children)
		b.WriteByte(')')
	}
}

var reserved = strings.NewReplacer(
	"+", "%2B",
	"@", "%40",
	"(", "%28",
	")", "%29",
)

func escape(s string) string {
	return reserved.Replace(url.PathEscape(s))
}
