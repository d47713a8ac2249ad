package instruction

import (
	"fmt"
	"net/url"
	"strings"
)

// Parse turns a navigation URL into an instruction tree.
// An empty path yields a tree without children.
func Parse(raw string) (*Tree, error) {
	t := &Tree{}

	if i := strings.IndexByte(raw, '#'); i >= 0 {
		t.Fragment = raw[i+1:]
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		q, err := url.ParseQuery(raw[i+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: query: %w", ErrInvalidInstruction, err)
		}
		if len(q) > 0 {
			t.Query = q
		}
		raw = raw[:i]
	}

	raw = strings.TrimPrefix(raw, "/")
	if raw == "" {
		return t, nil
	}

	p := &parser{src: raw}
	children, err := p.siblings()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf(ErrUnbalancedGroup)
	}
	t.Children = children
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(raw string) *Tree {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) errorf(kind error) error {
	if p.eof() {
		return fmt.Errorf("%w: %w at end of %q", ErrInvalidInstruction, kind, p.src)
	}
	return fmt.Errorf("%w: %w: unexpected %q at %d in %q", ErrInvalidInstruction, kind, p.src[p.pos], p.pos, p.src)
}

func (p *parser) siblings() ([]*ViewportInstruction, error) {
	var out []*ViewportInstruction
	for {
		items, err := p.scoped()
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if p.peek() != '+' {
			return out, nil
		}
		p.pos++
	}
}

func (p *parser) scoped() ([]*ViewportInstruction, error) {
	if p.peek() == '(' {
		p.pos++
		list, err := p.siblings()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, p.errorf(ErrUnbalancedGroup)
		}
		p.pos++
		return list, nil
	}

	vi, err := p.segment()
	if err != nil {
		return nil, err
	}
	if p.peek() == '/' {
		p.pos++
		// trailing slash
		if p.eof() || p.peek() == '+' || p.peek() == ')' {
			return []*ViewportInstruction{vi}, nil
		}
		children, err := p.scoped()
		if err != nil {
			return nil, err
		}
		vi.Children = children
	}
	return []*ViewportInstruction{vi}, nil
}

func (p *parser) segment() (*ViewportInstruction, error) {
	name, err := p.token()
	if err != nil {
		return nil, err
	}
	vi := &ViewportInstruction{Component: name}
	if p.peek() == '@' {
		p.pos++
		if vi.Viewport, err = p.token(); err != nil {
			return nil, err
		}
	}
	return vi, nil
}

func (p *parser) token() (string, error) {
	start := p.pos
	for !p.eof() && !strings.ContainsRune("/+()@", rune(p.src[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf(ErrEmptySegment)
	}
	s, err := url.PathUnescape(p.src[start:p.pos])
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInstruction, err)
	}
	return s, nil
}
