package route

import (
	"fmt"
	"strings"
)

type segment struct {
	typ   nodeTyp
	label string
}

// parsePattern splits a path pattern into typed segments.
// The empty pattern has no segments and matches without consuming input.
func parsePattern(pattern string) ([]segment, error) {
	pattern = strings.Trim(pattern, "/")
	if pattern == "" {
		return nil, nil
	}

	parts := strings.Split(pattern, "/")
	segs := make([]segment, 0, len(parts))
	seen := make(map[string]struct{})

	for i, p := range parts {
		switch {
		case p == "":
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPattern, pattern)
		case p[0] == ':':
			name := p[1:]
			if name == "" {
				return nil, fmt.Errorf("%w: unnamed parameter in %q", ErrInvalidPattern, pattern)
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateParam, name, pattern)
			}
			seen[name] = struct{}{}
			segs = append(segs, segment{typ: ntParam, label: name})
		case p[0] == '*':
			if i != len(parts)-1 {
				return nil, fmt.Errorf("%w: %q", ErrWildcardPosition, pattern)
			}
			name := p[1:]
			if name == "" {
				name = "*"
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateParam, name, pattern)
			}
			segs = append(segs, segment{typ: ntCatchAll, label: name})
		default:
			segs = append(segs, segment{typ: ntStatic, label: p})
		}
	}
	return segs, nil
}
