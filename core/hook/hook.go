package hook

import (
	"context"
	"slices"
	"strings"

	"github.com/dmitrymomot/waypoint/core/instruction"
	"github.com/dmitrymomot/waypoint/core/navigation"
)

// Type identifies the pipeline stage a hook belongs to.
type Type uint8

const (
	TypeTransformFromURL Type = iota
	TypeTransformToURL
	TypeBeforeNavigation
)

var typeNames = [...]string{
	TypeTransformFromURL: "transformFromUrl",
	TypeTransformToURL:   "transformToUrl",
	TypeBeforeNavigation: "beforeNavigation",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// TransformFunc rewrites a location. It may return a URL or a tree regardless
// of what it received.
type TransformFunc func(ctx context.Context, loc instruction.Location, nav *navigation.Navigation) (instruction.Location, error)

// BeforeNavigationFunc decides whether a navigation to tree may go ahead.
type BeforeNavigationFunc func(ctx context.Context, tree *instruction.Tree, nav *navigation.Navigation) (Verdict, error)

type verdictKind uint8

const (
	verdictContinue verdictKind = iota
	verdictCancel
	verdictReplace
)

// Verdict is the outcome of a BeforeNavigation hook. The zero value continues.
type Verdict struct {
	kind verdictKind
	tree *instruction.Tree
}

// Continue lets the navigation proceed unchanged.
func Continue() Verdict { return Verdict{} }

// Cancel stops the navigation and keeps the active tree.
func Cancel() Verdict { return Verdict{kind: verdictCancel} }

// Replace swaps the navigation target for tree.
func Replace(tree *instruction.Tree) Verdict {
	if tree == nil {
		return Cancel()
	}
	return Verdict{kind: verdictReplace, tree: tree}
}

// Cancelled reports whether the verdict stops the navigation.
func (v Verdict) Cancelled() bool { return v.kind == verdictCancel }

// Replacement returns the replacement tree, or nil when the target is kept.
func (v Verdict) Replacement() *instruction.Tree { return v.tree }

// Hook is a typed hook function ready for registration.
type Hook struct {
	typ       Type
	transform TransformFunc
	before    BeforeNavigationFunc
}

// TransformFromURL wraps fn as a hook run before resolution.
func TransformFromURL(fn TransformFunc) Hook {
	return Hook{typ: TypeTransformFromURL, transform: fn}
}

// TransformToURL wraps fn as a hook run before the URL is written.
func TransformToURL(fn TransformFunc) Hook {
	return Hook{typ: TypeTransformToURL, transform: fn}
}

// BeforeNavigation wraps fn as a hook run after resolution and before guards.
func BeforeNavigation(fn BeforeNavigationFunc) Hook {
	return Hook{typ: TypeBeforeNavigation, before: fn}
}

// Type returns the stage the hook runs in.
func (h Hook) Type() Type { return h.typ }

func (h Hook) valid() bool {
	if h.typ == TypeBeforeNavigation {
		return h.before != nil
	}
	return h.transform != nil
}

// Option scopes a registered hook.
type Option func(*registration)

// Include runs the hook only for navigations to one of paths.
func Include(paths ...string) Option {
	return func(r *registration) {
		r.include = append(r.include, paths...)
	}
}

// Exclude skips the hook for navigations to any of paths.
func Exclude(paths ...string) Option {
	return func(r *registration) {
		r.exclude = append(r.exclude, paths...)
	}
}

type registration struct {
	Hook
	include []string
	exclude []string
}

// applies reports whether at least one of paths passes the include and
// exclude filters. A path matches an entry equal to it or to one of its
// leading segments.
func (r *registration) applies(paths []string) bool {
	if len(r.include) == 0 && len(r.exclude) == 0 {
		return true
	}
	return slices.ContainsFunc(paths, func(p string) bool {
		if len(r.include) > 0 && !matchAny(r.include, p) {
			return false
		}
		return !matchAny(r.exclude, p)
	})
}

func matchAny(entries []string, path string) bool {
	path = strings.Trim(path, "/")
	for _, e := range entries {
		e = strings.Trim(e, "/")
		if path == e || strings.HasPrefix(path, e+"/") {
			return true
		}
	}
	return false
}
