package route

import (
	"errors"
	"fmt"
)

var (
	ErrRouteNotFound          = errors.New("route not found")
	ErrEagerResolution        = errors.New("navigation strategy cannot be resolved eagerly")
	ErrAmbiguousParameter     = errors.New("navigation strategy failed to resolve a component")
	ErrAmbiguousConfiguration = errors.New("ambiguous route configuration")
	ErrRedirectLoop           = errors.New("too many redirects")

	// Pattern errors
	ErrInvalidPattern   = errors.New("invalid route path pattern")
	ErrWildcardPosition = errors.New("wildcard position must be last")
	ErrDuplicateParam   = errors.New("duplicate parameter name")
)

// RouteNotFoundError reports an instruction path no route matches.
type RouteNotFoundError struct {
	Path string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("route not found: %q", e.Path)
}

func (e *RouteNotFoundError) Unwrap() error { return ErrRouteNotFound }

// EagerResolutionError reports a navigation strategy met while walking the
// route configuration ahead of navigation.
type EagerResolutionError struct {
	RouteID string
}

func (e *EagerResolutionError) Error() string {
	return fmt.Sprintf("route %q uses a navigation strategy and cannot be resolved eagerly", e.RouteID)
}

func (e *EagerResolutionError) Unwrap() error { return ErrEagerResolution }

// AmbiguousParameterError reports a navigation strategy that failed.
type AmbiguousParameterError struct {
	RouteID string
	Err     error
}

func (e *AmbiguousParameterError) Error() string {
	return fmt.Sprintf("navigation strategy of route %q: %v", e.RouteID, e.Err)
}

func (e *AmbiguousParameterError) Unwrap() []error { return []error{ErrAmbiguousParameter, e.Err} }
