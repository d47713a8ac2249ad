package router

import (
	"errors"
	"fmt"
)

var (
	ErrNilRoot             = errors.New("root component is nil")
	ErrTransitionCancelled = errors.New("transition superseded by a newer navigation")
	ErrRouterStopped       = errors.New("router stopped")
	ErrAlreadyStarted      = errors.New("router already started")
	ErrNoHistory           = errors.New("router has no history backend")
	ErrDeferredLoad        = errors.New("load deferred until the active transition settles")
	ErrGuardRejected       = errors.New("navigation rejected")
)

// GuardRejectedError reports the hook that refused a navigation. Load never
// returns it; a rejected navigation yields false and a nil error.
type GuardRejectedError struct {
	Hook      string
	Viewport  string
	Component string
}

func (e *GuardRejectedError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("navigation rejected by %s", e.Hook)
	}
	return fmt.Sprintf("navigation rejected by %s of %q in viewport %q", e.Hook, e.Component, e.Viewport)
}

func (e *GuardRejectedError) Unwrap() error { return ErrGuardRejected }

// LifecycleError reports a component hook that failed or panicked.
type LifecycleError struct {
	Hook      string
	Component string
	Err       error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s of %q: %v", e.Hook, e.Component, e.Err)
}

func (e *LifecycleError) Unwrap() error { return e.Err }
