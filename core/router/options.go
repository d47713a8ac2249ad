package router

import (
	"log/slog"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/event"
	"github.com/dmitrymomot/waypoint/core/history"
	"github.com/dmitrymomot/waypoint/core/navigation"
	"github.com/dmitrymomot/waypoint/core/viewport"
)

// Option configures a Router during creation.
type Option func(*Router)

// WithSwapStrategy sets the order of removal and addition hooks.
func WithSwapStrategy(s viewport.SwapStrategy) Option {
	return func(r *Router) {
		r.swap = s
	}
}

// WithDeferPolicy sets how far child viewports may run ahead of their parent.
func WithDeferPolicy(d viewport.DeferPolicy) Option {
	return func(r *Router) {
		r.deferUntil = d
	}
}

// WithLogger sets a custom logger for the router.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHistory connects the router to a history backend.
func WithHistory(b history.Backend) Option {
	return func(r *Router) {
		r.backend = b
	}
}

// WithBasePath prefixes every URL written to the history backend.
func WithBasePath(base string) Option {
	return func(r *Router) {
		r.basePath = base
	}
}

// WithHashRouting keeps router URLs in the fragment of the backend URL.
func WithHashRouting(enabled bool) Option {
	return func(r *Router) {
		r.useHash = enabled
	}
}

// WithRuntime sets the component runtime.
func WithRuntime(rt component.Runtime) Option {
	return func(r *Router) {
		if rt != nil {
			r.runtime = rt
		}
	}
}

// WithPublisher publishes navigation events through p.
func WithPublisher(p *event.Publisher) Option {
	return func(r *Router) {
		r.publisher = p
	}
}

// WithTitleSeparator sets the string joining route titles.
func WithTitleSeparator(sep string) Option {
	return func(r *Router) {
		r.titleSeparator = sep
	}
}

// LoadOption adjusts a single navigation.
type LoadOption func(*navigation.Options)

// WithTransitionPlan selects whether the instruction replaces the active tree
// or is appended to it.
func WithTransitionPlan(p navigation.TransitionPlan) LoadOption {
	return func(o *navigation.Options) {
		o.TransitionPlan = p
	}
}

// WithHistoryStrategy selects how the committed URL is written.
func WithHistoryStrategy(s navigation.HistoryStrategy) LoadOption {
	return func(o *navigation.Options) {
		o.HistoryStrategy = s
	}
}

// WithTrigger records what caused the navigation.
func WithTrigger(t navigation.Trigger) LoadOption {
	return func(o *navigation.Options) {
		o.Trigger = t
	}
}
