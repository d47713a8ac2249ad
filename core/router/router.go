package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/event"
	"github.com/dmitrymomot/waypoint/core/history"
	"github.com/dmitrymomot/waypoint/core/hook"
	"github.com/dmitrymomot/waypoint/core/instruction"
	"github.com/dmitrymomot/waypoint/core/logger"
	"github.com/dmitrymomot/waypoint/core/navigation"
	"github.com/dmitrymomot/waypoint/core/route"
	"github.com/dmitrymomot/waypoint/core/viewport"
)

// state is a committed navigation. It is replaced as a whole on commit.
type state struct {
	root    *route.Node
	nav     *navigation.Navigation
	current *CurrentRoute
}

// Router coordinates transitions between route trees.
type Router struct {
	root     *component.Definition
	resolver *route.Resolver
	hooks    *hook.Registry
	runtime  component.Runtime
	ordering viewport.Ordering
	logger   *slog.Logger

	// options
	swap           viewport.SwapStrategy
	deferUntil     viewport.DeferPolicy
	backend        history.Backend
	basePath       string
	useHash        bool
	publisher      *event.Publisher
	titleSeparator string

	history *history.Synchronizer
	ids     atomic.Int64
	state   atomic.Pointer[state]

	mu          sync.Mutex
	active      *Transition
	baseCtx     context.Context
	stopBase    context.CancelFunc
	unsubscribe func()
	started     bool
	stopped     bool
}

// New creates a router for the application component root and its
// top-level routes.
func New(root *component.Definition, routes []*route.Config, opts ...Option) (*Router, error) {
	if root == nil {
		return nil, ErrNilRoot
	}

	r := &Router{
		root:           root,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		titleSeparator: " | ",
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.runtime == nil {
		r.runtime = component.NewRuntime(component.WithRuntimeLogger(r.logger))
	}
	r.ordering = viewport.Lookup(r.swap, r.deferUntil)
	r.hooks = hook.NewRegistry(hook.WithLogger(r.logger))

	resolver, err := route.NewResolver(routes, route.WithResolverLogger(r.logger))
	if err != nil {
		return nil, err
	}
	r.resolver = resolver

	if r.backend != nil {
		r.history, err = history.NewSynchronizer(r.backend,
			history.WithBasePath(r.basePath),
			history.WithHash(r.useHash),
			history.WithLogger(r.logger))
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// AddHook registers a navigation hook.
func (r *Router) AddHook(h hook.Hook, opts ...hook.Option) error {
	return r.hooks.Add(h, opts...)
}

// RemoveAllHooks drops every registered navigation hook.
func (r *Router) RemoveAllHooks() {
	r.hooks.RemoveAll()
}

// Current returns the projection of the last committed navigation, or nil
// before the first one.
func (r *Router) Current() *CurrentRoute {
	if s := r.state.Load(); s != nil {
		return s.current
	}
	return nil
}

// Active returns the transition in progress, or nil.
func (r *Router) Active() *Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Routes lists the static route table. Routes resolved by a navigation
// strategy make it fail with route.EagerResolutionError.
func (r *Router) Routes() ([]route.Entry, error) {
	return route.Table(r.resolver.Routes())
}

// Resolver returns the route resolver, whose strategy cache can be
// invalidated per route.
func (r *Router) Resolver() *route.Resolver {
	return r.resolver
}

// LoadURL is a shorthand for Load with a URL.
func (r *Router) LoadURL(ctx context.Context, url string, opts ...LoadOption) (bool, error) {
	return r.Load(ctx, instruction.URL(url), opts...)
}

// Load navigates to loc and blocks until the transition settles.
//
// It reports true once the new tree is committed. A navigation rejected by a
// hook or guard, or superseded by a newer Load, yields false and a nil error.
// Any other failure leaves the previous tree active and is returned. A
// history write error is returned together with true, since the tree has
// been committed.
//
// Calling Load with the context of a hook of the active transition does not
// wait: the navigation starts once the active transition has committed and
// ErrDeferredLoad is returned.
func (r *Router) Load(ctx context.Context, loc instruction.Location, opts ...LoadOption) (bool, error) {
	var o navigation.Options
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return false, ErrRouterStopped
	}
	if nav := navigation.FromContext(ctx); nav != nil && r.active != nil && r.active.nav == nav {
		r.active.followUp = &request{ctx: context.WithoutCancel(ctx), loc: loc, opts: opts}
		r.mu.Unlock()
		r.logger.DebugContext(ctx, "load deferred", logger.TransitionID(nav.ID))
		return false, ErrDeferredLoad
	}

	prev := r.active
	var prevID int64
	if s := r.state.Load(); s != nil {
		prevID = s.nav.ID
	} else if o.HistoryStrategy == navigation.HistoryPush {
		o.HistoryStrategy = navigation.HistoryReplace
	}
	nav := navigation.New(r.ids.Inc(), locationString(loc), o, prevID)
	t := newTransition(ctx, nav)
	r.active = t
	r.mu.Unlock()

	if prev != nil {
		if prev.abort(ErrTransitionCancelled) {
			r.logger.DebugContext(ctx, "transition superseded",
				logger.TransitionID(prev.ID()),
				slog.Int64("by", nav.ID))
		}
		<-prev.done
	}

	ok, err := r.run(t, loc)

	r.mu.Lock()
	if r.active == t {
		r.active = nil
	}
	followUp := t.followUp
	r.mu.Unlock()
	close(t.done)

	if followUp != nil && t.Status() == StatusCompleted {
		go func() {
			if _, err := r.Load(followUp.ctx, followUp.loc, followUp.opts...); err != nil {
				r.logger.ErrorContext(followUp.ctx, "deferred navigation failed", logger.Error(err))
			}
		}()
	}
	return ok, err
}

// run drives t through its states and settles it.
func (r *Router) run(t *Transition, loc instruction.Location) (bool, error) {
	nav := t.nav
	ctx := t.ctx
	log := r.logger.With(logger.TransitionID(nav.ID), logger.Trigger(nav.Trigger.String()))
	start := time.Now()

	r.publish(ctx, event.NavigationStart{
		NavigationID:  nav.ID,
		CorrelationID: nav.CorrelationID,
		Trigger:       nav.Trigger.String(),
		Instruction:   nav.Instruction,
	})
	log.DebugContext(ctx, "transition started", logger.URL(nav.Instruction))

	x := &executor{r: r, t: t, ordering: r.ordering}
	if err := x.execute(loc); err != nil {
		x.discard()
		return r.settleFailed(t, log, err)
	}
	t.finish(StatusCompleted)

	// The tree is committed from here on; later errors are reported with true.
	ctx = context.WithoutCancel(ctx)
	cur := r.Current()
	histErr := x.writeHistory(ctx, cur)
	if nav.Trigger.FromBrowser() {
		r.publish(ctx, event.LocationChanged{Trigger: nav.Trigger.String(), URL: cur.URL})
	}
	r.publish(ctx, event.NavigationEnd{
		NavigationID:  nav.ID,
		CorrelationID: nav.CorrelationID,
		Trigger:       nav.Trigger.String(),
		URL:           cur.URL,
		Title:         cur.Title,
		Duration:      time.Since(start),
	})
	log.DebugContext(ctx, "transition completed", logger.URL(cur.URL), logger.Elapsed(start))
	return true, histErr
}

func (r *Router) settleFailed(t *Transition, log *slog.Logger, err error) (bool, error) {
	nav := t.nav
	ctx := context.WithoutCancel(t.ctx)

	switch {
	case superseded(err):
		t.finish(StatusCancelled)
		log.DebugContext(ctx, "transition cancelled", logger.Error(err))
		r.publishCancel(ctx, nav, err.Error())
		return false, nil

	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		t.finish(StatusCancelled)
		log.DebugContext(ctx, "transition cancelled by caller", logger.Error(err))
		r.publishCancel(ctx, nav, err.Error())
		return false, err
	}

	// Parallel siblings may report a rejection next to a hook failure; the
	// failure wins.
	var rejected *GuardRejectedError
	if failed := failures(err); len(failed) > 0 {
		err = errors.Join(failed...)
	} else if errors.As(err, &rejected) {
		t.finish(StatusCancelled)
		log.InfoContext(ctx, "navigation rejected", logger.Hook(rejected.Hook), logger.Viewport(rejected.Viewport))
		r.publishCancel(ctx, nav, rejected.Error())
		return false, nil
	}

	t.finish(StatusFailed)
	log.ErrorContext(ctx, "transition failed", logger.Error(err))
	r.publish(ctx, event.NavigationError{
		NavigationID:  nav.ID,
		CorrelationID: nav.CorrelationID,
		Trigger:       nav.Trigger.String(),
		Error:         err.Error(),
	})
	return false, err
}

// failures returns the parts of err that are neither guard rejections nor
// siblings stopped by one.
func failures(err error) []error {
	var rejected *GuardRejectedError
	if !errors.As(err, &rejected) && !errors.Is(err, viewport.ErrSiblingFailed) {
		return []error{err}
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil
	}
	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, failures(e)...)
	}
	return out
}

func (r *Router) publishCancel(ctx context.Context, nav *navigation.Navigation, reason string) {
	r.publish(ctx, event.NavigationCancel{
		NavigationID:  nav.ID,
		CorrelationID: nav.CorrelationID,
		Trigger:       nav.Trigger.String(),
		Reason:        reason,
	})
}

func (r *Router) publish(ctx context.Context, payload any) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(context.WithoutCancel(ctx), payload); err != nil {
		r.logger.WarnContext(ctx, "router event not delivered", logger.Error(err))
	}
}

// Start subscribes to history pop events and navigates to the URL the
// backend currently shows. The initial navigation replaces the current entry.
func (r *Router) Start(ctx context.Context) error {
	if r.history == nil {
		return ErrNoHistory
	}

	r.mu.Lock()
	switch {
	case r.stopped:
		r.mu.Unlock()
		return ErrRouterStopped
	case r.started:
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.started = true
	r.baseCtx, r.stopBase = context.WithCancel(context.WithoutCancel(ctx))
	r.unsubscribe = r.history.Subscribe(r.onPop)
	r.mu.Unlock()

	url, err := r.history.CurrentURL(ctx)
	if err != nil {
		return err
	}
	_, err = r.LoadURL(ctx, url, WithHistoryStrategy(navigation.HistoryReplace))
	return err
}

func (r *Router) onPop(ev history.PopEvent) {
	r.mu.Lock()
	ctx := r.baseCtx
	r.mu.Unlock()
	if ctx == nil {
		return
	}
	if _, err := r.HandleLocationChange(ctx, ev); err != nil {
		r.logger.ErrorContext(ctx, "navigation from history failed", logger.URL(ev.URL), logger.Error(err))
	}
}

// HandleLocationChange navigates to a URL the history backend already shows.
// The URL is not written back.
func (r *Router) HandleLocationChange(ctx context.Context, ev history.PopEvent) (bool, error) {
	trigger := ev.Trigger
	if !trigger.FromBrowser() {
		trigger = navigation.TriggerPopState
	}
	return r.LoadURL(ctx, ev.URL, WithTrigger(trigger))
}

// Stop cancels the active transition, waits for it to settle and stops
// listening to history. Later loads fail with ErrRouterStopped.
func (r *Router) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	active := r.active
	unsubscribe := r.unsubscribe
	stopBase := r.stopBase
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if stopBase != nil {
		stopBase()
	}
	if active != nil {
		active.abort(ErrRouterStopped)
		<-active.done
	}
}

// Stopped reports whether Stop or Dispose has been called.
func (r *Router) Stopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

// Dispose stops the router, removes the committed tree and clears the
// navigation strategy cache.
func (r *Router) Dispose(ctx context.Context) error {
	r.Stop()
	defer r.resolver.Reset()

	s := r.state.Load()
	if s == nil {
		return nil
	}
	x := &executor{r: r, ordering: r.ordering}
	err := x.ordering.Each(ctx, len(s.root.Children), func(ctx context.Context, i int) error {
		return x.removeLifecycle(ctx, s.root.Children[i])
	})
	if err != nil {
		return fmt.Errorf("dispose: %w", err)
	}
	return nil
}

func locationString(loc instruction.Location) string {
	if loc == nil {
		return ""
	}
	return loc.String()
}
