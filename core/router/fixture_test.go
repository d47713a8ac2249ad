package router_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/event"
	"github.com/dmitrymomot/waypoint/core/navigation"
	"github.com/dmitrymomot/waypoint/core/route"
	"github.com/dmitrymomot/waypoint/core/router"
)

var errBoom = errors.New("boom")

// fixture records every hook issued to the components it defines.
type fixture struct {
	mu    sync.Mutex
	calls []string
	deny  map[string]bool
	fail  map[string]error
	block map[string]chan struct{}
	pins  map[string]chan struct{}
}

func newFixture() *fixture {
	return &fixture{
		deny:  make(map[string]bool),
		fail:  make(map[string]error),
		block: make(map[string]chan struct{}),
		pins:  make(map[string]chan struct{}),
	}
}

func (f *fixture) def(name string, viewports ...string) *component.Definition {
	return &component.Definition{
		Name:      name,
		Viewports: viewports,
		New:       func() component.Instance { return &probe{name: name, f: f} },
	}
}

func (f *fixture) route(name string, children ...*route.Config) *route.Config {
	return &route.Config{ID: name, Path: []string{name}, Component: f.def(name), Children: children}
}

// hold makes key block until the returned function is called or the hook's
// context is cancelled.
func (f *fixture) hold(key string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.block[key] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// pin makes key block until the returned function is called, whatever
// happens to the hook's context.
func (f *fixture) pin(key string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.pins[key] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// releaseWhen calls release once every key has been recorded.
func (f *fixture) releaseWhen(release func(), keys ...string) {
	go func() {
		defer release()
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			all := true
			for _, k := range keys {
				all = all && f.called(k)
			}
			if all {
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
}

func (f *fixture) set(key string, deny bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if deny {
		f.deny[key] = true
	}
	if err != nil {
		f.fail[key] = err
	}
}

func (f *fixture) record(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	f.calls = append(f.calls, key)
	ch, pin, deny, err := f.block[key], f.pins[key], f.deny[key], f.fail[key]
	f.mu.Unlock()

	if pin != nil {
		<-pin
	}
	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return !deny, err
}

// take returns the recorded calls and resets the record.
func (f *fixture) take() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := f.calls
	f.calls = nil
	return calls
}

func (f *fixture) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.calls, key)
}

type probe struct {
	name string
	f    *fixture
}

func (p *probe) CanLoad(ctx context.Context, _ component.LoadArgs) (bool, error) {
	return p.f.record(ctx, p.name+".canLoad")
}

func (p *probe) Load(ctx context.Context, _ component.LoadArgs) error {
	_, err := p.f.record(ctx, p.name+".load")
	return err
}

func (p *probe) CanUnload(ctx context.Context, _ *navigation.Navigation) (bool, error) {
	return p.f.record(ctx, p.name+".canUnload")
}

func (p *probe) Unload(ctx context.Context, _ *navigation.Navigation) error {
	_, err := p.f.record(ctx, p.name+".unload")
	return err
}

func (p *probe) Lifecycle(ctx context.Context, h component.Hook) error {
	_, err := p.f.record(ctx, p.name+"."+h.String())
	return err
}

// events collects the names of published router events.
type events struct {
	mu    sync.Mutex
	names []string
	items []event.Event
}

func (e *events) publisher() *event.Publisher {
	bus := event.NewBus()
	bus.SubscribeAll(func(_ context.Context, ev event.Event) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.names = append(e.names, ev.Name)
		e.items = append(e.items, ev)
		return nil
	})
	return event.NewPublisher(event.NewSyncTransport(bus))
}

func (e *events) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.names)
}

func (e *events) Last(name string) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.items) - 1; i >= 0; i-- {
		if e.items[i].Name == name {
			return e.items[i].Payload
		}
	}
	return nil
}

func newRouter(t *testing.T, root *component.Definition, routes []*route.Config, opts ...router.Option) *router.Router {
	t.Helper()
	r, err := router.New(root, routes, opts...)
	require.NoError(t, err)
	return r
}

func load(t *testing.T, r *router.Router, url string, opts ...router.LoadOption) {
	t.Helper()
	ok, err := r.LoadURL(context.Background(), url, opts...)
	require.NoError(t, err)
	require.True(t, ok, "navigation to %q was not committed", url)
}

func lifecycle(name string, hooks ...component.Hook) []string {
	out := make([]string, len(hooks))
	for i, h := range hooks {
		out[i] = name + "." + h.String()
	}
	return out
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
