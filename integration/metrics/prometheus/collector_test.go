package prometheus_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/event"
	"github.com/dmitrymomot/waypoint/core/history"
	"github.com/dmitrymomot/waypoint/core/route"
	"github.com/dmitrymomot/waypoint/core/router"
	"github.com/dmitrymomot/waypoint/integration/metrics/prometheus"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector_RouterEvents(t *testing.T) {
	t.Parallel()

	c, err := prometheus.New(prometheus.WithNamespace("app"))
	require.NoError(t, err)

	bus := event.NewBus()
	bus.Subscribe(c.Handlers()...)

	def := func(name string) *component.Definition { return &component.Definition{Name: name} }
	backend := history.NewMemoryBackend("/a")
	r, err := router.New(def("root"), []*route.Config{
		{ID: "a", Path: []string{"a"}, Component: def("a")},
		{ID: "b", Path: []string{"b"}, Component: def("b")},
	},
		router.WithHistory(backend),
		router.WithPublisher(event.NewPublisher(event.NewSyncTransport(bus))),
	)
	require.NoError(t, err)
	defer r.Stop()

	ctx := context.Background()
	require.NoError(t, r.Start(ctx))
	_, err = r.LoadURL(ctx, "b")
	require.NoError(t, err)
	_, err = r.LoadURL(ctx, "missing")
	require.Error(t, err)
	require.NoError(t, backend.Back())

	out := scrape(t, c.Handler())
	assert.Contains(t, out, `app_navigations_started_total{trigger="api"} 3`)
	assert.Contains(t, out, `app_navigations_total{outcome="completed",trigger="api"} 2`)
	assert.Contains(t, out, `app_navigations_total{outcome="failed",trigger="api"} 1`)
	assert.Contains(t, out, `app_navigations_total{outcome="completed",trigger="popstate"} 1`)
	assert.Contains(t, out, `app_navigation_duration_seconds_count{trigger="api"} 2`)
	assert.Contains(t, out, `app_location_changes_total{trigger="popstate"} 1`)
	assert.Contains(t, out, `app_navigations_in_flight 0`)
}

func TestCollector_FinishWithoutStart(t *testing.T) {
	t.Parallel()

	c, err := prometheus.New()
	require.NoError(t, err)

	bus := event.NewBus()
	bus.Subscribe(c.Handlers()...)
	publisher := event.NewPublisher(event.NewSyncTransport(bus))
	ctx := context.Background()

	require.NoError(t, publisher.Publish(ctx, event.NavigationCancel{NavigationID: 7, Trigger: "api", Reason: "superseded"}))
	require.NoError(t, publisher.Publish(ctx, event.NavigationStart{NavigationID: 8, Trigger: "link"}))

	out := scrape(t, c.Handler())
	assert.Contains(t, out, `waypoint_navigations_total{outcome="cancelled",trigger="api"} 1`)
	assert.Contains(t, out, `waypoint_navigations_in_flight 1`)
}

func TestCollector_SharedRegistry(t *testing.T) {
	t.Parallel()

	reg := prom.NewRegistry()
	c, err := prometheus.New(prometheus.WithRegistry(reg), prometheus.WithBuckets(0.1, 1))
	require.NoError(t, err)
	assert.Same(t, reg, c.Registry())

	_, err = prometheus.New(prometheus.WithRegistry(reg))
	assert.ErrorIs(t, err, prometheus.ErrRegisterFailed)
}
