package prometheus

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/waypoint/core/event"
)

const DefaultNamespace = "waypoint"

const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

var ErrRegisterFailed = errors.New("failed to register navigation metrics")

// Collector records navigation metrics from router events.
type Collector struct {
	registry  *prometheus.Registry
	started   *prometheus.CounterVec
	finished  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	inFlight  prometheus.Gauge
	locations *prometheus.CounterVec

	// Started navigations not yet finished, so that a finish event without a
	// start does not drive the gauge negative.
	mu      sync.Mutex
	pending map[int64]struct{}
}

type options struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry
}

// Option configures a Collector.
type Option func(*options)

// WithNamespace sets the metric name prefix.
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithBuckets sets the duration histogram buckets, in seconds.
func WithBuckets(buckets ...float64) Option {
	return func(o *options) {
		if len(buckets) > 0 {
			o.buckets = buckets
		}
	}
}

// WithRegistry registers the metrics in reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		if reg != nil {
			o.registry = reg
		}
	}
}

// New creates a collector and registers its metrics.
func New(opts ...Option) (*Collector, error) {
	o := options{
		namespace: DefaultNamespace,
		buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: o.registry,
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "navigations_started_total",
			Help:      "Transitions started, by trigger.",
		}, []string{"trigger"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "navigations_total",
			Help:      "Transitions settled, by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "navigation_duration_seconds",
			Help:      "Duration of committed transitions.",
			Buckets:   o.buckets,
		}, []string{"trigger"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: o.namespace,
			Name:      "navigations_in_flight",
			Help:      "Transitions started and not yet settled.",
		}),
		locations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "location_changes_total",
			Help:      "Committed transitions caused by the history backend.",
		}, []string{"trigger"}),
		pending: make(map[int64]struct{}),
	}

	for _, m := range []prometheus.Collector{c.started, c.finished, c.duration, c.inFlight, c.locations} {
		if err := o.registry.Register(m); err != nil {
			return nil, errors.Join(ErrRegisterFailed, err)
		}
	}
	return c, nil
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Handlers returns event handlers feeding the collector.
func (c *Collector) Handlers() []event.Handler {
	return []event.Handler{
		event.NewHandlerFunc(func(_ context.Context, e event.NavigationStart) error {
			c.start(e.NavigationID, e.Trigger)
			return nil
		}),
		event.NewHandlerFunc(func(_ context.Context, e event.NavigationEnd) error {
			c.finish(e.NavigationID, e.Trigger, OutcomeCompleted)
			c.duration.WithLabelValues(e.Trigger).Observe(e.Duration.Seconds())
			return nil
		}),
		event.NewHandlerFunc(func(_ context.Context, e event.NavigationCancel) error {
			c.finish(e.NavigationID, e.Trigger, OutcomeCancelled)
			return nil
		}),
		event.NewHandlerFunc(func(_ context.Context, e event.NavigationError) error {
			c.finish(e.NavigationID, e.Trigger, OutcomeFailed)
			return nil
		}),
		event.NewHandlerFunc(func(_ context.Context, e event.LocationChanged) error {
			c.locations.WithLabelValues(e.Trigger).Inc()
			return nil
		}),
	}
}

func (c *Collector) start(id int64, trigger string) {
	c.started.WithLabelValues(trigger).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[id]; !ok {
		c.pending[id] = struct{}{}
		c.inFlight.Inc()
	}
}

func (c *Collector) finish(id int64, trigger, outcome string) {
	c.finished.WithLabelValues(trigger, outcome).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[id]; ok {
		delete(c.pending, id)
		c.inFlight.Dec()
	}
}
