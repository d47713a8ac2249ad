// Package prometheus exports router navigation metrics to Prometheus.
//
// A Collector turns router events into metrics. Subscribe its handlers to the
// bus the router publishes to and expose Handler over HTTP:
//
//	c, err := prometheus.New(prometheus.WithNamespace("app"))
//	if err != nil {
//		return err
//	}
//	bus.Subscribe(c.Handlers()...)
//	ins := inspect.New(r, bus, inspect.WithMetrics(c.Handler()))
//
// Exported series:
//
//	<ns>_navigations_started_total{trigger}
//	<ns>_navigations_total{trigger,outcome}    outcome is completed, cancelled or failed
//	<ns>_navigation_duration_seconds{trigger}  committed transitions only
//	<ns>_navigations_in_flight
//	<ns>_location_changes_total{trigger}
package prometheus
