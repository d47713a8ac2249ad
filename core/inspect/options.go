package inspect

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Option configures an Inspector.
type Option func(*Inspector)

// WithAddr sets the listen address used by Start and Run.
func WithAddr(addr string) Option {
	return func(i *Inspector) {
		i.addr = addr
	}
}

// WithLogger sets a custom logger for the inspector.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func WithReadTimeout(d time.Duration) Option {
	return func(i *Inspector) {
		i.readTimeout = d
	}
}

func WithIdleTimeout(d time.Duration) Option {
	return func(i *Inspector) {
		i.idleTimeout = d
	}
}

// WithShutdownTimeout sets the maximum time to wait for graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(i *Inspector) {
		i.shutdown = d
	}
}

// WithClientBuffer sets how many events are queued per websocket client
// before further events are dropped for it.
func WithClientBuffer(n int) Option {
	return func(i *Inspector) {
		if n > 0 {
			i.clientBuffer = n
		}
	}
}

// WithOriginCheck sets the websocket origin policy. By default only
// same-host origins are accepted.
func WithOriginCheck(fn func(*http.Request) bool) Option {
	return func(i *Inspector) {
		i.upgrader.CheckOrigin = fn
	}
}

// WithHealthChecks adds dependency checks to the /health/ready endpoint.
func WithHealthChecks(checks ...HealthCheck) Option {
	return func(i *Inspector) {
		i.checks = append(i.checks, checks...)
	}
}

// WithLoadRateLimit caps POST /load to perSecond requests with the given
// burst. Requests over the limit get 429. A non-positive rate disables it.
func WithLoadRateLimit(perSecond float64, burst int) Option {
	return func(i *Inspector) {
		if perSecond <= 0 {
			i.loadLimiter = nil
			return
		}
		i.loadLimiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(i *Inspector) {
		i.metrics = h
	}
}
