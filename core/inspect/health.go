package inspect

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/waypoint/core/logger"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(context.Context) error

// handleLiveness always answers ALIVE. No dependency checks.
func (i *Inspector) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ALIVE"))
}

// handleReadiness answers READY when the router accepts navigations and
// every registered check passes, 503 otherwise.
func (i *Inspector) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if i.router.Stopped() {
		jsonError(w, "router is stopped", http.StatusServiceUnavailable)
		return
	}
	for _, check := range i.checks {
		if err := check(ctx); err != nil {
			i.logger.ErrorContext(ctx, "readiness check failed", logger.Error(err))
			jsonError(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("READY"))
}
