package inspect

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/waypoint/core/event"
	"github.com/dmitrymomot/waypoint/core/logger"
	"github.com/dmitrymomot/waypoint/core/navigation"
	"github.com/dmitrymomot/waypoint/core/route"
	"github.com/dmitrymomot/waypoint/core/router"
)

// LoadRequest is the body of POST /load.
type LoadRequest struct {
	URL string `json:"url"`
	// History is one of push, replace or none. Defaults to push.
	History string `json:"history,omitempty"`
	// Plan is replace or append. Defaults to replace.
	Plan string `json:"plan,omitempty"`
}

// LoadResponse is the body returned by POST /load.
type LoadResponse struct {
	Committed bool                 `json:"committed"`
	Current   *router.CurrentRoute `json:"current"`
}

func (i *Inspector) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(i.logger))

	r.Get("/health/live", i.handleLiveness)
	r.Get("/health/ready", i.handleReadiness)
	r.Get("/routes", i.handleRoutes)
	r.Get("/current", i.handleCurrent)
	r.With(i.limitLoads).Post("/load", i.handleLoad)
	if i.bus != nil {
		r.Get("/events", i.handleEvents)
	}
	if i.metrics != nil {
		r.Method(http.MethodGet, "/metrics", i.metrics)
	}
	return r
}

func (i *Inspector) handleRoutes(w http.ResponseWriter, r *http.Request) {
	entries, err := i.router.Routes()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, route.ErrEagerResolution) {
			status = http.StatusConflict
		}
		jsonError(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"routes": entries})
}

func (i *Inspector) handleCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"current": i.router.Current()})
}

func (i *Inspector) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		jsonError(w, fmt.Sprintf("%s: %v", ErrInvalidRequest, err), http.StatusBadRequest)
		return
	}
	opts, err := req.options()
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ok, err := i.router.LoadURL(r.Context(), req.URL, opts...)
	if err != nil && !ok {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, router.ErrRouterStopped) {
			status = http.StatusServiceUnavailable
		}
		i.logger.WarnContext(r.Context(), "inspector load failed", logger.URL(req.URL), logger.Error(err))
		jsonError(w, err.Error(), status)
		return
	}
	if err != nil {
		i.logger.WarnContext(r.Context(), "inspector load committed with error", logger.URL(req.URL), logger.Error(err))
	}
	writeJSON(w, http.StatusOK, LoadResponse{Committed: ok, Current: i.router.Current()})
}

func (i *Inspector) limitLoads(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if i.loadLimiter != nil && !i.loadLimiter.Allow() {
			w.Header().Set("Retry-After", "1")
			jsonError(w, ErrLoadRateExceeded.Error(), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (req LoadRequest) options() ([]router.LoadOption, error) {
	if strings.TrimSpace(req.URL) == "" && req.URL != "" {
		return nil, fmt.Errorf("%w: blank url", ErrInvalidRequest)
	}

	var opts []router.LoadOption
	switch req.History {
	case "", "push":
	case "replace":
		opts = append(opts, router.WithHistoryStrategy(navigation.HistoryReplace))
	case "none":
		opts = append(opts, router.WithHistoryStrategy(navigation.HistoryNone))
	default:
		return nil, fmt.Errorf("%w: history %q", ErrInvalidRequest, req.History)
	}

	switch req.Plan {
	case "", "replace":
	case "append":
		opts = append(opts, router.WithTransitionPlan(navigation.PlanAppend))
	default:
		return nil, fmt.Errorf("%w: plan %q", ErrInvalidRequest, req.Plan)
	}
	return opts, nil
}

func (i *Inspector) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := i.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		i.logger.DebugContext(r.Context(), "inspector websocket upgrade failed", logger.Error(err))
		return
	}

	first, err := json.Marshal(event.NewEvent(Snapshot{Current: i.router.Current()}))
	if err != nil {
		_ = conn.Close()
		return
	}
	c, ok := i.hub.register(conn, first)
	if !ok {
		i.hub.goodbye(&client{conn: conn})
		_ = conn.Close()
		return
	}
	i.hub.serve(r.Context(), c)
}

// Clients returns the number of connected websocket clients.
func (i *Inspector) Clients() int {
	return i.hub.count()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
