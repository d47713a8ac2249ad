package inspect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/waypoint/core/event"
	"github.com/dmitrymomot/waypoint/core/logger"
	"github.com/dmitrymomot/waypoint/core/router"
)

// Inspector exposes a router over HTTP. It is an http.Handler and can also
// run its own server.
type Inspector struct {
	router   *router.Router
	bus      *event.Bus
	logger   *slog.Logger
	mux      chi.Router
	hub      *hub
	upgrader websocket.Upgrader

	addr         string
	readTimeout  time.Duration
	idleTimeout  time.Duration
	shutdown     time.Duration
	clientBuffer int
	checks       []HealthCheck
	loadLimiter  *rate.Limiter
	metrics      http.Handler

	mu          sync.Mutex
	server      *http.Server
	running     bool
	unsubscribe func()
}

// New creates an inspector for r. Events are streamed from bus; with a nil
// bus the /events endpoint is not mounted.
func New(r *router.Router, bus *event.Bus, opts ...Option) *Inspector {
	i := &Inspector{
		router:       r,
		bus:          bus,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		addr:         DefaultAddr,
		readTimeout:  DefaultReadTimeout,
		idleTimeout:  DefaultIdleTimeout,
		shutdown:     DefaultShutdownTimeout,
		clientBuffer: DefaultClientBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(i)
	}

	i.hub = newHub(i.clientBuffer, i.logger)
	if bus != nil {
		i.unsubscribe = bus.SubscribeAll(i.hub.broadcast)
	}
	i.mux = i.routes()
	return i
}

// NewFromConfig creates an inspector from cfg. Options given explicitly
// override the ones derived from cfg.
func NewFromConfig(cfg Config, r *router.Router, bus *event.Bus, opts ...Option) (*Inspector, error) {
	base, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(r, bus, append(base, opts...)...), nil
}

func (i *Inspector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	i.mux.ServeHTTP(w, r)
}

// Close stops streaming events and disconnects websocket clients.
func (i *Inspector) Close() {
	i.mu.Lock()
	unsubscribe := i.unsubscribe
	i.unsubscribe = nil
	i.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	i.hub.close()
}

// Start serves the inspector and blocks until ctx is cancelled or the server
// fails. Returns ctx.Err() when the context is cancelled; use Stop for
// graceful shutdown.
func (i *Inspector) Start(ctx context.Context) error {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return ErrServerAlreadyRunning
	}
	if i.addr == "" {
		i.mu.Unlock()
		return ErrMissingAddress
	}
	i.running = true
	i.server = &http.Server{
		Addr:        i.addr,
		Handler:     i,
		ReadTimeout: i.readTimeout,
		IdleTimeout: i.idleTimeout,
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	srv := i.server
	i.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		i.logger.InfoContext(ctx, "starting inspector", slog.String("addr", i.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		i.mu.Lock()
		i.running = false
		i.mu.Unlock()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop gracefully shuts the server down using the configured timeout.
// Websocket clients are disconnected first, since Shutdown does not wait
// for hijacked connections.
func (i *Inspector) Stop() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.running || i.server == nil {
		return nil
	}
	i.hub.disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), i.shutdown)
	defer cancel()

	err := i.server.Shutdown(ctx)
	i.running = false
	if err != nil {
		i.logger.Error("inspector shutdown error", logger.Error(err))
		return err
	}
	i.logger.Info("inspector stopped")
	return nil
}

// Run returns a function for errgroup that serves the inspector until ctx
// is cancelled and then shuts it down.
func (i *Inspector) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- i.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			if err := i.Stop(); err != nil {
				i.logger.Error("failed to stop inspector during context cancellation", logger.Error(err))
			}
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}
