package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/waypoint/core/config"
	"github.com/dmitrymomot/waypoint/core/event"
	"github.com/dmitrymomot/waypoint/core/history"
	"github.com/dmitrymomot/waypoint/core/inspect"
	"github.com/dmitrymomot/waypoint/core/logger"
	"github.com/dmitrymomot/waypoint/core/router"
	redishistory "github.com/dmitrymomot/waypoint/integration/history/redis"
	"github.com/dmitrymomot/waypoint/integration/journal/sqlite"
	"github.com/dmitrymomot/waypoint/integration/metrics/prometheus"
)

type serveFlags struct {
	addr         string
	initialURL   string
	journalPath  string
	redisSession string
	eventBuffer  int
}

func newServeCmd(g *globalFlags) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve FILE",
		Short: "Run a router over a route file behind the HTTP inspector",
		Long: "Run a router over a route file and expose it through the inspector API:\n" +
			"GET /routes, GET /current, POST /load, GET /events (websocket), GET /metrics\n" +
			"and health probes. Router and inspector settings are read from the environment\n" +
			"(ROUTER_*, INSPECT_*); flags override them.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), g, f, args[0])
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", "", "inspector listen address (overrides INSPECT_ADDR)")
	cmd.Flags().StringVar(&f.initialURL, "initial-url", "/", "URL of the first history entry")
	cmd.Flags().StringVar(&f.journalPath, "journal", "", "record navigations in this SQLite database")
	cmd.Flags().StringVar(&f.redisSession, "redis-session", "", "keep history in Redis under this session key (uses REDIS_*)")
	cmd.Flags().IntVar(&f.eventBuffer, "event-buffer", 1024, "router events queued for the journal, metrics and inspector")
	return cmd
}

func serve(ctx context.Context, g *globalFlags, f *serveFlags, path string) error {
	log := g.log.With(logger.Component("serve"))

	t, err := loadTable(path)
	if err != nil {
		return err
	}

	var (
		routerCfg  router.Config
		inspectCfg inspect.Config
	)
	if err := config.Load(&routerCfg); err != nil {
		return err
	}
	if err := config.Load(&inspectCfg); err != nil {
		return err
	}
	if f.addr != "" {
		inspectCfg.Addr = f.addr
	}

	bus := event.NewBus()
	metrics, err := prometheus.New()
	if err != nil {
		return err
	}
	bus.Subscribe(metrics.Handlers()...)

	var (
		checks []inspect.HealthCheck
		listen func(context.Context) error
	)

	if f.journalPath != "" {
		journal, err := sqlite.Open(ctx, f.journalPath, sqlite.WithLogger(g.log))
		if err != nil {
			return err
		}
		defer journal.Close()
		bus.Subscribe(journal.Handlers()...)
		checks = append(checks, journal.Ping)
	}

	var backend history.Backend = history.NewMemoryBackend(f.initialURL)
	if f.redisSession != "" {
		var redisCfg redishistory.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		client, err := redishistory.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()

		opts := append(redisCfg.Options(), redishistory.WithLogger(g.log))
		rb, err := redishistory.New(ctx, client, f.redisSession, f.initialURL, opts...)
		if err != nil {
			return err
		}
		backend = rb
		listen = rb.Listen
		checks = append(checks, redishistory.Healthcheck(client))
	}

	if f.eventBuffer < 1 {
		return fmt.Errorf("event buffer must be positive, got %d", f.eventBuffer)
	}
	// Handlers run on the processor, so a slow journal never delays a
	// navigation. Closing the transport drains what is queued.
	transport := event.NewChannelTransport(f.eventBuffer)
	processor := event.NewProcessor(bus, transport, event.WithProcessorLogger(g.log))
	processed := make(chan error, 1)
	go func() { processed <- processor.Start(context.WithoutCancel(ctx)) }()
	defer func() {
		_ = transport.Close()
		if err := <-processed; err != nil {
			log.Error("event processor failed", logger.Error(err))
		}
	}()

	r, err := router.NewFromConfig(routerCfg, t.root, t.routes,
		router.WithLogger(g.log),
		router.WithHistory(backend),
		router.WithPublisher(event.NewPublisher(transport, event.WithPublisherLogger(g.log))),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.Dispose(context.WithoutCancel(ctx)); err != nil {
			log.Error("failed to dispose router", logger.Error(err))
		}
	}()

	if err := r.Start(ctx); err != nil {
		// The initial URL may not match; the inspector can still load others.
		log.WarnContext(ctx, "initial navigation failed", logger.URL(f.initialURL), logger.Error(err))
	}

	ins, err := inspect.NewFromConfig(inspectCfg, r, bus,
		inspect.WithLogger(g.log),
		inspect.WithHealthChecks(checks...),
		inspect.WithMetrics(metrics.Handler()),
	)
	if err != nil {
		return err
	}
	defer ins.Close()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(ins.Run(ctx))
	if listen != nil {
		eg.Go(func() error { return listen(ctx) })
	}

	err = eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
