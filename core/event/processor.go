package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Processor drains a ChannelTransport and delivers its events to a Bus.
type Processor struct {
	bus       *Bus
	transport *ChannelTransport
	workers   int
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithWorkers sets the number of concurrent delivery goroutines. Events are
// delivered in order only with a single worker, which is the default.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithProcessorLogger configures structured logging for processor operations.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor creates a processor delivering events of transport to bus.
func NewProcessor(bus *Bus, transport *ChannelTransport, opts ...ProcessorOption) *Processor {
	p := &Processor{
		bus:       bus,
		transport: transport,
		workers:   1,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start delivers events until the transport is closed or ctx is cancelled.
// Closing the transport drains the queued events before Start returns.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrProcessorAlreadyStarted
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	p.logger.InfoContext(ctx, "event processor started", slog.Int("workers", p.workers))

	g, ctx := errgroup.WithContext(ctx)
	for range p.workers {
		g.Go(func() error {
			return p.work(ctx)
		})
	}
	err := g.Wait()
	p.logger.Info("event processor stopped")
	return err
}

func (p *Processor) work(ctx context.Context) error {
	events := p.transport.events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-events:
			if !ok {
				return nil
			}
			start := time.Now()
			if err := p.bus.Deliver(env.ctx, env.event); err != nil {
				p.logger.ErrorContext(env.ctx, "event handler failed",
					slog.String("event_id", env.event.ID),
					slog.String("event_name", env.event.Name),
					slog.Duration("duration", time.Since(start)),
					slog.String("error", err.Error()))
			}
		}
	}
}

// Run provides errgroup compatibility. The processor stops when ctx is
// cancelled; cancellation is not reported as an error.
func (p *Processor) Run(ctx context.Context) func() error {
	return func() error {
		err := p.Start(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
}

// Running reports whether Start is in progress.
func (p *Processor) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
