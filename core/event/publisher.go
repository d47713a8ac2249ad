package event

import (
	"context"
	"io"
	"log/slog"
)

// Publisher wraps payloads into events and hands them to a transport.
//
//	bus := event.NewBus()
//	publisher := event.NewPublisher(event.NewSyncTransport(bus))
//	err := publisher.Publish(ctx, event.LocationChanged{URL: "users"})
type Publisher struct {
	transport PublisherTransport
	logger    *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger for the publisher.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher creates a publisher for transport.
func NewPublisher(transport PublisherTransport, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		transport: transport,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish sends payload as a new event.
//
// With a sync transport it blocks until all handlers complete and returns
// their errors. With a channel transport it returns the dispatch error only.
func (p *Publisher) Publish(ctx context.Context, payload any) error {
	ev := NewEvent(payload)
	if err := p.transport.Dispatch(ctx, ev); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("event_id", ev.ID),
			slog.String("event_name", ev.Name),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
