// Package event delivers router notifications to interested handlers.
//
// A Bus keeps handlers keyed by event name. Handlers are usually built from
// typed functions; the event name is the payload's type name:
//
//	bus := event.NewBus()
//	bus.Subscribe(event.NewHandlerFunc(func(ctx context.Context, e event.NavigationEnd) error {
//		slog.InfoContext(ctx, "navigated", "url", e.URL)
//		return nil
//	}))
//
// SubscribeAll registers an observer that sees every event with its metadata,
// which is how the inspector streams events.
//
// A Publisher wraps payloads into Event values and dispatches them through a
// transport. SyncTransport delivers in the caller's goroutine and returns the
// joined handler errors. ChannelTransport queues events without blocking; a
// Processor drains it:
//
//	transport := event.NewChannelTransport(64)
//	processor := event.NewProcessor(bus, transport)
//	g.Go(processor.Run(ctx))
//	publisher := event.NewPublisher(transport)
//
// Handler panics are recovered and reported as errors wrapping
// ErrHandlerPanic.
package event
