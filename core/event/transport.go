package event

import "context"

// PublisherTransport defines how events are dispatched.
type PublisherTransport interface {
	// Dispatch sends an event for processing.
	// Returns an error if dispatch fails (e.g., buffer full).
	Dispatch(ctx context.Context, ev Event) error
}
