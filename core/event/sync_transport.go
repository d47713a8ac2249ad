package event

import "context"

// SyncTransport delivers events in the caller's goroutine. Dispatch returns
// once every handler has run, with their errors joined.
type SyncTransport struct {
	bus *Bus
}

// NewSyncTransport creates a synchronous transport delivering to bus.
func NewSyncTransport(bus *Bus) *SyncTransport {
	return &SyncTransport{bus: bus}
}

func (t *SyncTransport) Dispatch(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.bus.Deliver(ctx, ev)
}
