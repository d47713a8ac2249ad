package event

import (
	"context"
	"sync"
)

type envelope struct {
	ctx   context.Context
	event Event
}

// ChannelTransport buffers events for a Processor. Dispatch never blocks.
type ChannelTransport struct {
	mu     sync.RWMutex
	ch     chan envelope
	closed bool
}

// NewChannelTransport creates a transport buffering up to bufferSize events.
func NewChannelTransport(bufferSize int) *ChannelTransport {
	if bufferSize < 1 {
		panic("event: bufferSize must be at least 1")
	}
	return &ChannelTransport{ch: make(chan envelope, bufferSize)}
}

// Dispatch queues ev. It returns ErrBufferFull when the buffer is full.
// The dispatch context is detached from cancellation and handed to handlers.
func (t *ChannelTransport) Dispatch(ctx context.Context, ev Event) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return ErrTransportClosed
	}

	select {
	case t.ch <- envelope{ctx: context.WithoutCancel(ctx), event: ev}:
		return nil
	default:
		return ErrBufferFull
	}
}

func (t *ChannelTransport) events() <-chan envelope {
	return t.ch
}

// Close stops accepting events. Queued events are still delivered.
func (t *ChannelTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.ch)
	}
	return nil
}
