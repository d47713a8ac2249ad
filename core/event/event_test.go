package event_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/waypoint/core/event"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	ev := event.NewEvent(&event.LocationChanged{URL: "a"})
	assert.Equal(t, "LocationChanged", ev.Name)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.CreatedAt.IsZero())
}

func TestPublisher_Sync(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	var got []event.NavigationEnd
	bus.Subscribe(event.NewHandlerFunc(func(ctx context.Context, e event.NavigationEnd) error {
		assert.Equal(t, "NavigationEnd", event.EventName(ctx))
		assert.NotEmpty(t, event.EventID(ctx))
		got = append(got, e)
		return nil
	}))
	bus.Subscribe(event.NewHandlerFunc(func(context.Context, event.NavigationStart) error {
		t.Error("unexpected handler call")
		return nil
	}))

	p := event.NewPublisher(event.NewSyncTransport(bus))
	require.NoError(t, p.Publish(context.Background(), event.NavigationEnd{URL: "users"}))
	require.Len(t, got, 1)
	assert.Equal(t, "users", got[0].URL)
}

func TestPublisher_SyncErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	bus := event.NewBus()
	bus.Subscribe(
		event.NewHandlerFunc(func(context.Context, event.LocationChanged) error { return boom }),
		event.NewHandlerFunc(func(context.Context, event.LocationChanged) error { panic("oops") }),
	)

	calledAfter := false
	bus.SubscribeAll(func(context.Context, event.Event) error {
		calledAfter = true
		return nil
	})

	err := event.NewPublisher(event.NewSyncTransport(bus)).Publish(context.Background(), event.LocationChanged{})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, event.ErrHandlerPanic)
	assert.True(t, calledAfter, "a failing handler does not stop delivery")
}

func TestSyncTransport_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := event.NewSyncTransport(event.NewBus()).Dispatch(ctx, event.NewEvent(event.LocationChanged{}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	calls := 0
	unsubscribe := bus.Subscribe(event.NewHandlerFunc(func(context.Context, event.LocationChanged) error {
		calls++
		return nil
	}))
	observed := 0
	stopObserving := bus.SubscribeAll(func(context.Context, event.Event) error {
		observed++
		return nil
	})

	ev := event.NewEvent(event.LocationChanged{})
	require.NoError(t, bus.Deliver(context.Background(), ev))
	unsubscribe()
	stopObserving()
	require.NoError(t, bus.Deliver(context.Background(), ev))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, observed)
}

func TestHandler_PayloadConversion(t *testing.T) {
	t.Parallel()

	var got event.NavigationError
	h := event.NewHandlerFunc(func(_ context.Context, e event.NavigationError) error {
		got = e
		return nil
	})
	assert.Equal(t, "NavigationError", h.EventName())

	raw, err := json.Marshal(event.NavigationError{NavigationID: 3, Error: "failed"})
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), raw))
	assert.Equal(t, int64(3), got.NavigationID)

	var decoded event.Event
	require.NoError(t, json.Unmarshal([]byte(`{"name":"NavigationError","payload":{"error":"from map"}}`), &decoded))
	require.NoError(t, h.Handle(context.Background(), decoded.Payload))
	assert.Equal(t, "from map", got.Error)

	assert.ErrorIs(t, h.Handle(context.Background(), 42), event.ErrUnexpectedPayload)

	named := event.NewHandler("custom", func(context.Context, string) error { return nil })
	assert.Equal(t, "custom", named.EventName())
}

func TestProcessor(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	var (
		mu   sync.Mutex
		urls []string
	)
	bus.Subscribe(event.NewHandlerFunc(func(_ context.Context, e event.LocationChanged) error {
		mu.Lock()
		defer mu.Unlock()
		urls = append(urls, e.URL)
		return nil
	}))

	transport := event.NewChannelTransport(8)
	processor := event.NewProcessor(bus, transport)
	publisher := event.NewPublisher(transport)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(processor.Run(ctx))

	for _, u := range []string{"a", "b", "c"} {
		require.NoError(t, publisher.Publish(ctx, event.LocationChanged{URL: u}))
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(urls) == 3
	}, time.Second, 5*time.Millisecond)

	assert.True(t, processor.Running())
	assert.ErrorIs(t, processor.Start(ctx), event.ErrProcessorAlreadyStarted)

	require.NoError(t, transport.Close())
	require.NoError(t, g.Wait())
	assert.Equal(t, []string{"a", "b", "c"}, urls)
	assert.ErrorIs(t, publisher.Publish(context.Background(), event.LocationChanged{}), event.ErrTransportClosed)
}

func TestChannelTransport_BufferFull(t *testing.T) {
	t.Parallel()

	transport := event.NewChannelTransport(1)
	ev := event.NewEvent(event.LocationChanged{})
	require.NoError(t, transport.Dispatch(context.Background(), ev))
	assert.ErrorIs(t, transport.Dispatch(context.Background(), ev), event.ErrBufferFull)
	assert.Panics(t, func() { event.NewChannelTransport(0) })
}
