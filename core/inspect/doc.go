// Package inspect serves a development inspector for a router over HTTP.
//
// Endpoints:
//
//	GET  /routes   static route table
//	GET  /current  committed route projection
//	POST /load     {"url": "users/42", "history": "replace", "plan": "append"}
//	GET  /events   websocket stream of router events
//
// The event stream starts with a Snapshot of the current route followed by
// every event published on the bus, encoded as event.Event JSON. Slow
// clients lose events rather than delaying navigation.
//
// Usage with errgroup:
//
//	bus := event.NewBus()
//	r, _ := router.New(app, routes, router.WithPublisher(
//		event.NewPublisher(event.NewSyncTransport(bus))))
//
//	ins := inspect.New(r, bus, inspect.WithAddr("127.0.0.1:7070"))
//	defer ins.Close()
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(ins.Run(ctx))
//	return g.Wait()
package inspect
