// Package sqlite keeps a journal of committed navigations in a SQLite
// database, using the pure Go modernc.org/sqlite driver.
//
// The journal writes one row per NavigationEnd and LocationChanged event.
// Subscribe its handlers to the bus the router publishes to:
//
//	j, err := sqlite.Open(ctx, "journal.db", sqlite.WithRetention(30*24*time.Hour))
//	if err != nil {
//		return err
//	}
//	defer j.Close()
//
//	bus := event.NewBus()
//	bus.Subscribe(j.Handlers()...)
//	r, err := router.New(root, routes,
//		router.WithPublisher(event.NewPublisher(event.NewSyncTransport(bus))))
//
// Rows keep the event ID, so an event delivered twice is recorded once.
// List and Last read the journal back, newest first; Prune and PruneExpired
// remove old rows.
package sqlite
