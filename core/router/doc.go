// Package router coordinates navigation between route trees.
//
// A Router turns a navigation target into a candidate route tree, runs the
// navigation hooks, compares the candidate with the committed tree per
// viewport and drives the resulting transition through its states:
//
//	pending -> guarding -> loading -> committing -> completed
//	                                              \-> cancelled | failed
//
// At most one transition is active. A new Load cancels the active one unless
// it is already committing. The committed tree is replaced by a single
// pointer swap, so Current never observes a half-applied navigation.
//
// Basic usage:
//
//	r, err := router.New(app, routes,
//		router.WithHistory(history.NewMemoryBackend("")),
//		router.WithSwapStrategy(viewport.SequentialRemoveFirst),
//	)
//	if err != nil {
//		return err
//	}
//	if err := r.Start(ctx); err != nil {
//		return err
//	}
//	defer r.Dispose(ctx)
//
//	ok, err := r.LoadURL(ctx, "users/42")
//
// Hooks returning false from a guard make Load report false with a nil error.
// Only genuine failures are returned as errors, and they leave the previous
// tree active.
//
// Settings can also be read from the environment:
//
//	var cfg router.Config
//	config.MustLoad(&cfg)
//	r, err := router.NewFromConfig(cfg, app, routes)
package router
