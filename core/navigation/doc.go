// Package navigation holds the metadata shared by every stage of a navigation:
// what triggered it, the options it was requested with and the identity that
// hooks, guards and lifecycle callbacks use to correlate their calls.
//
// A single *Navigation value is created per transition attempt and passed by
// pointer through the whole pipeline, so comparing pointers is a valid way to
// recognise calls that belong to the same attempt:
//
//	router.AddHook(hook.BeforeNavigation(func(ctx context.Context, t *instruction.Tree, nav *navigation.Navigation) (hook.Verdict, error) {
//		log.Info("navigating", "id", nav.ID, "trigger", nav.Trigger)
//		return hook.Continue(), nil
//	}))
//
// The context passed to callbacks carries the same value; use FromContext to
// retrieve it from code that only has the context.
package navigation
