// Package hook holds the user-registered hooks that take part in every
// navigation.
//
// Three hook types exist:
//
//   - TransformFromURL rewrites the requested location before it is resolved.
//   - TransformToURL rewrites the committed tree right before the URL is
//     written to history.
//   - BeforeNavigation inspects the resolved instructions and may continue,
//     cancel, or replace them.
//
// Hooks of one type run in registration order. Transform hooks are chained:
// each receives the previous hook's return value, which may be either a URL or
// an instruction tree.
//
//	reg := hook.NewRegistry()
//	reg.Add(hook.TransformFromURL(func(ctx context.Context, loc instruction.Location, nav *navigation.Navigation) (instruction.Location, error) {
//		return instruction.URL("legacy/" + loc.String()), nil
//	}))
//	reg.Add(hook.BeforeNavigation(requireLogin), hook.Include("admin"))
//
// Include and Exclude scope BeforeNavigation hooks to route paths. Panics in
// hooks are recovered and reported as HookExecutionError.
package hook
