// Package component describes the contract between the navigation engine and
// the component runtime that renders views.
//
// The engine never renders anything itself. It asks a Runtime to create an
// Instance for a Definition and then drives the instance through two kinds of
// callbacks:
//
//   - routing hooks, implemented optionally by the instance: CanLoad, Load,
//     CanUnload and Unload (see CanLoader, Loader, CanUnloader, Unloader);
//   - view lifecycle hooks, issued through Runtime.Lifecycle in the order
//     given by AddHooks and RemoveHooks.
//
// DefaultRuntime is a ready to use Runtime that creates instances from
// Definition.New and forwards lifecycle hooks to instances implementing
// LifecycleAware.
package component
