// Package waypoint is a navigation transition engine for component-based
// user interfaces. It turns a requested location into a tree of nested view
// components, running guard and lifecycle hooks in a configurable order, and
// keeps a history backend in sync with the committed tree.
//
// The root package holds no code; this file indexes the module.
//
// # Core Packages
//
// github.com/dmitrymomot/waypoint/core/router
//
// Router owns the single active transition. Load and LoadURL run the
// pending, guarding, loading and committing stages, cancel a superseded
// transition, and publish the CurrentRoute projection on commit.
//
// github.com/dmitrymomot/waypoint/core/instruction
//
// URL grammar: "/" nesting, "+" siblings, "@viewport" qualifiers, "(...)"
// groups, query and fragment. Parse and String round-trip.
//
// github.com/dmitrymomot/waypoint/core/route
//
// Route configs, path patterns (literal, ":param", "*wildcard"), the
// Resolver with its navigation strategy cache, resolved Node trees and the
// static route Table.
//
// github.com/dmitrymomot/waypoint/core/component
//
// Component definitions, declared viewports, the optional guard and
// lifecycle interfaces a component instance implements, and the Runtime
// that creates instances.
//
// github.com/dmitrymomot/waypoint/core/hook
//
// transformFromUrl, transformToUrl and beforeNavigation hooks with
// include/exclude scoping and left-to-right chaining.
//
// github.com/dmitrymomot/waypoint/core/viewport
//
// Per-viewport diff of two route trees and the swap strategy by hook
// deferral ordering table.
//
// github.com/dmitrymomot/waypoint/core/history
//
// History backend protocol, an in-memory backend and the Synchronizer that
// maps router URLs to backend URLs (base path, hash routing).
//
// github.com/dmitrymomot/waypoint/core/navigation
//
// Navigation metadata shared by every hook of one transition: trigger,
// history strategy, transition plan, correlation ID.
//
// github.com/dmitrymomot/waypoint/core/event
//
// Router events (NavigationStart, NavigationEnd, NavigationCancel,
// NavigationError, LocationChanged), a bus with typed handlers and
// synchronous or channel-backed publishing.
//
// github.com/dmitrymomot/waypoint/core/routefile
//
// Declarative route tables in YAML or TOML bound to a component registry.
//
// github.com/dmitrymomot/waypoint/core/inspect
//
// HTTP inspector for a running router: route table, current route, load
// endpoint, websocket event stream, health probes.
//
// github.com/dmitrymomot/waypoint/core/config
//
// Cached, type-safe environment loading.
//
// github.com/dmitrymomot/waypoint/core/logger
//
// slog construction and attribute helpers.
//
// # Utilities
//
// github.com/dmitrymomot/waypoint/pkg/async
//
// Futures used to fan out guard and lifecycle hooks.
//
// # Integrations
//
// github.com/dmitrymomot/waypoint/integration/history/redis
//
// History backend persisted in Redis, with cross-process pop events.
//
// github.com/dmitrymomot/waypoint/integration/journal/sqlite
//
// SQLite journal of committed navigations.
//
// github.com/dmitrymomot/waypoint/integration/metrics/prometheus
//
// Prometheus metrics fed by router events.
//
// # Command
//
// github.com/dmitrymomot/waypoint/cmd/waypoint
//
// CLI to list and resolve route files and to serve a router behind the
// inspector.
package waypoint
