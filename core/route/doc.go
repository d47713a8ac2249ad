// Package route resolves navigation instructions against route
// configurations.
//
// A Config binds one or more path patterns to a component, to a
// NavigationStrategy that picks the component at navigation time, or to a
// redirect. Patterns are made of "/" separated segments:
//
//	products              literal segment
//	product/:id           required parameter
//	files/*path           catch-all, bound as one "/" joined string
//	""                    empty path, used when a level has no instruction
//
// Resolution is hierarchical. At each level the Resolver matches the
// instruction chain against the level's routes, most specific first (literal
// before parameter before catch-all, ties broken by registration order), and
// passes the unconsumed instructions to the matched route's children. With
// Request.Deep unset the children stay pending on the node until
// ResolveChildren is called, which lets a parent component load before its
// child routes are known.
//
// Navigation strategies are memoized per route key and parameter set for the
// lifetime of the Resolver. Concurrent misses for one key share a single
// invocation. StrategyRequest.Segments splits a catch-all back into its
// segments:
//
//	cfg := &route.Config{
//		ID:   "editor",
//		Path: []string{"edit/:kind"},
//		Strategy: func(ctx context.Context, req route.StrategyRequest) (*component.Definition, error) {
//			return editors[req.Params["kind"]], nil
//		},
//	}
//
// Table walks a configuration eagerly and therefore rejects strategies with
// an EagerResolutionError.
package route
