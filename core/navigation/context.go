package navigation

import "context"

type navigationCtx struct{}

// WithNavigation attaches nav to the context.
func WithNavigation(ctx context.Context, nav *Navigation) context.Context {
	return context.WithValue(ctx, navigationCtx{}, nav)
}

// FromContext extracts the navigation from the context.
// Returns nil if not present.
func FromContext(ctx context.Context) *Navigation {
	if nav, ok := ctx.Value(navigationCtx{}).(*Navigation); ok {
		return nav
	}
	return nil
}
