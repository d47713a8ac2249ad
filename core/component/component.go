package component

import (
	"context"
	"maps"
	"net/url"

	"github.com/dmitrymomot/waypoint/core/navigation"
)

// DefaultViewport is the viewport name used when a component declares none.
const DefaultViewport = "default"

// Instance is a live component created by a Runtime.
type Instance any

// Definition describes a routable component.
type Definition struct {
	Name string
	// Viewports lists the viewports declared by the component template, in
	// declaration order.
	Viewports []string
	// New creates the component state. Nil yields an empty instance.
	New func() Instance
}

// DeclaredViewports returns Viewports, or a single DefaultViewport when the
// definition declares none.
func (d *Definition) DeclaredViewports() []string {
	if d == nil || len(d.Viewports) == 0 {
		return []string{DefaultViewport}
	}
	return d.Viewports
}

// Params holds route parameters bound by the matched path pattern.
// It is empty but non-nil when the pattern declares no parameters.
type Params map[string]string

// Equal reports whether p and other hold the same parameters.
func (p Params) Equal(other Params) bool {
	return maps.Equal(p, other)
}

// LoadArgs is passed to CanLoad and Load.
type LoadArgs struct {
	Params     Params
	Query      url.Values
	Navigation *navigation.Navigation
}

// CanLoader is implemented by components that may refuse to be shown.
type CanLoader interface {
	CanLoad(ctx context.Context, args LoadArgs) (bool, error)
}

// Loader is implemented by components that load data before being shown.
type Loader interface {
	Load(ctx context.Context, args LoadArgs) error
}

// CanUnloader is implemented by components that may refuse to be removed.
type CanUnloader interface {
	CanUnload(ctx context.Context, nav *navigation.Navigation) (bool, error)
}

// Unloader is implemented by components that release state before removal.
type Unloader interface {
	Unload(ctx context.Context, nav *navigation.Navigation) error
}
