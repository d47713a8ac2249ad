package router

import (
	"github.com/dmitrymomot/waypoint/core/component"
	"github.com/dmitrymomot/waypoint/core/route"
	"github.com/dmitrymomot/waypoint/core/viewport"
)

// Config holds the environment-driven router settings.
type Config struct {
	SwapStrategy   viewport.SwapStrategy `env:"ROUTER_SWAP_STRATEGY" envDefault:"sequential-remove-first"`
	DeferUntil     viewport.DeferPolicy  `env:"ROUTER_DEFER_UNTIL" envDefault:"load-hooks"`
	TitleSeparator string                `env:"ROUTER_TITLE_SEPARATOR" envDefault:" | "`
	BasePath       string                `env:"ROUTER_BASE_PATH"`
	UseHash        bool                  `env:"ROUTER_USE_HASH" envDefault:"false"`
}

// NewFromConfig creates a router from cfg. Options given explicitly are
// applied after the ones derived from cfg and take precedence.
func NewFromConfig(cfg Config, root *component.Definition, routes []*route.Config, opts ...Option) (*Router, error) {
	base := []Option{
		WithSwapStrategy(cfg.SwapStrategy),
		WithDeferPolicy(cfg.DeferUntil),
		WithTitleSeparator(cfg.TitleSeparator),
		WithBasePath(cfg.BasePath),
		WithHashRouting(cfg.UseHash),
	}
	return New(root, routes, append(base, opts...)...)
}
