package history

import (
	"context"

	"github.com/dmitrymomot/waypoint/core/navigation"
)

// PopEvent is emitted by a backend when its URL changes without the router
// asking for it.
type PopEvent struct {
	Trigger navigation.Trigger `json:"trigger"`
	URL     string             `json:"url"`
}

// Backend is the history protocol the router depends on.
type Backend interface {
	URL(ctx context.Context) (string, error)
	Push(ctx context.Context, url, title string) error
	Replace(ctx context.Context, url, title string) error
	// Subscribe registers fn for pop events and returns a function that
	// removes it.
	Subscribe(fn func(PopEvent)) func()
}
