package event

import (
	"context"
	"time"
)

type metaCtx struct{}

// meta is the part of an Event handlers see besides the payload.
type meta struct {
	id        string
	name      string
	createdAt time.Time
}

// WithEventMeta attaches the ID, name and creation time of ev to ctx. The
// bus does this before calling handlers.
func WithEventMeta(ctx context.Context, ev Event) context.Context {
	return context.WithValue(ctx, metaCtx{}, meta{id: ev.ID, name: ev.Name, createdAt: ev.CreatedAt})
}

func metaFrom(ctx context.Context) meta {
	m, _ := ctx.Value(metaCtx{}).(meta)
	return m
}

// EventID returns the ID of the event being handled, or "".
func EventID(ctx context.Context) string { return metaFrom(ctx).id }

// EventName returns the name of the event being handled, or "".
func EventName(ctx context.Context) string { return metaFrom(ctx).name }

// EventTime returns when the event being handled was created, or the zero
// time outside of a handler.
func EventTime(ctx context.Context) time.Time { return metaFrom(ctx).createdAt }
