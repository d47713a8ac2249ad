package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety, so calls like
// log.Info("msg", logger.Error(err)) need no explicit nil checks.

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups multiple non-nil errors under the key "errors".
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed logs the duration since start.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event creates an attribute for event names.
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// TransitionID creates an attribute for the transition being processed.
func TransitionID(id int64) slog.Attr {
	return slog.Int64("transition_id", id)
}

// Trigger creates an attribute for what caused a navigation.
func Trigger(t string) slog.Attr {
	return slog.String("trigger", t)
}

// URL creates an attribute for a navigation URL.
func URL(u string) slog.Attr {
	return slog.String("url", u)
}

// Viewport creates an attribute for viewport names.
func Viewport(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("viewport", name)
}

// Route creates an attribute for route identifiers.
func Route(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("route", id)
}

// Status creates an attribute for state machine statuses.
func Status(s string) slog.Attr {
	return slog.String("status", s)
}

// Hook creates an attribute for hook names.
func Hook(name string) slog.Attr {
	return slog.String("hook", name)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}
