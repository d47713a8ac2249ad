package history

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/waypoint/core/logger"
	"github.com/dmitrymomot/waypoint/core/navigation"
)

// Synchronizer writes committed navigations to a Backend and translates URLs
// between the router and the backend.
type Synchronizer struct {
	backend  Backend
	basePath string
	useHash  bool
	logger   *slog.Logger
}

// SyncOption configures a Synchronizer.
type SyncOption func(*Synchronizer)

// WithBasePath prefixes every backend URL with base.
func WithBasePath(base string) SyncOption {
	return func(s *Synchronizer) {
		s.basePath = strings.TrimRight(base, "/")
	}
}

// WithHash stores router URLs in the fragment of the backend URL.
func WithHash(enabled bool) SyncOption {
	return func(s *Synchronizer) {
		s.useHash = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SyncOption {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSynchronizer creates a synchronizer for backend.
func NewSynchronizer(backend Backend, opts ...SyncOption) (*Synchronizer, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	s := &Synchronizer{
		backend: backend,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Backend returns the wrapped backend.
func (s *Synchronizer) Backend() Backend { return s.backend }

// External maps a router URL to a backend URL.
func (s *Synchronizer) External(url string) string {
	url = strings.TrimPrefix(url, "/")
	if s.useHash {
		return s.basePath + "/#/" + url
	}
	return s.basePath + "/" + url
}

// Internal maps a backend URL to a router URL.
func (s *Synchronizer) Internal(raw string) (string, error) {
	if s.basePath != "" {
		rest, ok := strings.CutPrefix(raw, s.basePath)
		if !ok || (rest != "" && !strings.HasPrefix(rest, "/") && !strings.HasPrefix(rest, "#") && !strings.HasPrefix(rest, "?")) {
			return "", fmt.Errorf("%w: %q", ErrOutsideOfBase, raw)
		}
		raw = rest
	}
	if s.useHash {
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[i+1:]
		} else {
			raw = ""
		}
	}
	return strings.TrimPrefix(raw, "/"), nil
}

// CurrentURL returns the router URL the backend currently shows.
func (s *Synchronizer) CurrentURL(ctx context.Context) (string, error) {
	raw, err := s.backend.URL(ctx)
	if err != nil {
		return "", fmt.Errorf("read history url: %w", err)
	}
	return s.Internal(raw)
}

// Commit writes url for a committed navigation. It reports whether the
// backend was written: navigations triggered by the backend and navigations
// with HistoryNone are skipped.
func (s *Synchronizer) Commit(ctx context.Context, nav *navigation.Navigation, url, title string) (bool, error) {
	if nav.Trigger.FromBrowser() || nav.Options.HistoryStrategy == navigation.HistoryNone {
		return false, nil
	}

	external := s.External(url)
	var err error
	if nav.Options.HistoryStrategy == navigation.HistoryReplace {
		err = s.backend.Replace(ctx, external, title)
	} else {
		err = s.backend.Push(ctx, external, title)
	}
	if err != nil {
		return false, fmt.Errorf("write history %s: %w", nav.Options.HistoryStrategy, err)
	}

	s.logger.DebugContext(ctx, "history written",
		logger.URL(external),
		slog.String("strategy", nav.Options.HistoryStrategy.String()))
	return true, nil
}

// Subscribe forwards backend pop events to fn with router URLs. Events for
// URLs outside of the base path are dropped.
func (s *Synchronizer) Subscribe(fn func(PopEvent)) func() {
	return s.backend.Subscribe(func(ev PopEvent) {
		internal, err := s.Internal(ev.URL)
		if err != nil {
			s.logger.Warn("pop event ignored", logger.URL(ev.URL), logger.Error(err))
			return
		}
		ev.URL = internal
		fn(ev)
	})
}
