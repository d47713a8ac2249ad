package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.uber.org/atomic"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/waypoint/core/event"
	"github.com/dmitrymomot/waypoint/core/logger"
)

// Kind tells which router event produced a journal entry.
type Kind string

const (
	KindNavigationEnd   Kind = "navigation_end"
	KindLocationChanged Kind = "location_changed"
)

// Entry is one journal row.
type Entry struct {
	ID            int64         `json:"id"`
	EventID       string        `json:"event_id,omitempty"`
	Kind          Kind          `json:"kind"`
	NavigationID  int64         `json:"navigation_id,omitempty"`
	CorrelationID string        `json:"correlation_id,omitempty"`
	Trigger       string        `json:"trigger"`
	URL           string        `json:"url"`
	Title         string        `json:"title,omitempty"`
	Duration      time.Duration `json:"duration,omitempty"`
	RecordedAt    time.Time     `json:"recorded_at"`
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Kind  Kind
	URL   string
	Since time.Time
	// Limit caps the number of rows, newest first. Zero means no limit.
	Limit int
}

// Journal records committed navigations in a SQLite database.
type Journal struct {
	db          *sql.DB
	logger      *slog.Logger
	busyTimeout time.Duration
	retention   time.Duration
	now         func() time.Time
	closed      atomic.Bool
}

// Option configures a Journal.
type Option func(*Journal)

func WithLogger(l *slog.Logger) Option {
	return func(j *Journal) {
		if l != nil {
			j.logger = l
		}
	}
}

// WithBusyTimeout sets how long a write waits for a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(j *Journal) {
		j.busyTimeout = d
	}
}

// WithRetention sets the age after which PruneExpired removes entries.
func WithRetention(d time.Duration) Option {
	return func(j *Journal) {
		j.retention = d
	}
}

// WithClock replaces time.Now for entries recorded outside of event delivery.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) {
		if now != nil {
			j.now = now
		}
	}
}

// Open opens or creates the journal database at path. ":memory:" keeps it
// in memory for the life of the journal.
func Open(ctx context.Context, path string, opts ...Option) (*Journal, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	j := &Journal{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		busyTimeout: 5 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	j.logger = j.logger.With(logger.Component("journal.sqlite"))

	db, err := sql.Open("sqlite", dsn(path, j.busyTimeout))
	if err != nil {
		return nil, errors.Join(ErrOpenFailed, err)
	}
	// A single connection serialises writers and keeps ":memory:" databases
	// alive between statements.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpenFailed, err)
	}

	j.db = db
	if err := j.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrMigrateFailed, err)
	}
	return j, nil
}

// NewFromConfig opens the journal described by cfg.
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (*Journal, error) {
	return Open(ctx, cfg.Path, append(cfg.Options(), opts...)...)
}

func dsn(path string, busy time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	if path != ":memory:" {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

func (j *Journal) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS navigations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id TEXT,
		kind TEXT NOT NULL,
		navigation_id INTEGER NOT NULL DEFAULT 0,
		correlation_id TEXT NOT NULL DEFAULT '',
		trigger_name TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		duration_ns INTEGER NOT NULL DEFAULT 0,
		recorded_at INTEGER NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_navigations_event ON navigations(event_id) WHERE event_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_navigations_recorded ON navigations(recorded_at);
	CREATE INDEX IF NOT EXISTS idx_navigations_url ON navigations(url);
	`

	_, err := j.db.ExecContext(ctx, schema)
	return err
}

// Record stores e. A zero RecordedAt is set to the current time. Entries
// carrying an EventID already recorded are ignored, so redelivered events
// are written once.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if j.closed.Load() {
		return ErrJournalClosed
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = j.now()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO navigations (event_id, kind, navigation_id, correlation_id, trigger_name, url, title, duration_ns, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, nullable(e.EventID), string(e.Kind), e.NavigationID, e.CorrelationID, e.Trigger, e.URL, e.Title,
		int64(e.Duration), e.RecordedAt.UnixNano())
	if err != nil {
		return errors.Join(ErrRecordFailed, err)
	}
	return nil
}

// Handlers returns event handlers that record NavigationEnd and
// LocationChanged events. Subscribe them to the bus the router publishes to:
//
//	bus.Subscribe(journal.Handlers()...)
func (j *Journal) Handlers() []event.Handler {
	return []event.Handler{
		event.NewHandlerFunc(func(ctx context.Context, e event.NavigationEnd) error {
			return j.recordEvent(ctx, Entry{
				Kind:          KindNavigationEnd,
				NavigationID:  e.NavigationID,
				CorrelationID: e.CorrelationID,
				Trigger:       e.Trigger,
				URL:           e.URL,
				Title:         e.Title,
				Duration:      e.Duration,
			})
		}),
		event.NewHandlerFunc(func(ctx context.Context, e event.LocationChanged) error {
			return j.recordEvent(ctx, Entry{
				Kind:    KindLocationChanged,
				Trigger: e.Trigger,
				URL:     e.URL,
			})
		}),
	}
}

func (j *Journal) recordEvent(ctx context.Context, e Entry) error {
	e.EventID = event.EventID(ctx)
	e.RecordedAt = event.EventTime(ctx)
	if err := j.Record(ctx, e); err != nil {
		j.logger.ErrorContext(ctx, "failed to record navigation",
			logger.Event(string(e.Kind)),
			logger.URL(e.URL),
			logger.Error(err),
		)
		return err
	}
	return nil
}

// List returns entries matching f, newest first.
func (j *Journal) List(ctx context.Context, f Filter) ([]Entry, error) {
	if j.closed.Load() {
		return nil, ErrJournalClosed
	}

	var (
		where []string
		args  []any
	)
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.URL != "" {
		where = append(where, "url = ?")
		args = append(args, f.URL)
	}
	if !f.Since.IsZero() {
		where = append(where, "recorded_at >= ?")
		args = append(args, f.Since.UnixNano())
	}

	query := `SELECT id, event_id, kind, navigation_id, correlation_id, trigger_name, url, title, duration_ns, recorded_at FROM navigations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY recorded_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.Join(ErrQueryFailed, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return entries, nil
}

// Last returns the newest entry of kind, or of any kind when kind is empty.
func (j *Journal) Last(ctx context.Context, kind Kind) (Entry, error) {
	entries, err := j.List(ctx, Filter{Kind: kind, Limit: 1})
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, ErrEntryNotFound
	}
	return entries[0], nil
}

// Prune deletes entries recorded before t and returns how many were removed.
func (j *Journal) Prune(ctx context.Context, before time.Time) (int64, error) {
	if j.closed.Load() {
		return 0, ErrJournalClosed
	}

	res, err := j.db.ExecContext(ctx, `DELETE FROM navigations WHERE recorded_at < ?`, before.UnixNano())
	if err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}
	if n > 0 {
		j.logger.DebugContext(ctx, "pruned journal", logger.Count("removed", int(n)))
	}
	return n, nil
}

// PruneExpired removes entries older than the retention period. It is a
// no-op when no retention is configured.
func (j *Journal) PruneExpired(ctx context.Context) (int64, error) {
	if j.retention <= 0 {
		return 0, nil
	}
	return j.Prune(ctx, j.now().Add(-j.retention))
}

// Ping checks the database connection. It can serve as a readiness check.
func (j *Journal) Ping(ctx context.Context) error {
	if j.closed.Load() {
		return ErrJournalClosed
	}
	return j.db.PingContext(ctx)
}

// Close closes the database. It is safe to call more than once.
func (j *Journal) Close() error {
	if !j.closed.CompareAndSwap(false, true) {
		return nil
	}
	return j.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e        Entry
		eventID  sql.NullString
		kind     string
		duration int64
		recorded int64
	)
	if err := s.Scan(&e.ID, &eventID, &kind, &e.NavigationID, &e.CorrelationID, &e.Trigger,
		&e.URL, &e.Title, &duration, &recorded); err != nil {
		return Entry{}, err
	}
	e.EventID = eventID.String
	e.Kind = Kind(kind)
	e.Duration = time.Duration(duration)
	e.RecordedAt = time.Unix(0, recorded)
	return e, nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
