package redis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/waypoint/core/history"
	"github.com/dmitrymomot/waypoint/core/logger"
	"github.com/dmitrymomot/waypoint/core/navigation"
)

const (
	DefaultKeyPrefix     = "waypoint:history"
	DefaultTTL           = 24 * time.Hour
	DefaultScanBatchSize = 1000
)

// KEYS[1] entries list, KEYS[2] index. ARGV[1] initial entry, ARGV[2] ttl ms.
var initScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	redis.call('RPUSH', KEYS[1], ARGV[1])
	redis.call('SET', KEYS[2], 0)
end
if tonumber(ARGV[2]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	redis.call('PEXPIRE', KEYS[2], ARGV[2])
end
return redis.call('GET', KEYS[2])
`)

var currentScript = redis.NewScript(`
local idx = tonumber(redis.call('GET', KEYS[2]) or '0')
return redis.call('LINDEX', KEYS[1], idx)
`)

// Drops every entry after the current one and appends ARGV[1].
var pushScript = redis.NewScript(`
local idx = tonumber(redis.call('GET', KEYS[2]) or '-1')
if idx < 0 then
	redis.call('DEL', KEYS[1])
else
	redis.call('LTRIM', KEYS[1], 0, idx)
end
redis.call('RPUSH', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], idx + 1)
if tonumber(ARGV[2]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	redis.call('PEXPIRE', KEYS[2], ARGV[2])
end
return idx + 1
`)

var replaceScript = redis.NewScript(`
local idx = tonumber(redis.call('GET', KEYS[2]) or '0')
redis.call('LSET', KEYS[1], idx, ARGV[1])
return idx
`)

// Moves the index by ARGV[1] and returns the entry at the new position, or
// nil when the target is out of range.
var goScript = redis.NewScript(`
local delta = tonumber(ARGV[1])
local idx = tonumber(redis.call('GET', KEYS[2]) or '0')
local target = idx + delta
if delta == 0 or target < 0 or target >= redis.call('LLEN', KEYS[1]) then
	return false
end
redis.call('SET', KEYS[2], target)
return redis.call('LINDEX', KEYS[1], target)
`)

// Appends a new entry whose URL is the current one with its fragment
// replaced by ARGV[1].
var hashScript = redis.NewScript(`
local idx = tonumber(redis.call('GET', KEYS[2]) or '0')
local cur = cjson.decode(redis.call('LINDEX', KEYS[1], idx))
local url = cur.url
local at = string.find(url, '#', 1, true)
if at then
	url = string.sub(url, 1, at - 1)
end
url = url .. '#' .. ARGV[1]
redis.call('LTRIM', KEYS[1], 0, idx)
redis.call('RPUSH', KEYS[1], cjson.encode({url = url}))
redis.call('SET', KEYS[2], idx + 1)
return url
`)

// popMessage is what Go and SetHash publish so backends in other processes
// bound to the same session can notify their own subscribers.
type popMessage struct {
	Origin  string `json:"origin"`
	Trigger uint8  `json:"trigger"`
	URL     string `json:"url"`
}

// Backend stores a history stack in redis under one session key: a list of
// JSON encoded entries and an index pointing at the current one.
type Backend struct {
	client    redis.UniversalClient
	session   string
	prefix    string
	ttl       time.Duration
	batchSize int
	origin    string
	logger    *slog.Logger

	mu      sync.Mutex
	subs    map[int]func(history.PopEvent)
	nextSub int
}

var _ history.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithKeyPrefix sets the prefix of every key the backend touches.
func WithKeyPrefix(prefix string) Option {
	return func(b *Backend) {
		b.prefix = strings.TrimSuffix(prefix, ":")
	}
}

// WithTTL sets how long an idle session is kept. Zero keeps it forever.
func WithTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		b.ttl = ttl
	}
}

// WithScanBatchSize sets the COUNT hint used by Sessions.
func WithScanBatchSize(n int) Option {
	return func(b *Backend) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// New binds a backend to session. When the session does not exist yet its
// single entry is initialURL.
func New(ctx context.Context, client redis.UniversalClient, session, initialURL string, opts ...Option) (*Backend, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if session == "" {
		return nil, ErrEmptySession
	}

	b := &Backend{
		client:    client,
		session:   session,
		prefix:    DefaultKeyPrefix,
		ttl:       DefaultTTL,
		batchSize: DefaultScanBatchSize,
		origin:    uuid.NewString(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		subs:      make(map[int]func(history.PopEvent)),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(logger.Component("history.redis"), slog.String("session", session))

	entry, err := encodeEntry(history.Entry{URL: initialURL})
	if err != nil {
		return nil, err
	}
	if err := initScript.Run(ctx, b.client, b.keys(), entry, b.ttl.Milliseconds()).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Join(ErrBackendFailure, err)
	}
	return b, nil
}

// Session returns the session key the backend is bound to.
func (b *Backend) Session() string { return b.session }

func (b *Backend) URL(ctx context.Context) (string, error) {
	raw, err := currentScript.Run(ctx, b.client, b.keys()).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", history.ErrNoEntry
		}
		return "", errors.Join(ErrBackendFailure, err)
	}
	e, err := decodeEntry(raw)
	if err != nil {
		return "", err
	}
	return e.URL, nil
}

// Push drops every entry after the current one and appends url.
func (b *Backend) Push(ctx context.Context, url, title string) error {
	entry, err := encodeEntry(history.Entry{URL: url, Title: title})
	if err != nil {
		return err
	}
	if err := pushScript.Run(ctx, b.client, b.keys(), entry, b.ttl.Milliseconds()).Err(); err != nil {
		return errors.Join(ErrBackendFailure, err)
	}
	return nil
}

func (b *Backend) Replace(ctx context.Context, url, title string) error {
	entry, err := encodeEntry(history.Entry{URL: url, Title: title})
	if err != nil {
		return err
	}
	if err := replaceScript.Run(ctx, b.client, b.keys(), entry).Err(); err != nil {
		return errors.Join(ErrBackendFailure, err)
	}
	return nil
}

func (b *Backend) Subscribe(fn func(history.PopEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Back moves one entry back and emits a popstate event.
func (b *Backend) Back(ctx context.Context) error { return b.Go(ctx, -1) }

// Forward moves one entry forward and emits a popstate event.
func (b *Backend) Forward(ctx context.Context) error { return b.Go(ctx, 1) }

// Go moves delta entries, notifies local subscribers and publishes the move
// for other processes bound to the same session.
func (b *Backend) Go(ctx context.Context, delta int) error {
	raw, err := goScript.Run(ctx, b.client, b.keys(), delta).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return history.ErrNoEntry
		}
		return errors.Join(ErrBackendFailure, err)
	}
	e, err := decodeEntry(raw)
	if err != nil {
		return err
	}

	b.dispatch(ctx, history.PopEvent{Trigger: navigation.TriggerPopState, URL: e.URL})
	return nil
}

// SetHash replaces the fragment of the current URL with a new entry and
// emits a hashchange event.
func (b *Backend) SetHash(ctx context.Context, hash string) error {
	url, err := hashScript.Run(ctx, b.client, b.keys(), strings.TrimPrefix(hash, "#")).Text()
	if err != nil {
		return errors.Join(ErrBackendFailure, err)
	}

	b.dispatch(ctx, history.PopEvent{Trigger: navigation.TriggerHashChange, URL: url})
	return nil
}

// Entries returns the stored entries and the current index.
func (b *Backend) Entries(ctx context.Context) ([]history.Entry, int, error) {
	var (
		list *redis.StringSliceCmd
		idx  *redis.StringCmd
	)
	_, err := b.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		list = p.LRange(ctx, b.entriesKey(), 0, -1)
		idx = p.Get(ctx, b.indexKey())
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, errors.Join(ErrBackendFailure, err)
	}

	raws, err := list.Result()
	if err != nil {
		return nil, 0, errors.Join(ErrBackendFailure, err)
	}
	entries := make([]history.Entry, 0, len(raws))
	for _, raw := range raws {
		e, err := decodeEntry(raw)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}

	index, err := idx.Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, errors.Join(ErrBackendFailure, err)
	}
	return entries, index, nil
}

// Clear removes the session from redis.
func (b *Backend) Clear(ctx context.Context) error {
	if err := b.client.Del(ctx, b.keys()...).Err(); err != nil {
		return errors.Join(ErrBackendFailure, err)
	}
	return nil
}

// Sessions lists every session stored under the backend's key prefix.
func (b *Backend) Sessions(ctx context.Context) ([]string, error) {
	var (
		sessions []string
		cursor   uint64
	)
	suffix := ":entries"
	match := b.prefix + ":*" + suffix
	for {
		keys, next, err := b.client.Scan(ctx, cursor, match, int64(b.batchSize)).Result()
		if err != nil {
			return nil, errors.Join(ErrBackendFailure, err)
		}
		for _, k := range keys {
			k = strings.TrimPrefix(k, b.prefix+":")
			sessions = append(sessions, strings.TrimSuffix(k, suffix))
		}
		if next == 0 {
			return sessions, nil
		}
		cursor = next
	}
}

// Listen forwards pop events published by other processes bound to the same
// session to local subscribers. It blocks until ctx is done.
func (b *Backend) Listen(ctx context.Context) error {
	ps := b.client.Subscribe(ctx, b.channel())
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return errors.Join(ErrBackendFailure, err)
	}

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var m popMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				b.logger.WarnContext(ctx, "dropping malformed pop message", logger.Error(err))
				continue
			}
			if m.Origin == b.origin {
				continue
			}
			b.emit(history.PopEvent{Trigger: navigation.Trigger(m.Trigger), URL: m.URL})
		}
	}
}

func (b *Backend) dispatch(ctx context.Context, ev history.PopEvent) {
	b.emit(ev)

	payload, err := json.Marshal(popMessage{Origin: b.origin, Trigger: uint8(ev.Trigger), URL: ev.URL})
	if err != nil {
		return
	}
	if err := b.client.Publish(ctx, b.channel(), payload).Err(); err != nil {
		b.logger.WarnContext(ctx, "failed to publish pop event",
			logger.URL(ev.URL),
			logger.Error(err),
		)
	}
}

func (b *Backend) emit(ev history.PopEvent) {
	b.mu.Lock()
	subs := make([]func(history.PopEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func (b *Backend) entriesKey() string { return b.prefix + ":" + b.session + ":entries" }
func (b *Backend) indexKey() string   { return b.prefix + ":" + b.session + ":index" }
func (b *Backend) channel() string    { return b.prefix + ":" + b.session + ":pop" }

func (b *Backend) keys() []string {
	return []string{b.entriesKey(), b.indexKey()}
}

func encodeEntry(e history.Entry) (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", errors.Join(ErrCorruptedEntry, err)
	}
	return string(data), nil
}

func decodeEntry(raw string) (history.Entry, error) {
	var e history.Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return history.Entry{}, errors.Join(ErrCorruptedEntry, err)
	}
	return e, nil
}
