package history

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrymomot/waypoint/core/navigation"
)

// Entry is a stored history entry.
type Entry struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// MemoryBackend keeps history in memory. Subscribers are called
// synchronously, outside of the backend lock.
type MemoryBackend struct {
	mu      sync.Mutex
	entries []Entry
	index   int
	subs    map[int]func(PopEvent)
	nextSub int
}

// NewMemoryBackend creates a backend whose single entry is initialURL.
func NewMemoryBackend(initialURL string) *MemoryBackend {
	return &MemoryBackend{
		entries: []Entry{{URL: initialURL}},
		subs:    make(map[int]func(PopEvent)),
	}
}

func (b *MemoryBackend) URL(context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries[b.index].URL, nil
}

// Push drops every entry after the current one and appends url.
func (b *MemoryBackend) Push(ctx context.Context, url, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries[:b.index+1], Entry{URL: url, Title: title})
	b.index++
	return nil
}

func (b *MemoryBackend) Replace(ctx context.Context, url, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.index] = Entry{URL: url, Title: title}
	return nil
}

func (b *MemoryBackend) Subscribe(fn func(PopEvent)) func() {
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
func (b *MemoryBackend) Back() error { return b.Go(-1) }

// Forward moves one entry forward and emits a popstate event.
func (b *MemoryBackend) Forward() error { return b.Go(1) }

// Go moves delta entries and emits a popstate event.
func (b *MemoryBackend) Go(delta int) error {
	b.mu.Lock()
	target := b.index + delta
	if delta == 0 || target < 0 || target >= len(b.entries) {
		b.mu.Unlock()
		return ErrNoEntry
	}
	b.index = target
	url := b.entries[target].URL
	b.mu.Unlock()

	b.emit(PopEvent{Trigger: navigation.TriggerPopState, URL: url})
	return nil
}

// SetHash replaces the fragment of the current URL with a new entry and emits
// a hashchange event.
func (b *MemoryBackend) SetHash(hash string) {
	b.mu.Lock()
	url := b.entries[b.index].URL
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url = url[:i]
	}
	url += "#" + strings.TrimPrefix(hash, "#")
	b.entries = append(b.entries[:b.index+1], Entry{URL: url})
	b.index++
	b.mu.Unlock()

	b.emit(PopEvent{Trigger: navigation.TriggerHashChange, URL: url})
}

// Entries returns a copy of the stored entries and the current index.
func (b *MemoryBackend) Entries() ([]Entry, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Entry(nil), b.entries...), b.index
}

func (b *MemoryBackend) emit(ev PopEvent) {
	b.mu.Lock()
	subs := make([]func(PopEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}
