// Package feed implements the in-process per-query update feed: an
// append-only buffer per query, consumed through integer cursors. It is
// best-effort by design: the buffer does not survive a restart and is not a
// substitute for the durable result store.
package feed

import (
	"sync"
	"time"
)

// Entry is one appended update for a query.
type Entry struct {
	ObservationID string    `json:"observation_id"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	SourceDomain  string    `json:"source_domain"`
	AppendedAt    time.Time `json:"appended_at"`
}

type buffer struct {
	mu      sync.Mutex
	entries []Entry
}

// Feed holds one append-only buffer per query. Appends for the same query
// are serialized by the buffer's own lock; different queries are fully
// independent.
type Feed struct {
	mu      sync.RWMutex
	buffers map[string]*buffer
}

// New creates an empty Feed.
func New() *Feed {
	return &Feed{buffers: make(map[string]*buffer)}
}

func (f *Feed) buffer(queryID string) *buffer {
	f.mu.RLock()
	b, ok := f.buffers[queryID]
	f.mu.RUnlock()
	if ok {
		return b
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok = f.buffers[queryID]; ok {
		return b
	}
	b = &buffer{}
	f.buffers[queryID] = b
	return b
}

// Append adds an entry at the tail of the query's buffer.
func (f *Feed) Append(queryID string, e Entry) {
	b := f.buffer(queryID)
	b.mu.Lock()
	b.entries = append(b.entries, e)
	b.mu.Unlock()
}

// Since returns all entries beyond the cursor in FIFO order and the advanced
// cursor. A cursor at or past the tail yields no entries; nothing is ever
// redelivered to a consumer that advances its cursor.
func (f *Feed) Since(queryID string, cursor int) ([]Entry, int) {
	if cursor < 0 {
		cursor = 0
	}

	f.mu.RLock()
	b, ok := f.buffers[queryID]
	f.mu.RUnlock()
	if !ok {
		return nil, cursor
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if cursor >= len(b.entries) {
		return nil, cursor
	}
	out := make([]Entry, len(b.entries)-cursor)
	copy(out, b.entries[cursor:])
	return out, len(b.entries)
}

// Len returns the number of entries appended so far for a query.
func (f *Feed) Len(queryID string) int {
	f.mu.RLock()
	b, ok := f.buffers[queryID]
	f.mu.RUnlock()
	if !ok {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
