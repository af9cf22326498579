package feed

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, price float64) Entry {
	return Entry{
		ObservationID: id,
		Price:         price,
		Currency:      "GBP",
		Origin:        "LHR",
		Destination:   "AMS",
		SourceDomain:  "kiwi.com",
		AppendedAt:    time.Now().UTC(),
	}
}

func TestFeed_FIFO(t *testing.T) {
	f := New()
	f.Append("q1", entry("a", 100))
	f.Append("q1", entry("b", 90))
	f.Append("q1", entry("c", 80))

	entries, cursor := f.Since("q1", 0)
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].ObservationID)
	assert.Equal(t, "b", entries[1].ObservationID)
	assert.Equal(t, "c", entries[2].ObservationID)
	assert.Equal(t, 3, cursor)
}

func TestFeed_CursorAdvance(t *testing.T) {
	f := New()
	f.Append("q1", entry("a", 100))
	f.Append("q1", entry("b", 90))

	entries, cursor := f.Since("q1", 0)
	require.Len(t, entries, 2)

	// Nothing is redelivered past the advanced cursor.
	entries, cursor = f.Since("q1", cursor)
	assert.Empty(t, entries)
	assert.Equal(t, 2, cursor)

	f.Append("q1", entry("c", 80))
	entries, cursor = f.Since("q1", cursor)
	require.Len(t, entries, 1)
	assert.Equal(t, "c", entries[0].ObservationID)
	assert.Equal(t, 3, cursor)
}

func TestFeed_UnknownQuery(t *testing.T) {
	f := New()
	entries, cursor := f.Since("missing", 0)
	assert.Empty(t, entries)
	assert.Equal(t, 0, cursor)
	assert.Equal(t, 0, f.Len("missing"))
}

func TestFeed_NegativeCursor(t *testing.T) {
	f := New()
	f.Append("q1", entry("a", 100))

	entries, cursor := f.Since("q1", -5)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, cursor)
}

func TestFeed_CursorPastTail(t *testing.T) {
	f := New()
	f.Append("q1", entry("a", 100))

	entries, cursor := f.Since("q1", 10)
	assert.Empty(t, entries)
	assert.Equal(t, 10, cursor)
}

func TestFeed_QueriesAreIndependent(t *testing.T) {
	f := New()
	f.Append("q1", entry("a", 100))
	f.Append("q2", entry("b", 90))

	entries, _ := f.Since("q1", 0)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ObservationID)

	entries, _ = f.Since("q2", 0)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].ObservationID)
}

func TestFeed_ConcurrentAppends(t *testing.T) {
	f := New()
	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				f.Append("q1", entry(fmt.Sprintf("%d-%d", w, i), 100))
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, f.Len("q1"))
	entries, cursor := f.Since("q1", 0)
	assert.Len(t, entries, writers*perWriter)
	assert.Equal(t, writers*perWriter, cursor)
}
