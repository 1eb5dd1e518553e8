// Package dedupe tracks recently submitted keys so duplicate submissions can
// be rejected before they reach persistence.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 50_000

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a failed submission can be retried.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper keeps at most maxSize keys and evicts the oldest first.
// maxSize <= 0 keeps every key.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]uint64 // key -> insertion sequence
	order   []entry           // insertion order, may hold stale entries
	seq     uint64
	maxSize int
}

type entry struct {
	key string
	seq uint64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]uint64)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 {
		for len(d.seen) >= d.maxSize {
			d.evictOldest()
		}
	}
	d.seq++
	d.seen[key] = d.seq
	d.order = append(d.order, entry{key: key, seq: d.seq})
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// The matching order entry becomes stale and is skipped on eviction.
	delete(d.seen, key)
	d.compact()
}

// evictOldest drops the oldest live key. Caller holds d.mu.
func (d *inMemoryDeduper) evictOldest() {
	for len(d.order) > 0 {
		head := d.order[0]
		d.order = d.order[1:]
		if seq, ok := d.seen[head.key]; ok && seq == head.seq {
			delete(d.seen, head.key)
			return
		}
	}
}

// compact rebuilds order once stale entries dominate it. Caller holds d.mu.
func (d *inMemoryDeduper) compact() {
	if len(d.order) <= 2*len(d.seen)+16 {
		return
	}
	live := make([]entry, 0, len(d.seen))
	for _, e := range d.order {
		if seq, ok := d.seen[e.key]; ok && seq == e.seq {
			live = append(live, e)
		}
	}
	d.order = live
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
