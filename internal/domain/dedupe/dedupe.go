// Package dedupe tracks snapshot job keys so that one subject is computed at
// most once per day.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// DefaultMaxSize bounds the number of remembered keys.
const DefaultMaxSize = 50000

// Deduper records seen job keys.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// if not, atomically.
	SeenAndRecord(ctx context.Context, key string) bool
	// Unrecord forgets key so that it can be retried, e.g. after the queue
	// rejected the job.
	Unrecord(ctx context.Context, key string)
	Size() int64
}

// inMemoryDeduper remembers up to maxSize keys, evicting the oldest first.
// A maxSize of zero or less means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	keys    map[string]*list.Element
	order   *list.List // front is newest
	maxSize int
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.keys = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.keys[key]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.keys) >= d.maxSize {
		if oldest := d.order.Back(); oldest != nil {
			delete(d.keys, d.order.Remove(oldest).(string))
		}
	}
	d.keys[key] = d.order.PushFront(key)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.keys[key]; ok {
		d.order.Remove(e)
		delete(d.keys, key)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.keys))
}
