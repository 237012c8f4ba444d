// Package cache materializes durable partitions in memory and applies
// batched updates under per-partition locking.
package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/ZaguanLabs/lingocache/store"
)

// Entry is one source→translation pair in insertion order.
type Entry struct {
	Source string
	Target string
}

// Cache lazily loads each partition from the durable store on first touch
// and serves point lookups from memory afterwards. All writes persist the
// whole partition back through the store and commit to memory only after
// the write succeeds, so memory and disk never diverge.
type Cache struct {
	store store.Store
	locks *KeyLock

	mu    sync.Mutex
	parts map[string]*partition
}

// partition holds one materialized partition. ready is closed once the
// initial load settles; err is sticky, so a corrupt partition keeps failing
// until the underlying file is fixed and the process state reset.
type partition struct {
	ready chan struct{}
	err   error

	mu     sync.RWMutex
	values map[string]string
	order  []string
}

// New creates a cache layer over the given durable store.
func New(s store.Store) *Cache {
	return &Cache{
		store: s,
		locks: NewKeyLock(),
		parts: make(map[string]*partition),
	}
}

// acquire returns the materialized partition, loading it on first touch.
// Concurrent first touches issue exactly one store Load; later callers wait
// for it and reuse the result.
func (c *Cache) acquire(ctx context.Context, p store.Partition) *partition {
	key := p.Path()

	c.mu.Lock()
	part, ok := c.parts[key]
	if ok {
		c.mu.Unlock()
		<-part.ready
		return part
	}

	part = &partition{ready: make(chan struct{})}
	c.parts[key] = part
	c.mu.Unlock()

	values, order, err := c.store.Load(ctx, p)
	part.values = values
	part.order = order
	part.err = err
	close(part.ready)
	return part
}

// Get returns the current value for text, or ok=false when absent.
func (c *Cache) Get(ctx context.Context, p store.Partition, text string) (string, bool, error) {
	part := c.acquire(ctx, p)
	if part.err != nil {
		return "", false, part.err
	}

	part.mu.RLock()
	value, ok := part.values[text]
	part.mu.RUnlock()
	return value, ok, nil
}

// Put upserts one entry and persists the whole partition.
func (c *Cache) Put(ctx context.Context, p store.Partition, text, value string) error {
	return c.PutBatch(ctx, p, map[string]string{text: value})
}

// PutBatch merges entries into the partition (incoming wins on collision)
// and persists once, regardless of how many entries are merged. Writes for
// the same partition are serialized through the partition lock, so two
// concurrent batches end up as the union of their entries.
func (c *Cache) PutBatch(ctx context.Context, p store.Partition, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	var err error
	c.locks.Do(p.Path(), func() {
		part := c.acquire(ctx, p)
		if part.err != nil {
			err = part.err
			return
		}

		part.mu.RLock()
		values := make(map[string]string, len(part.values)+len(entries))
		for k, v := range part.values {
			values[k] = v
		}
		order := append([]string(nil), part.order...)
		part.mu.RUnlock()

		// New keys append in sorted order so persisted output is
		// deterministic for a given batch.
		added := make([]string, 0, len(entries))
		for text, value := range entries {
			if _, exists := values[text]; !exists {
				added = append(added, text)
			}
			values[text] = value
		}
		sort.Strings(added)
		order = append(order, added...)

		if werr := c.store.Save(ctx, p, values, order); werr != nil {
			err = werr
			return
		}

		part.mu.Lock()
		part.values = values
		part.order = order
		part.mu.Unlock()
	})
	return err
}

// GetAll returns a defensive copy of the partition's current entries.
func (c *Cache) GetAll(ctx context.Context, p store.Partition) (map[string]string, error) {
	part := c.acquire(ctx, p)
	if part.err != nil {
		return nil, part.err
	}

	part.mu.RLock()
	defer part.mu.RUnlock()

	out := make(map[string]string, len(part.values))
	for k, v := range part.values {
		out[k] = v
	}
	return out, nil
}

// Snapshot returns the partition's entries in insertion order. The on-disk
// key order, as read back, is the baseline; later upserts append.
func (c *Cache) Snapshot(ctx context.Context, p store.Partition) ([]Entry, error) {
	part := c.acquire(ctx, p)
	if part.err != nil {
		return nil, part.err
	}

	part.mu.RLock()
	defer part.mu.RUnlock()

	out := make([]Entry, 0, len(part.order))
	for _, source := range part.order {
		out = append(out, Entry{Source: source, Target: part.values[source]})
	}
	return out, nil
}
