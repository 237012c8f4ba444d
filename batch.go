package lingocache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ZaguanLabs/lingocache/cache"
)

// outcome is what a waiter eventually receives for its text.
type outcome struct {
	value string
	err   error
}

// waiter is one caller's completion handle. Buffered so a flush never
// blocks on a caller that stopped listening.
type waiter chan outcome

// batch is the set of distinct pending texts collected for one partition
// between flushes, each with the waiter list of every caller that asked for
// it (duplicates collapse structurally onto the same entry).
type batch struct {
	partition Partition
	entries   map[string][]waiter
	timer     *time.Timer
}

// batcher coalesces cache misses per partition. At most one batch per
// partition is collecting at any instant; detaching it before the generator
// call lets a fresh batch collect while the old one flushes.
type batcher struct {
	gen         Generator
	cache       *cache.Cache
	size        int
	delay       time.Duration
	maxExamples int
	sourceLang  string

	// flushing serializes flushes per partition: a detached batch and
	// its successor may collect concurrently, but their generator calls
	// never overlap.
	flushing *cache.KeyLock

	mu   sync.Mutex
	open map[string]*batch
}

func newBatcher(gen Generator, c *cache.Cache, size int, delay time.Duration, maxExamples int, sourceLang string) *batcher {
	return &batcher{
		gen:         gen,
		cache:       c,
		size:        size,
		delay:       delay,
		maxExamples: maxExamples,
		sourceLang:  sourceLang,
		flushing:    cache.NewKeyLock(),
		open:        make(map[string]*batch),
	}
}

// request joins the partition's collecting batch (piggybacking onto an
// existing entry for the same text, or opening a new one) and blocks until
// the text resolves or rejects. Callers cannot observe batch boundaries:
// the returned value or error is always specific to their text.
//
// A caller may stop waiting via ctx; the batch still settles and persists
// for the remaining waiters.
func (b *batcher) request(ctx context.Context, p Partition, text string) (string, error) {
	w := make(waiter, 1)
	key := p.Path()

	b.mu.Lock()
	bt := b.open[key]
	if bt == nil {
		bt = &batch{
			partition: p,
			entries:   make(map[string][]waiter),
		}
		b.open[key] = bt
		bt.timer = time.AfterFunc(b.delay, func() { b.flushTimed(key, bt) })
	}
	bt.entries[text] = append(bt.entries[text], w)

	if len(bt.entries) >= b.size {
		b.detachLocked(key, bt)
		b.mu.Unlock()
		go b.flush(bt)
	} else {
		b.mu.Unlock()
	}

	select {
	case out := <-w:
		return out.value, out.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// detachLocked seals the collecting batch: it leaves the open registry so
// new requests immediately begin a fresh batch, and its timer is disarmed
// to avoid a redundant flush later. Callers hold b.mu.
func (b *batcher) detachLocked(key string, bt *batch) {
	delete(b.open, key)
	if bt.timer != nil {
		bt.timer.Stop()
	}
}

// flushTimed is the quiescence-timer path. If the batch was already flushed
// by the size threshold, the registry no longer points at it and the timer
// firing is a no-op.
func (b *batcher) flushTimed(key string, bt *batch) {
	b.mu.Lock()
	if b.open[key] != bt {
		b.mu.Unlock()
		return
	}
	delete(b.open, key)
	b.mu.Unlock()

	b.flush(bt)
}

// flush submits a detached batch to the generator exactly once, persists
// the returned pairs in one write, and settles every waiter. Nothing is
// retried here; retry policy belongs to the generator collaborator.
func (b *batcher) flush(bt *batch) {
	if len(bt.entries) == 0 {
		return
	}
	b.flushing.Do(bt.partition.Path(), func() { b.submit(bt) })
}

func (b *batcher) submit(bt *batch) {
	ctx := context.Background()

	texts := make([]string, 0, len(bt.entries))
	for text := range bt.entries {
		texts = append(texts, text)
	}
	sort.Strings(texts)

	// Example selection is advisory: a snapshot failure just means the
	// generator gets no consistency context.
	var examples map[string]string
	if snapshot, err := b.cache.Snapshot(ctx, bt.partition); err == nil {
		examples = SelectExamples(snapshot, b.maxExamples)
	}

	result, err := b.gen.Generate(ctx, GenerateRequest{
		Texts:      texts,
		TargetLang: bt.partition.Lang,
		SourceLang: b.sourceLang,
		Context:    bt.partition.Context,
		Examples:   examples,
	})
	if err != nil {
		bt.fail(err)
		return
	}

	if len(result) > 0 {
		if err := b.cache.PutBatch(ctx, bt.partition, result); err != nil {
			bt.fail(err)
			return
		}
	}

	for text, waiters := range bt.entries {
		out := outcome{}
		if value, ok := result[text]; ok {
			out.value = value
		} else {
			out.err = &MissingTranslationError{Text: text, Lang: bt.partition.Lang}
		}
		for _, w := range waiters {
			w <- out
		}
	}
}

// fail rejects every waiter for every text in the batch with the same error.
func (bt *batch) fail(err error) {
	for _, waiters := range bt.entries {
		for _, w := range waiters {
			w <- outcome{err: err}
		}
	}
}
