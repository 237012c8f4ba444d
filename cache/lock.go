package cache

import "sync"

// KeyLock serializes critical sections per key. Waiters for the same key
// run strictly in arrival order; different keys proceed fully in parallel.
// The lock is non-reentrant: a critical section must not call Do with its
// own key.
type KeyLock struct {
	mu      sync.Mutex
	held    map[string]bool
	waiters map[string][]chan struct{}
}

// NewKeyLock creates an empty key lock registry.
func NewKeyLock() *KeyLock {
	return &KeyLock{
		held:    make(map[string]bool),
		waiters: make(map[string][]chan struct{}),
	}
}

// Do runs fn while holding the exclusive lock for key.
func (l *KeyLock) Do(key string, fn func()) {
	l.acquire(key)
	defer l.release(key)
	fn()
}

func (l *KeyLock) acquire(key string) {
	l.mu.Lock()
	if !l.held[key] {
		l.held[key] = true
		l.mu.Unlock()
		return
	}

	ch := make(chan struct{})
	l.waiters[key] = append(l.waiters[key], ch)
	l.mu.Unlock()
	<-ch
}

func (l *KeyLock) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	queue := l.waiters[key]
	if len(queue) == 0 {
		delete(l.held, key)
		delete(l.waiters, key)
		return
	}

	// Hand the lock to the oldest waiter; held stays true.
	next := queue[0]
	if len(queue) == 1 {
		delete(l.waiters, key)
	} else {
		l.waiters[key] = queue[1:]
	}
	close(next)
}
