package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ZaguanLabs/lingocache/store"
)

// stubStore is an in-memory Store that counts calls and can fail on demand.
type stubStore struct {
	mu        sync.Mutex
	values    map[string]map[string]string
	order     map[string][]string
	loadCount int32
	saveCount int32
	loadErr   error
	saveErr   error
}

func newStubStore() *stubStore {
	return &stubStore{
		values: make(map[string]map[string]string),
		order:  make(map[string][]string),
	}
}

func (s *stubStore) Load(_ context.Context, p store.Partition) (map[string]string, []string, error) {
	atomic.AddInt32(&s.loadCount, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, nil, s.loadErr
	}

	values := make(map[string]string)
	for k, v := range s.values[p.Path()] {
		values[k] = v
	}
	order := append([]string(nil), s.order[p.Path()]...)
	return values, order, nil
}

func (s *stubStore) Save(_ context.Context, p store.Partition, values map[string]string, order []string) error {
	atomic.AddInt32(&s.saveCount, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}

	saved := make(map[string]string)
	for k, v := range values {
		saved[k] = v
	}
	s.values[p.Path()] = saved
	s.order[p.Path()] = append([]string(nil), order...)
	return nil
}

func (s *stubStore) loads() int32 { return atomic.LoadInt32(&s.loadCount) }
func (s *stubStore) saves() int32 { return atomic.LoadInt32(&s.saveCount) }

func testPartition() store.Partition {
	return store.Partition{Root: "locales", Lang: "fr_FR", Context: "default"}
}

func TestCache_PutGet(t *testing.T) {
	c := New(newStubStore())
	ctx := context.Background()
	p := testPartition()

	if err := c.Put(ctx, p, "Hello", "Bonjour"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		value, ok, err := c.Get(ctx, p, "Hello")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !ok || value != "Bonjour" {
			t.Errorf("Get = (%q, %v), want (\"Bonjour\", true)", value, ok)
		}
	}
}

func TestCache_GetAbsent(t *testing.T) {
	c := New(newStubStore())

	value, ok, err := c.Get(context.Background(), testPartition(), "Hello")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok || value != "" {
		t.Errorf("Get = (%q, %v), want absent", value, ok)
	}
}

func TestCache_LastWriteWins(t *testing.T) {
	c := New(newStubStore())
	ctx := context.Background()
	p := testPartition()

	if err := c.Put(ctx, p, "Hello", "Bonjour"); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(ctx, p, "Hello", "Salut"); err != nil {
		t.Fatal(err)
	}

	value, _, err := c.Get(ctx, p, "Hello")
	if err != nil {
		t.Fatal(err)
	}
	if value != "Salut" {
		t.Errorf("Get = %q, want %q", value, "Salut")
	}
}

func TestCache_AtMostOneLoad(t *testing.T) {
	s := newStubStore()
	c := New(s)
	p := testPartition()

	const callers = 20
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := c.Get(context.Background(), p, "Hello"); err != nil {
				t.Errorf("Get failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if s.loads() != 1 {
		t.Errorf("expected exactly 1 store load, got %d", s.loads())
	}
}

func TestCache_PutBatchSinglePersist(t *testing.T) {
	s := newStubStore()
	c := New(s)
	ctx := context.Background()
	p := testPartition()

	entries := map[string]string{
		"Hello":   "Bonjour",
		"Goodbye": "Au revoir",
		"Welcome": "Bienvenue",
	}
	if err := c.PutBatch(ctx, p, entries); err != nil {
		t.Fatalf("PutBatch failed: %v", err)
	}

	if s.saves() != 1 {
		t.Errorf("expected 1 store save for the whole batch, got %d", s.saves())
	}
	for k, want := range entries {
		value, ok, err := c.Get(ctx, p, k)
		if err != nil || !ok || value != want {
			t.Errorf("Get(%q) = (%q, %v, %v), want %q", k, value, ok, err, want)
		}
	}
}

func TestCache_PutBatchEmpty(t *testing.T) {
	s := newStubStore()
	c := New(s)

	if err := c.PutBatch(context.Background(), testPartition(), nil); err != nil {
		t.Fatalf("PutBatch(nil) failed: %v", err)
	}
	if s.saves() != 0 {
		t.Errorf("empty batch should not persist, got %d saves", s.saves())
	}
}

func TestCache_WriteFailureLeavesMemoryUnchanged(t *testing.T) {
	s := newStubStore()
	c := New(s)
	ctx := context.Background()
	p := testPartition()

	if err := c.Put(ctx, p, "Hello", "Bonjour"); err != nil {
		t.Fatal(err)
	}

	s.mu.Lock()
	s.saveErr = errors.New("disk full")
	s.mu.Unlock()

	err := c.Put(ctx, p, "Hello", "Salut")
	if err == nil {
		t.Fatal("expected write failure to propagate")
	}

	// The failed upsert must not be visible in memory.
	value, _, gerr := c.Get(ctx, p, "Hello")
	if gerr != nil {
		t.Fatal(gerr)
	}
	if value != "Bonjour" {
		t.Errorf("Get = %q after failed write, want %q", value, "Bonjour")
	}
}

func TestCache_CorruptLoadIsSticky(t *testing.T) {
	s := newStubStore()
	s.loadErr = &store.CorruptError{Path: "locales/fr_FR/default.json", Cause: errors.New("bad json")}
	c := New(s)
	ctx := context.Background()
	p := testPartition()

	for i := 0; i < 3; i++ {
		if _, _, err := c.Get(ctx, p, "Hello"); err == nil {
			t.Fatal("expected corrupt partition error")
		}
	}
	if err := c.Put(ctx, p, "Hello", "Bonjour"); err == nil {
		t.Fatal("Put on a corrupt partition should fail")
	}

	// One failed load, remembered; no re-read per call.
	if s.loads() != 1 {
		t.Errorf("expected 1 load, got %d", s.loads())
	}
}

func TestCache_GetAllDefensiveCopy(t *testing.T) {
	c := New(newStubStore())
	ctx := context.Background()
	p := testPartition()

	if err := c.Put(ctx, p, "Hello", "Bonjour"); err != nil {
		t.Fatal(err)
	}

	all, err := c.GetAll(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	all["Hello"] = "mutated"
	all["Injected"] = "value"

	value, _, err := c.Get(ctx, p, "Hello")
	if err != nil {
		t.Fatal(err)
	}
	if value != "Bonjour" {
		t.Error("mutating GetAll result must not affect cache state")
	}
	if _, ok, _ := c.Get(ctx, p, "Injected"); ok {
		t.Error("mutating GetAll result must not inject cache entries")
	}
}

func TestCache_SnapshotInsertionOrder(t *testing.T) {
	s := newStubStore()
	p := testPartition()
	s.values[p.Path()] = map[string]string{"First": "Premier", "Second": "Deuxième"}
	s.order[p.Path()] = []string{"First", "Second"}

	c := New(s)
	ctx := context.Background()

	if err := c.Put(ctx, p, "Third", "Troisième"); err != nil {
		t.Fatal(err)
	}

	snapshot, err := c.Snapshot(ctx, p)
	if err != nil {
		t.Fatal(err)
	}

	want := []Entry{
		{Source: "First", Target: "Premier"},
		{Source: "Second", Target: "Deuxième"},
		{Source: "Third", Target: "Troisième"},
	}
	if len(snapshot) != len(want) {
		t.Fatalf("snapshot = %v, want %v", snapshot, want)
	}
	for i := range want {
		if snapshot[i] != want[i] {
			t.Errorf("snapshot[%d] = %v, want %v", i, snapshot[i], want[i])
		}
	}
}

func TestCache_OverwriteKeepsOriginalPosition(t *testing.T) {
	c := New(newStubStore())
	ctx := context.Background()
	p := testPartition()

	c.Put(ctx, p, "Hello", "Bonjour")
	c.Put(ctx, p, "Goodbye", "Au revoir")
	c.Put(ctx, p, "Hello", "Salut")

	snapshot, err := c.Snapshot(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 entries, got %v", snapshot)
	}
	if snapshot[0].Source != "Hello" || snapshot[0].Target != "Salut" {
		t.Errorf("overwrite should update in place, got %v", snapshot)
	}
}

func TestCache_PartitionIsolation(t *testing.T) {
	c := New(newStubStore())
	ctx := context.Background()

	fr := store.Partition{Root: "locales", Lang: "fr_FR", Context: "default"}
	es := store.Partition{Root: "locales", Lang: "es_ES", Context: "default"}
	legal := store.Partition{Root: "locales", Lang: "fr_FR", Context: "legal"}

	c.Put(ctx, fr, "Hello", "Bonjour")
	c.Put(ctx, es, "Hello", "Hola")
	c.Put(ctx, legal, "Hello", "Bonjour à vous")

	for _, tc := range []struct {
		p    store.Partition
		want string
	}{
		{fr, "Bonjour"},
		{es, "Hola"},
		{legal, "Bonjour à vous"},
	} {
		value, ok, err := c.Get(ctx, tc.p, "Hello")
		if err != nil || !ok || value != tc.want {
			t.Errorf("Get(%s) = (%q, %v, %v), want %q", tc.p.Path(), value, ok, err, tc.want)
		}
	}
}

func TestCache_ConcurrentPutsUnion(t *testing.T) {
	s := newStubStore()
	c := New(s)
	ctx := context.Background()
	p := testPartition()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := c.PutBatch(ctx, p, map[string]string{"Hello": "Bonjour"}); err != nil {
			t.Errorf("PutBatch: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := c.PutBatch(ctx, p, map[string]string{"Goodbye": "Au revoir"}); err != nil {
			t.Errorf("PutBatch: %v", err)
		}
	}()
	wg.Wait()

	// Concurrent batches may not interleave: the result is their union.
	s.mu.Lock()
	persisted := s.values[p.Path()]
	s.mu.Unlock()
	if persisted["Hello"] != "Bonjour" || persisted["Goodbye"] != "Au revoir" {
		t.Errorf("persisted state lost an update: %v", persisted)
	}
}
