package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// memPersister records saves in memory for tests.
type memPersister struct {
	mu    sync.Mutex
	saves int
	data  map[string][]string
	fail  bool
}

func newMemPersister() *memPersister {
	return &memPersister{data: map[string][]string{}}
}

func (p *memPersister) Save(ctx context.Context, key string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("disk full")
	}
	p.saves++
	items := value.([]string)
	cp := make([]string, len(items))
	copy(cp, items)
	p.data[key] = cp
	return nil
}

func (p *memPersister) Load(ctx context.Context, key string, out any) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	items, ok := p.data[key]
	if !ok {
		return false, nil
	}
	*(out.(*[]string)) = items
	return true, nil
}

func TestAppendKeepsFIFOOrder(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	for _, text := range []string{"a", "b", "c"} {
		if _, err := s.Append(ctx, text); err != nil {
			t.Fatalf("append %q: %v", text, err)
		}
	}
	got := s.Items()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPopHeadEmptyFailsWithEmptyQueue(t *testing.T) {
	s := NewStore(nil)
	head, err := s.PopHead(context.Background())
	if err == nil || !IsEmptyQueue(err) {
		t.Fatalf("expected empty-queue error, got %v", err)
	}
	if head != "" {
		t.Fatalf("expected zero value on failed pop, got %q", head)
	}
}

func TestPopHeadReturnsOldest(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	s.Append(ctx, "first")
	s.Append(ctx, "second")
	head, err := s.PopHead(ctx)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if head != "first" {
		t.Fatalf("expected oldest item, got %q", head)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", s.Len())
	}
}

func TestRemoveAtOutOfBoundsIsNoOp(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	s.Append(ctx, "only")
	for _, idx := range []int{-1, 1, 99} {
		if _, ok, err := s.RemoveAt(ctx, idx); ok || err != nil {
			t.Fatalf("RemoveAt(%d) = ok=%v err=%v, want silent no-op", idx, ok, err)
		}
	}
	if s.Len() != 1 {
		t.Fatalf("no-op removal changed length to %d", s.Len())
	}
}

func TestRemoveAtReturnsRemovedText(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	s.Append(ctx, "a")
	s.Append(ctx, "b")
	text, ok, err := s.RemoveAt(ctx, 0)
	if err != nil || !ok || text != "a" {
		t.Fatalf("RemoveAt(0) = %q ok=%v err=%v", text, ok, err)
	}
	if items := s.Items(); len(items) != 1 || items[0] != "b" {
		t.Fatalf("unexpected remainder: %v", items)
	}
}

func TestPeekHeadDoesNotRemove(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	if _, ok := s.PeekHead(); ok {
		t.Fatalf("peek on empty store reported an item")
	}
	s.Append(ctx, "x")
	head, ok := s.PeekHead()
	if !ok || head != "x" {
		t.Fatalf("peek = %q ok=%v", head, ok)
	}
	if s.Len() != 1 {
		t.Fatalf("peek removed the item")
	}
}

func TestEveryMutationPersists(t *testing.T) {
	p := newMemPersister()
	s := NewStore(p)
	ctx := context.Background()

	s.Append(ctx, "a")
	s.Append(ctx, "b")
	s.RemoveAt(ctx, 1)
	s.PopHead(ctx)
	if p.saves != 4 {
		t.Fatalf("expected 4 persisted writes, got %d", p.saves)
	}
	if len(p.data[QueueKey]) != 0 {
		t.Fatalf("expected empty persisted sequence, got %v", p.data[QueueKey])
	}
}

func TestPersistFailureKeepsMemoryAuthoritative(t *testing.T) {
	p := newMemPersister()
	p.fail = true
	s := NewStore(p)
	_, err := s.Append(context.Background(), "a")
	if err == nil || !IsPersistenceFailure(err) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("in-memory queue lost the item on persist failure")
	}
}

func TestHydrateRestoresSequence(t *testing.T) {
	p := newMemPersister()
	ctx := context.Background()
	first := NewStore(p)
	first.Append(ctx, "a")
	first.Append(ctx, "b")
	first.Append(ctx, "c")

	second := NewStore(p)
	if err := second.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	got := second.Items()
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("round-trip item %d = %q, want %q", i, got[i], want[i])
		}
	}
}
