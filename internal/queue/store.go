// Package queue holds the ordered list of pending prompts. The store is
// write-through: every mutation persists the full resulting sequence before
// reporting success, so a reload immediately afterwards cannot lose an
// accepted item. Items are immutable once queued; "editing" is remove then
// reinsert, decided by the caller.
package queue

import (
	"context"
	"sync"
)

// QueueKey is the persistence key holding the ordered prompt list.
const QueueKey = "queue"

// Persister is the external persistence collaborator: a monotonic
// last-write-wins key/value store.
type Persister interface {
	// Save stores value under key, replacing any previous value.
	Save(ctx context.Context, key string, value any) error
	// Load reads the value under key into out, reporting whether the key
	// was present.
	Load(ctx context.Context, key string, out any) (bool, error)
}

// Store is the FIFO of pending prompt texts. Index 0 is next to send.
// Mutations are serialized by an internal mutex; the dispatch controller is
// the only owner, everything else reads through accessors.
type Store struct {
	mu      sync.Mutex
	items   []string
	persist Persister
}

// NewStore builds an empty store backed by p. A nil p disables persistence
// (used by tests).
func NewStore(p Persister) *Store {
	return &Store{persist: p}
}

// Hydrate replaces the in-memory sequence with the persisted one, if any.
// Called once at startup before the store is shared.
func (s *Store) Hydrate(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	var items []string
	ok, err := s.persist.Load(ctx, QueueKey, &items)
	if err != nil {
		return persistenceError{err: err}
	}
	if !ok {
		return nil
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Append inserts text at the tail and persists. Returns the index the item
// landed at. Validation beyond non-emptiness is the caller's job.
func (s *Store) Append(ctx context.Context, text string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, text)
	return len(s.items) - 1, s.persistLocked(ctx)
}

// RemoveAt removes the item at index and persists. Out-of-bounds indexes are
// a silent no-op: callers race with the panel UI. The removed text is
// returned for edit flows.
func (s *Store) RemoveAt(ctx context.Context, index int) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return "", false, nil
	}
	removed := s.items[index]
	s.items = append(s.items[:index], s.items[index+1:]...)
	return removed, true, s.persistLocked(ctx)
}

// PopHead removes and returns index 0, persisting the remainder. Fails with
// an empty-queue error when there is nothing to pop.
func (s *Store) PopHead(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return "", ErrEmptyQueue()
	}
	head := s.items[0]
	s.items = s.items[1:]
	return head, s.persistLocked(ctx)
}

// PeekHead returns index 0 without removing it.
func (s *Store) PeekHead() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return "", false
	}
	return s.items[0], true
}

// Len returns the number of queued items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Items returns a copy of the ordered sequence.
func (s *Store) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	// Persist a copy: the slice keeps mutating under the lock.
	snapshot := make([]string, len(s.items))
	copy(snapshot, s.items)
	if err := s.persist.Save(ctx, QueueKey, snapshot); err != nil {
		return persistenceError{err: err}
	}
	return nil
}
