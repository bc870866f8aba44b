package ledger

import (
	"context"
	"sync"

	"finsmart/internal/core"
)

// MemoryStore is a volatile ledger for tests and throwaway runs. Same
// ordering and no-op-remove semantics as the durable stores.
type MemoryStore struct {
	mu    sync.Mutex
	items []core.Expense
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) List(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]core.Expense, 0, len(s.items)+1)
	next = append(next, e)
	next = append(next, s.items...)
	s.items = next
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}
