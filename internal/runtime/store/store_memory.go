package store

import (
	"context"
	"fmt"
	"sync"

	"allowlist/internal/runtime"
	"allowlist/pkg/domain"
	"allowlist/pkg/platform/sentinel"
)

// InMemoryStore keeps records in memory for tests/dev. It hands out copies,
// so callers never mutate stored state except through Put.
type InMemoryStore struct {
	mu          sync.RWMutex
	records     map[domain.ID]*runtime.Account
	invocations []Invocation
}

// NewMemory constructs an empty in-memory record store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[domain.ID]*runtime.Account),
	}
}

func (s *InMemoryStore) Get(_ context.Context, key domain.ID) (*runtime.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if account, ok := s.records[key]; ok {
		return account.Clone(), nil
	}
	return nil, fmt.Errorf("record %s not found: %w", key, sentinel.ErrNotFound)
}

func (s *InMemoryStore) Put(_ context.Context, account *runtime.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[account.Key] = account.Clone()
	return nil
}

func (s *InMemoryStore) PutAll(_ context.Context, accounts []*runtime.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range accounts {
		s.records[account.Key] = account.Clone()
	}
	return nil
}

func (s *InMemoryStore) AppendInvocation(_ context.Context, inv Invocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invocations = append(s.invocations, inv)
	return nil
}

// Invocations returns a snapshot of the journal, oldest first.
func (s *InMemoryStore) Invocations() []Invocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Invocation, len(s.invocations))
	copy(out, s.invocations)
	return out
}
