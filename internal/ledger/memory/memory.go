// Package memory is an in-process ledger store used for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"ledgerbot/internal/core"
	"ledgerbot/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	ledgers map[ledger.Ref][]core.Entry
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{ledgers: make(map[ledger.Ref][]core.Entry)}
}

// EnsureSchema registers the ledger. The header row is implicit in memory.
func (s *Store) EnsureSchema(_ context.Context, ref ledger.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ledgers[ref]; !ok {
		s.ledgers[ref] = nil
	}
	return nil
}

func (s *Store) Append(_ context.Context, ref ledger.Ref, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ledger.ErrRejected, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[ref] = append(s.ledgers[ref], e)
	return fmt.Sprintf("mem:%d", len(s.ledgers[ref])), nil
}

func (s *Store) Clear(_ context.Context, ref ledger.Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[ref] = nil
	return nil
}

func (s *Store) DeleteLast(_ context.Context, ref ledger.Ref) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.ledgers[ref]
	if len(entries) == 0 {
		return false, nil
	}
	s.ledgers[ref] = entries[:len(entries)-1]
	return true, nil
}

func (s *Store) ListAll(_ context.Context, ref ledger.Ref) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Entry(nil), s.ledgers[ref]...), nil
}
