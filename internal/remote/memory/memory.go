// Package memory is an in-process remote store. It backs the "memory" data
// backend and serves as the store double in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"saldo/internal/core"
	"saldo/internal/remote"
)

type Store struct {
	mu           sync.Mutex
	transactions []core.Transaction
	targets      map[string]core.Target
	order        []string // target insertion order

	failNext error
	calls    map[string]int
}

func New() *Store {
	return &Store{
		targets: make(map[string]core.Target),
		calls:   make(map[string]int),
	}
}

// Seed adds records as if they had been created earlier. Ids are assigned when
// empty.
func (s *Store) Seed(txs []core.Transaction, targets []core.Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range txs {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		s.transactions = append(s.transactions, t)
	}
	for _, t := range targets {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		s.targets[t.ID] = t
		s.order = append(s.order, t.ID)
	}
}

// FailNext makes the next store call fail with err.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// Calls returns how many times the named operation was invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Store) enter(op string) error {
	s.calls[op]++
	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}
	return nil
}

// ListTransactions returns the owner's transactions newest first, the way the
// hosted store orders them.
func (s *Store) ListTransactions(_ context.Context, ownerID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListTransactions"); err != nil {
		return nil, err
	}
	var out []core.Transaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].OwnerID == ownerID {
			out = append(out, s.transactions[i])
		}
	}
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateTransaction"); err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.transactions = append(s.transactions, t)
	return t, nil
}

func (s *Store) ListTargets(_ context.Context, ownerID string) ([]core.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListTargets"); err != nil {
		return nil, err
	}
	var out []core.Target
	for i := len(s.order) - 1; i >= 0; i-- {
		t := s.targets[s.order[i]]
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) CreateTarget(_ context.Context, t core.Target) (core.Target, error) {
	if err := t.Validate(); err != nil {
		return core.Target{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateTarget"); err != nil {
		return core.Target{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.targets[t.ID] = t
	s.order = append(s.order, t.ID)
	return t, nil
}

func (s *Store) UpdateTarget(_ context.Context, id string, patch remote.TargetPatch) (core.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateTarget"); err != nil {
		return core.Target{}, err
	}
	t, ok := s.targets[id]
	if !ok {
		return core.Target{}, fmt.Errorf("target %s: %w", id, remote.ErrNotFound)
	}
	t = patch.Apply(t)
	s.targets[id] = t
	return t, nil
}

func (s *Store) DeleteTarget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteTarget"); err != nil {
		return err
	}
	if _, ok := s.targets[id]; !ok {
		return fmt.Errorf("target %s: %w", id, remote.ErrNotFound)
	}
	delete(s.targets, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
