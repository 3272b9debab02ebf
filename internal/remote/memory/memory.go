// Package memory is an in-process remote.Gateway used by the memory
// backend and by tests. It mimics the remote store's contract,
// including id assignment and not-found responses.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/remote"
)

type Store struct {
	mu    sync.Mutex
	bills []core.Bill
}

var _ remote.Gateway = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Seed replaces the collection, useful for dev fixtures and tests.
func (s *Store) Seed(bills []core.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills = append([]core.Bill(nil), bills...)
}

func (s *Store) ListBills(_ context.Context) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Bill(nil), s.bills...), nil
}

func (s *Store) CreateBill(_ context.Context, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = core.StatusPending
	}
	s.bills = append(s.bills, b)
	return b, nil
}

func (s *Store) UpdateBill(_ context.Context, id string, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bills {
		if s.bills[i].ID == id {
			b.ID = id
			s.bills[i] = b
			return b, nil
		}
	}
	return core.Bill{}, remote.ErrNotFound
}

func (s *Store) DeleteBill(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bills {
		if s.bills[i].ID == id {
			s.bills = append(s.bills[:i], s.bills[i+1:]...)
			return nil
		}
	}
	return remote.ErrNotFound
}
