// Package store holds the client-side bill collection and keeps it in
// sync with the remote bill service. The collection only changes after
// the remote store has confirmed an operation; there is no optimistic
// mutation, so a failed call leaves the local state exactly as it was.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/log"
	"contas/internal/metrics"
	"contas/internal/remote"
)

// User-facing failure messages, matching the vocabulary of the service
// this client talks to.
const (
	detailList     = "Erro ao buscar contas"
	detailCreate   = "Erro ao criar conta"
	detailUpdate   = "Erro ao atualizar conta"
	detailDelete   = "Erro ao deletar conta"
	detailNotFound = "Conta não encontrada"

	detailEmptyDescription  = "Descrição obrigatória"
	detailLongDescription   = "Descrição muito longa (máximo 200 caracteres)"
	detailInvalidAmount     = "Valor inválido"
	detailMissingDueDate    = "Vencimento obrigatório para contas não recorrentes"
	detailInvalidRecurrence = "Recorrência inválida"
)

// Event actions attached to published change notifications.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// EventPublisher notifies other processes about confirmed mutations.
// Publishing is best effort; a broker failure never fails the
// operation that triggered it.
type EventPublisher interface {
	PublishBillEvent(ctx context.Context, action, billID string) error
}

// SnapshotRepository persists the last confirmed collection locally so
// a later session can show stale data while the remote store is down.
type SnapshotRepository interface {
	Replace(ctx context.Context, bills []core.Bill) error
	Load(ctx context.Context) ([]core.Bill, error)
}

// Store is the bill collection state manager. All methods are safe for
// concurrent use.
type Store struct {
	gw       remote.Gateway
	events   EventPublisher
	snapshot SnapshotRepository
	logger   *log.Logger

	mu      sync.RWMutex
	bills   []core.Bill
	lastErr *OpError
}

type Option func(*Store)

// WithEvents attaches a change event publisher.
func WithEvents(p EventPublisher) Option {
	return func(s *Store) { s.events = p }
}

// WithSnapshot attaches a local snapshot repository.
func WithSnapshot(r SnapshotRepository) Option {
	return func(s *Store) { s.snapshot = r }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func New(gw remote.Gateway, opts ...Option) *Store {
	s := &Store{
		gw:     gw,
		logger: log.New(log.Config{Component: log.ComponentStore}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bills returns a copy of the current collection.
func (s *Store) Bills() []core.Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Bill(nil), s.bills...)
}

// Get returns the bill with the given id from the local collection.
func (s *Store) Get(id string) (core.Bill, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bills {
		if b.ID == id {
			return b, true
		}
	}
	return core.Bill{}, false
}

// Err returns the error from the most recent operation, or nil when it
// succeeded.
func (s *Store) Err() *OpError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Refresh replaces the local collection with the remote one. On
// failure the previous collection is kept; if the collection was still
// empty and a snapshot exists, the snapshot is served instead so the
// user sees their last known bills.
func (s *Store) Refresh(ctx context.Context) error {
	start := time.Now()
	bills, err := s.gw.ListBills(ctx)
	metrics.ObserveBillOp(log.OpList, start, err)
	if err != nil {
		e := opErr(KindList, detailList, err)
		s.setErr(e)
		s.logger.ErrorContext(ctx, "list bills failed", log.FieldError, err)
		s.serveSnapshotFallback(ctx)
		return e
	}

	s.mu.Lock()
	s.bills = bills
	s.lastErr = nil
	s.mu.Unlock()

	s.persistSnapshot(ctx, bills)
	s.logger.DebugContext(ctx, "collection refreshed", log.FieldCount, len(bills))
	return nil
}

// Create validates the bill, submits it and appends the authoritative
// record returned by the remote store. A bill without an id gets a
// provisional one before submission.
func (s *Store) Create(ctx context.Context, b core.Bill) (core.Bill, error) {
	if err := b.Validate(); err != nil {
		e := opErr(KindValidation, validationDetail(err), err)
		s.setErr(e)
		return core.Bill{}, e
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = core.StatusPending
	}

	start := time.Now()
	created, err := s.gw.CreateBill(ctx, b)
	metrics.ObserveBillOp(log.OpCreate, start, err)
	if err != nil {
		e := opErr(KindCreate, detailCreate, err)
		s.setErr(e)
		s.logger.ErrorContext(ctx, "create bill failed", log.FieldError, err)
		return core.Bill{}, e
	}

	s.mu.Lock()
	s.bills = append(s.bills, created)
	s.lastErr = nil
	snapshot := append([]core.Bill(nil), s.bills...)
	s.mu.Unlock()

	s.persistSnapshot(ctx, snapshot)
	s.publish(ctx, ActionCreated, created.ID)
	s.logger.InfoContext(ctx, "bill created",
		log.FieldBillID, created.ID,
		log.FieldBillDesc, created.Description,
		log.FieldAmountCents, created.Amount.Cents)
	return created, nil
}

// Update validates the bill and replaces the remote record keyed by
// its id. Locally the confirmed record replaces the matching entry, or
// is appended when the collection somehow lacks it.
func (s *Store) Update(ctx context.Context, b core.Bill) (core.Bill, error) {
	if b.ID == "" {
		e := opErr(KindUpdate, detailNotFound, remote.ErrNotFound)
		s.setErr(e)
		return core.Bill{}, e
	}
	if err := b.Validate(); err != nil {
		e := opErr(KindValidation, validationDetail(err), err)
		s.setErr(e)
		return core.Bill{}, e
	}

	start := time.Now()
	updated, err := s.gw.UpdateBill(ctx, b.ID, b)
	metrics.ObserveBillOp(log.OpUpdate, start, err)
	if err != nil {
		detail := detailUpdate
		if errors.Is(err, remote.ErrNotFound) {
			detail = detailNotFound
		}
		e := opErr(KindUpdate, detail, err)
		s.setErr(e)
		s.logger.ErrorContext(ctx, "update bill failed", log.FieldBillID, b.ID, log.FieldError, err)
		return core.Bill{}, e
	}

	s.mu.Lock()
	replaced := false
	for i := range s.bills {
		if s.bills[i].ID == updated.ID {
			s.bills[i] = updated
			replaced = true
			break
		}
	}
	if !replaced {
		s.bills = append(s.bills, updated)
	}
	s.lastErr = nil
	snapshot := append([]core.Bill(nil), s.bills...)
	s.mu.Unlock()

	s.persistSnapshot(ctx, snapshot)
	s.publish(ctx, ActionUpdated, updated.ID)
	return updated, nil
}

// Delete forwards the removal to the remote store and drops the local
// entry once confirmed. The call is forwarded even for ids the local
// collection does not hold, so the remote store stays the authority.
func (s *Store) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.gw.DeleteBill(ctx, id)
	metrics.ObserveBillOp(log.OpDelete, start, err)
	if err != nil {
		e := opErr(KindDelete, detailDelete, err)
		s.setErr(e)
		s.logger.ErrorContext(ctx, "delete bill failed", log.FieldBillID, id, log.FieldError, err)
		return e
	}

	s.mu.Lock()
	for i := range s.bills {
		if s.bills[i].ID == id {
			s.bills = append(s.bills[:i], s.bills[i+1:]...)
			break
		}
	}
	s.lastErr = nil
	snapshot := append([]core.Bill(nil), s.bills...)
	s.mu.Unlock()

	s.persistSnapshot(ctx, snapshot)
	s.publish(ctx, ActionDeleted, id)
	return nil
}

// TogglePaid flips a bill between paid and unpaid. Pending and overdue
// bills become paid, paid bills go back to pending.
func (s *Store) TogglePaid(ctx context.Context, id string) (core.Bill, error) {
	b, ok := s.Get(id)
	if !ok {
		e := opErr(KindUpdate, detailNotFound, remote.ErrNotFound)
		s.setErr(e)
		return core.Bill{}, e
	}
	if b.Status == core.StatusPaid {
		b.Status = core.StatusPending
	} else {
		b.Status = core.StatusPaid
	}
	return s.Update(ctx, b)
}

func (s *Store) setErr(e *OpError) {
	s.mu.Lock()
	s.lastErr = e
	s.mu.Unlock()
}

// serveSnapshotFallback loads the persisted collection after a failed
// refresh, but only when nothing has been loaded yet this session.
func (s *Store) serveSnapshotFallback(ctx context.Context) {
	if s.snapshot == nil {
		return
	}
	s.mu.RLock()
	empty := len(s.bills) == 0
	s.mu.RUnlock()
	if !empty {
		return
	}
	bills, err := s.snapshot.Load(ctx)
	if err != nil || len(bills) == 0 {
		if err != nil {
			s.logger.WarnContext(ctx, "snapshot load failed", log.FieldError, err)
		}
		return
	}
	s.mu.Lock()
	if len(s.bills) == 0 {
		s.bills = bills
	}
	s.mu.Unlock()
	metrics.ObserveSnapshotFallback()
	s.logger.WarnContext(ctx, "serving bills from local snapshot", log.FieldCount, len(bills))
}

func (s *Store) persistSnapshot(ctx context.Context, bills []core.Bill) {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.Replace(ctx, bills); err != nil {
		s.logger.WarnContext(ctx, "snapshot write failed", log.FieldError, err)
	}
}

func (s *Store) publish(ctx context.Context, action, id string) {
	if s.events == nil {
		return
	}
	err := s.events.PublishBillEvent(ctx, action, id)
	metrics.ObserveBillEvent(action, err)
	if err != nil {
		s.logger.WarnContext(ctx, "event publish failed",
			log.FieldOperation, action,
			log.FieldBillID, id,
			log.FieldError, err)
	}
}

func validationDetail(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyDescription):
		return detailEmptyDescription
	case errors.Is(err, core.ErrInvalidDescription):
		return detailLongDescription
	case errors.Is(err, core.ErrInvalidAmount):
		return detailInvalidAmount
	case errors.Is(err, core.ErrMissingDueDate):
		return detailMissingDueDate
	case errors.Is(err, core.ErrInvalidRecurrence):
		return detailInvalidRecurrence
	default:
		return err.Error()
	}
}
