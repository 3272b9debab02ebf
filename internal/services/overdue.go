package services

import (
	"context"
	"time"

	"contas/internal/core"
	"contas/internal/log"
	"contas/internal/store"
)

// OverdueScanner walks the collection and flags pending bills whose
// due date has passed. The flip goes through the store, so it is only
// applied once the remote service confirms it.
type OverdueScanner struct {
	store  *store.Store
	logger *log.Logger
	now    func() time.Time
}

func NewOverdueScanner(s *store.Store, logger *log.Logger) *OverdueScanner {
	return &OverdueScanner{
		store:  s,
		logger: logger.WithComponent(log.ComponentWorker),
		now:    time.Now,
	}
}

// Scan marks overdue bills and returns how many were flipped. A bill
// that fails to update is logged and skipped; the scan carries on.
func (o *OverdueScanner) Scan(ctx context.Context) (int, error) {
	if err := o.store.Refresh(ctx); err != nil {
		return 0, err
	}

	now := o.now()
	today := core.NewDate(now.Year(), now.Month(), now.Day())

	flipped := 0
	for _, b := range o.store.Bills() {
		if b.Status != core.StatusPending {
			continue
		}
		due, ok := EffectiveDueDate(b, today)
		if !ok || !due.Before(today.Time) {
			continue
		}

		b.Status = core.StatusOverdue
		if _, err := o.store.Update(ctx, b); err != nil {
			o.logger.WarnContext(ctx, "could not flag overdue bill",
				log.FieldBillID, b.ID,
				log.FieldError, err)
			continue
		}
		flipped++
		o.logger.InfoContext(ctx, "bill flagged overdue",
			log.FieldBillID, b.ID,
			log.FieldBillDesc, b.Description)
	}

	if flipped > 0 {
		o.logger.InfoContext(ctx, "overdue scan finished", log.FieldCount, flipped)
	}
	return flipped, nil
}
