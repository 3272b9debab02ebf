// Package worker runs the reminder process: it keeps a fresh view of
// the bill collection and flags overdue bills on a schedule.
package worker

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"contas/internal/events"
	"contas/internal/log"
	"contas/internal/services"
	"contas/internal/store"
)

// EventConsumer delivers bill change events to a handler until the
// context is cancelled.
type EventConsumer interface {
	ConsumeBillEvents(ctx context.Context, handler func(*events.BillEventMessage) error) error
}

// ReminderWorker reacts to bill change events and periodically scans
// for bills that went past their due date.
type ReminderWorker struct {
	store    *store.Store
	scanner  *services.OverdueScanner
	consumer EventConsumer
	interval time.Duration
	logger   *log.Logger
}

func NewReminderWorker(s *store.Store, scanner *services.OverdueScanner, consumer EventConsumer, interval time.Duration, logger *log.Logger) *ReminderWorker {
	return &ReminderWorker{
		store:    s,
		scanner:  scanner,
		consumer: consumer,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run blocks until ctx is cancelled. The event consumer and the scan
// ticker run concurrently; either one failing stops the worker.
func (w *ReminderWorker) Run(ctx context.Context) error {
	// One scan up front so a restart doesn't wait a full interval.
	if _, err := w.scanner.Scan(ctx); err != nil {
		w.logger.WarnContext(ctx, "initial overdue scan failed", log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.ConsumeBillEvents(ctx, func(msg *events.BillEventMessage) error {
				return w.handleEvent(ctx, msg)
			})
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if _, err := w.scanner.Scan(ctx); err != nil {
					w.logger.WarnContext(ctx, "overdue scan failed", log.FieldError, err)
				}
			}
		}
	})

	return g.Wait()
}

// handleEvent refreshes the local collection after another process
// changed it. Deletes need no extra work beyond the refresh.
func (w *ReminderWorker) handleEvent(ctx context.Context, msg *events.BillEventMessage) error {
	w.logger.InfoContext(ctx, "bill event received",
		log.FieldOperation, msg.Action,
		log.FieldBillID, msg.BillID)
	if err := w.store.Refresh(ctx); err != nil {
		return err
	}
	return nil
}
