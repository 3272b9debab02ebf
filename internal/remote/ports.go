// Package remote defines the port to the bill persistence service and
// the JSON wire model shared by its implementations.
package remote

import (
	"context"
	"errors"

	"contas/internal/core"
)

// ErrNotFound is returned when the remote store has no bill with the
// requested id.
var ErrNotFound = errors.New("bill not found")

// Gateway is the outbound port to the remote bill store.
type Gateway interface {
	// ListBills fetches the full collection.
	ListBills(ctx context.Context) ([]core.Bill, error)

	// CreateBill submits a new bill and returns the authoritative
	// record, with the server-assigned id when the payload had none.
	CreateBill(ctx context.Context, b core.Bill) (core.Bill, error)

	// UpdateBill replaces the full record keyed by id.
	UpdateBill(ctx context.Context, id string, b core.Bill) (core.Bill, error)

	// DeleteBill removes the record keyed by id.
	DeleteBill(ctx context.Context, id string) error
}
