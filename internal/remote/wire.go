package remote

import (
	"encoding/json"
	"fmt"
	"strings"

	"contas/internal/core"
)

// BillWire is the JSON shape of a bill on the wire. Field names follow
// the remote store's Portuguese vocabulary. The store has returned the
// identifier under both "id" and "_id" across revisions; decoding
// accepts either, encoding always writes "id".
type BillWire struct {
	ID                string      `json:"id,omitempty"`
	AltID             string      `json:"_id,omitempty"`
	Description       string      `json:"descricao"`
	Amount            json.Number `json:"valor"`
	DueDate           string      `json:"vencimento,omitempty"`
	Recurring         bool        `json:"recorrente"`
	PeriodStart       string      `json:"inicio_periodo,omitempty"`
	PeriodEnd         string      `json:"fim_periodo,omitempty"`
	FixedDueDay       int         `json:"dia_vencimento,omitempty"`
	InstallmentCount  int         `json:"quantidade_parcelas,omitempty"`
	InstallmentNumber int         `json:"numero_parcela,omitempty"`
	InstallmentTotal  int         `json:"total_parcelas,omitempty"`
	Status            string      `json:"status,omitempty"`
}

// statusToWire maps canonical statuses onto the spelling the remote
// store expects.
var statusToWire = map[core.Status]string{
	core.StatusPending: "pendente",
	core.StatusPaid:    "paga",
	core.StatusOverdue: "vencida",
}

// EncodeBill converts a domain bill to its wire shape. The amount is
// always emitted as the canonical two-fraction-digit decimal.
func EncodeBill(b core.Bill) BillWire {
	w := BillWire{
		ID:                b.ID,
		Description:       strings.TrimSpace(b.Description),
		Amount:            json.Number(b.Amount.Decimal()),
		Status:            statusToWire[b.Status],
		InstallmentNumber: b.Installment.Number,
		InstallmentTotal:  b.Installment.Total,
	}
	if w.Status == "" {
		w.Status = statusToWire[core.StatusPending]
	}
	switch s := b.Schedule.(type) {
	case core.OneOff:
		w.DueDate = s.DueDate.String()
	case core.Recurring:
		w.Recurring = true
		w.InstallmentCount = s.InstallmentCount
		w.FixedDueDay = s.FixedDueDay
		w.PeriodStart = s.PeriodStart.String()
		w.PeriodEnd = s.PeriodEnd.String()
	}
	return w
}

// DecodeBill converts a wire record to a domain bill. Unknown status
// spellings fall back to pending; decoding is best-effort for fields
// the older store revisions left inconsistent, strict for the ones the
// domain depends on.
func DecodeBill(w BillWire) (core.Bill, error) {
	id := w.ID
	if id == "" {
		id = w.AltID
	}

	cents, err := core.ParseDecimalToCents(w.Amount.String())
	if err != nil {
		return core.Bill{}, fmt.Errorf("bill %s: amount %q: %w", id, w.Amount, err)
	}

	status, _ := core.ParseStatus(w.Status)

	b := core.Bill{
		ID:          id,
		Description: w.Description,
		Amount:      core.Money{Cents: cents},
		Status:      status,
		Installment: core.Installment{Number: w.InstallmentNumber, Total: w.InstallmentTotal},
	}

	if w.Recurring {
		rec := core.Recurring{
			InstallmentCount: w.InstallmentCount,
			FixedDueDay:      w.FixedDueDay,
		}
		if w.PeriodStart != "" {
			if rec.PeriodStart, err = core.ParseYearMonth(w.PeriodStart); err != nil {
				return core.Bill{}, fmt.Errorf("bill %s: %w", id, err)
			}
		}
		if w.PeriodEnd != "" {
			if rec.PeriodEnd, err = core.ParseYearMonth(w.PeriodEnd); err != nil {
				return core.Bill{}, fmt.Errorf("bill %s: %w", id, err)
			}
		}
		b.Schedule = rec
		return b, nil
	}

	var due core.Date
	if w.DueDate != "" {
		if due, err = core.ParseDate(w.DueDate); err != nil {
			return core.Bill{}, fmt.Errorf("bill %s: %w", id, err)
		}
	}
	b.Schedule = core.OneOff{DueDate: due}
	return b, nil
}
