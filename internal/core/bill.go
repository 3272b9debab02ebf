package core

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the closed set of bill states. There is no transition
// engine: any state may be set to any other by explicit user action.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// ParseStatus maps the historical wire spellings onto the canonical set.
// The remote store has carried "pendente"/"paga"/"pago"/"vencida" across
// revisions; the canonical set is fixed here, once, at the boundary.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pendente", "pending":
		return StatusPending, nil
	case "paga", "pago", "paid":
		return StatusPaid, nil
	case "vencida", "vencido", "overdue":
		return StatusOverdue, nil
	}
	return StatusPending, fmt.Errorf("unknown status %q", s)
}

// IsValid reports whether the status is one of the canonical values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Schedule is the tagged union distinguishing the two bill shapes.
type Schedule interface {
	schedule()
}

// OneOff is a bill due on a single calendar date.
type OneOff struct {
	DueDate Date
}

// Recurring is a bill that generates monthly installments, either from
// a count anchored at a fixed due day or from a year-month period range.
type Recurring struct {
	InstallmentCount int
	FixedDueDay      int // 0 when unset, otherwise 1..31
	PeriodStart      YearMonth
	PeriodEnd        YearMonth
}

func (OneOff) schedule()    {}
func (Recurring) schedule() {}

// Installment is a position within a generated series, zero for
// standalone bills.
type Installment struct {
	Number int
	Total  int
}

// Bill is a single payable record ("conta").
type Bill struct {
	ID          string
	Description string
	Amount      Money
	Schedule    Schedule
	Status      Status
	Installment Installment
}

var (
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidDescription = errors.New("invalid description")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrMissingDueDate     = errors.New("missing due date")
	ErrInvalidRecurrence  = errors.New("invalid recurrence")
)

// Validate gates every create/update before network submission.
func (b Bill) Validate() error {
	if len(strings.TrimSpace(b.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(b.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrInvalidDescription)
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.Status != "" && !b.Status.IsValid() {
		return fmt.Errorf("invalid status %q", b.Status)
	}

	switch s := b.Schedule.(type) {
	case OneOff:
		if s.DueDate.IsZero() {
			return ErrMissingDueDate
		}
	case Recurring:
		if s.InstallmentCount < 1 {
			return fmt.Errorf("%w: installment count must be at least 1", ErrInvalidRecurrence)
		}
		if s.FixedDueDay != 0 && (s.FixedDueDay < 1 || s.FixedDueDay > 31) {
			return fmt.Errorf("%w: fixed due day must be between 1 and 31", ErrInvalidRecurrence)
		}
		if !s.PeriodStart.IsZero() && !s.PeriodEnd.IsZero() && s.PeriodEnd.Before(s.PeriodStart) {
			return fmt.Errorf("%w: period end before period start", ErrInvalidRecurrence)
		}
	case nil:
		// No schedule at all is a one-off without a due date.
		return ErrMissingDueDate
	}
	return nil
}

// IsRecurring reports whether the bill carries a recurring schedule.
func (b Bill) IsRecurring() bool {
	_, ok := b.Schedule.(Recurring)
	return ok
}

// DueDate returns the due date of a one-off bill.
func (b Bill) DueDate() (Date, bool) {
	s, ok := b.Schedule.(OneOff)
	if !ok {
		return Date{}, false
	}
	return s.DueDate, true
}

// RecurringSchedule returns the recurring schedule when present.
func (b Bill) RecurringSchedule() (Recurring, bool) {
	s, ok := b.Schedule.(Recurring)
	return s, ok
}
