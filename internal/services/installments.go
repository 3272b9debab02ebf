// Package services provides the business logic built on top of the
// bill store: installment expansion, report aggregation and the
// overdue scan.
package services

import (
	"fmt"

	"contas/internal/core"
)

// Occurrence is one concrete charge of a recurring bill.
type Occurrence struct {
	Sequence int
	Total    int
	DueDate  core.Date
}

// ExpandInstallments materializes the monthly occurrences of a
// recurring bill. The covered months come from the period when one is
// set, otherwise InstallmentCount months starting at the period start.
// Due days past the end of a month land on its last day.
func ExpandInstallments(b core.Bill) ([]Occurrence, error) {
	rec, ok := b.RecurringSchedule()
	if !ok {
		return nil, fmt.Errorf("bill %s is not recurring", b.ID)
	}
	if rec.PeriodStart.IsZero() {
		return nil, fmt.Errorf("bill %s has no period start", b.ID)
	}

	day := rec.FixedDueDay
	if day == 0 {
		day = 1
	}

	months := rec.InstallmentCount
	if !rec.PeriodEnd.IsZero() {
		months = monthsBetween(rec.PeriodStart, rec.PeriodEnd)
	}
	if months < 1 {
		return nil, fmt.Errorf("bill %s has an empty installment series", b.ID)
	}

	occurrences := make([]Occurrence, 0, months)
	ym := rec.PeriodStart
	for i := 0; i < months; i++ {
		occurrences = append(occurrences, Occurrence{
			Sequence: i + 1,
			Total:    months,
			DueDate:  ym.DateOn(day),
		})
		ym = ym.Next()
	}
	return occurrences, nil
}

// EffectiveDueDate resolves the date a bill is currently due on. For a
// one-off bill that is its due date. For a recurring bill it is the
// occurrence of the month today falls in, clamped to the period.
func EffectiveDueDate(b core.Bill, today core.Date) (core.Date, bool) {
	if due, ok := b.DueDate(); ok {
		return due, !due.IsZero()
	}
	rec, ok := b.RecurringSchedule()
	if !ok {
		return core.Date{}, false
	}

	day := rec.FixedDueDay
	if day == 0 {
		day = 1
	}

	ym := core.YearMonthOf(today)
	if !rec.PeriodStart.IsZero() && ym.Before(rec.PeriodStart) {
		ym = rec.PeriodStart
	}
	if !rec.PeriodEnd.IsZero() && rec.PeriodEnd.Before(ym) {
		ym = rec.PeriodEnd
	}
	return ym.DateOn(day), true
}

func monthsBetween(start, end core.YearMonth) int {
	return (end.Year-start.Year)*12 + int(end.Month) - int(start.Month) + 1
}
