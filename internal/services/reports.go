package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"contas/internal/cache"
	"contas/internal/core"
	"contas/internal/store"
)

// Report aggregates the collection for the reports page and the
// export formats.
type Report struct {
	GeneratedAt   time.Time
	TotalBills    int
	TotalAmount   core.Money
	PaidAmount    core.Money
	PendingAmount core.Money
	OverdueAmount core.Money
	ByDescription []core.DescriptionTotal
	ByMonth       []core.MonthTotal
}

// BuildReport computes the aggregation. Description groups keep the
// order descriptions first appear in the collection; month groups are
// chronological. Recurring bills contribute one occurrence per covered
// month, so a twelve-month rent weighs twelve times its amount in the
// month breakdown.
func BuildReport(bills []core.Bill, now time.Time) Report {
	r := Report{
		GeneratedAt: now,
		TotalBills:  len(bills),
	}

	descIndex := map[string]int{}
	monthTotals := map[core.YearMonth]int64{}

	for _, b := range bills {
		r.TotalAmount.Cents += b.Amount.Cents
		switch b.Status {
		case core.StatusPaid:
			r.PaidAmount.Cents += b.Amount.Cents
		case core.StatusOverdue:
			r.OverdueAmount.Cents += b.Amount.Cents
		default:
			r.PendingAmount.Cents += b.Amount.Cents
		}

		if i, ok := descIndex[b.Description]; ok {
			r.ByDescription[i].Total.Cents += b.Amount.Cents
		} else {
			descIndex[b.Description] = len(r.ByDescription)
			r.ByDescription = append(r.ByDescription, core.DescriptionTotal{
				Description: b.Description,
				Total:       core.Money{Cents: b.Amount.Cents},
			})
		}

		for _, ym := range dueMonths(b) {
			monthTotals[ym] += b.Amount.Cents
		}
	}

	r.ByMonth = make([]core.MonthTotal, 0, len(monthTotals))
	for ym, cents := range monthTotals {
		r.ByMonth = append(r.ByMonth, core.MonthTotal{Month: ym, Total: core.Money{Cents: cents}})
	}
	sort.Slice(r.ByMonth, func(i, j int) bool {
		return r.ByMonth[i].Month.Before(r.ByMonth[j].Month)
	})
	return r
}

// dueMonths lists the months a bill charges in. A recurring bill
// without a period start cannot be placed on the calendar and is left
// out of the month breakdown.
func dueMonths(b core.Bill) []core.YearMonth {
	if due, ok := b.DueDate(); ok {
		if due.IsZero() {
			return nil
		}
		return []core.YearMonth{core.YearMonthOf(due)}
	}
	occurrences, err := ExpandInstallments(b)
	if err != nil {
		return nil
	}
	months := make([]core.YearMonth, len(occurrences))
	for i, occ := range occurrences {
		months[i] = core.YearMonthOf(occ.DueDate)
	}
	return months
}

// ReportService caches built reports keyed by a fingerprint of the
// collection, so repeated page loads between mutations reuse the same
// aggregation.
type ReportService struct {
	store *store.Store
	cache cache.Cache[Report]
	now   func() time.Time
}

func NewReportService(s *store.Store, c cache.Cache[Report]) *ReportService {
	return &ReportService{
		store: s,
		cache: c,
		now:   time.Now,
	}
}

// Current builds the report for the collection as the store holds it.
func (rs *ReportService) Current() Report {
	bills := rs.store.Bills()
	key := fingerprint(bills)
	if r, ok := rs.cache.Get(key); ok {
		return r
	}
	r := BuildReport(bills, rs.now())
	rs.cache.Set(key, r)
	return r
}

func fingerprint(bills []core.Bill) string {
	h := sha256.New()
	for _, b := range bills {
		fmt.Fprintf(h, "%s|%d|%s\n", b.ID, b.Amount.Cents, b.Status)
	}
	return hex.EncodeToString(h.Sum(nil))
}
