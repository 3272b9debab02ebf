package services

import (
	"context"
	"testing"
	"time"

	"contas/internal/cache"
	"contas/internal/core"
	"contas/internal/remote/memory"
	"contas/internal/store"
)

func TestBuildReportGroupsAndTotals(t *testing.T) {
	bills := []core.Bill{
		{ID: "1", Description: "Luz", Amount: core.Money{Cents: 10000}, Status: core.StatusPaid,
			Schedule: core.OneOff{DueDate: core.NewDate(2024, 1, 10)}},
		{ID: "2", Description: "Internet", Amount: core.Money{Cents: 9990}, Status: core.StatusPending,
			Schedule: core.OneOff{DueDate: core.NewDate(2024, 2, 1)}},
		{ID: "3", Description: "Luz", Amount: core.Money{Cents: 11000}, Status: core.StatusOverdue,
			Schedule: core.OneOff{DueDate: core.NewDate(2024, 2, 10)}},
	}

	r := BuildReport(bills, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	if r.TotalBills != 3 || r.TotalAmount.Cents != 30990 {
		t.Errorf("totals = %d bills, %d cents", r.TotalBills, r.TotalAmount.Cents)
	}
	if r.PaidAmount.Cents != 10000 || r.PendingAmount.Cents != 9990 || r.OverdueAmount.Cents != 11000 {
		t.Errorf("status split = %+v", r)
	}

	// First-seen order: Luz then Internet, with both Luz bills merged.
	if len(r.ByDescription) != 2 ||
		r.ByDescription[0].Description != "Luz" || r.ByDescription[0].Total.Cents != 21000 ||
		r.ByDescription[1].Description != "Internet" {
		t.Errorf("ByDescription = %+v", r.ByDescription)
	}

	if len(r.ByMonth) != 2 {
		t.Fatalf("ByMonth = %+v", r.ByMonth)
	}
	if r.ByMonth[0].Month.String() != "2024-01" || r.ByMonth[0].Total.Cents != 10000 {
		t.Errorf("first month = %+v", r.ByMonth[0])
	}
	if r.ByMonth[1].Month.String() != "2024-02" || r.ByMonth[1].Total.Cents != 20990 {
		t.Errorf("second month = %+v", r.ByMonth[1])
	}
}

func TestBuildReportSpreadsRecurringAcrossMonths(t *testing.T) {
	bills := []core.Bill{
		recurringBill(3, 5,
			core.YearMonth{Year: 2024, Month: 1},
			core.YearMonth{Year: 2024, Month: 3}),
	}

	r := BuildReport(bills, time.Now())
	if len(r.ByMonth) != 3 {
		t.Fatalf("ByMonth = %+v", r.ByMonth)
	}
	for i, mt := range r.ByMonth {
		if mt.Total.Cents != 180000 {
			t.Errorf("month %d total = %d", i, mt.Total.Cents)
		}
	}
	// The collection total counts the bill once.
	if r.TotalAmount.Cents != 180000 {
		t.Errorf("TotalAmount = %d", r.TotalAmount.Cents)
	}
}

func TestReportServiceCachesUntilCollectionChanges(t *testing.T) {
	mem := memory.New()
	s := store.New(mem)
	rs := NewReportService(s, cache.NewLRUCache[Report](4, time.Minute))
	calls := 0
	rs.now = func() time.Time {
		calls++
		return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	if _, err := s.Create(ctx, core.Bill{
		Description: "Luz", Amount: core.Money{Cents: 5000},
		Schedule: core.OneOff{DueDate: core.NewDate(2024, 3, 10)},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	first := rs.Current()
	second := rs.Current()
	if calls != 1 {
		t.Errorf("report rebuilt %d times for an unchanged collection", calls)
	}
	if first.TotalBills != 1 || second.TotalBills != 1 {
		t.Errorf("reports = %+v, %+v", first, second)
	}

	if _, err := s.Create(ctx, core.Bill{
		Description: "Internet", Amount: core.Money{Cents: 9990},
		Schedule: core.OneOff{DueDate: core.NewDate(2024, 3, 15)},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	third := rs.Current()
	if calls != 2 {
		t.Errorf("report not rebuilt after mutation, calls = %d", calls)
	}
	if third.TotalBills != 2 {
		t.Errorf("third report = %+v", third)
	}
}
