package services

import (
	"testing"

	"contas/internal/core"
)

func recurringBill(count, day int, start, end core.YearMonth) core.Bill {
	return core.Bill{
		ID:          "r1",
		Description: "Aluguel",
		Amount:      core.Money{Cents: 180000},
		Status:      core.StatusPending,
		Schedule: core.Recurring{
			InstallmentCount: count,
			FixedDueDay:      day,
			PeriodStart:      start,
			PeriodEnd:        end,
		},
	}
}

func TestExpandInstallments(t *testing.T) {
	tests := []struct {
		name      string
		bill      core.Bill
		wantDates []string
		wantErr   bool
	}{
		{
			name: "period bounds win over installment count",
			bill: recurringBill(12, 5,
				core.YearMonth{Year: 2024, Month: 1},
				core.YearMonth{Year: 2024, Month: 3}),
			wantDates: []string{"2024-01-05", "2024-02-05", "2024-03-05"},
		},
		{
			name: "installment count without period end",
			bill: recurringBill(3, 10,
				core.YearMonth{Year: 2024, Month: 11},
				core.YearMonth{}),
			wantDates: []string{"2024-11-10", "2024-12-10", "2025-01-10"},
		},
		{
			name: "day 31 clamps to shorter months",
			bill: recurringBill(3, 31,
				core.YearMonth{Year: 2024, Month: 1},
				core.YearMonth{}),
			wantDates: []string{"2024-01-31", "2024-02-29", "2024-03-31"},
		},
		{
			name: "missing due day defaults to the first",
			bill: recurringBill(2, 0,
				core.YearMonth{Year: 2024, Month: 6},
				core.YearMonth{}),
			wantDates: []string{"2024-06-01", "2024-07-01"},
		},
		{
			name:    "no period start",
			bill:    recurringBill(3, 5, core.YearMonth{}, core.YearMonth{}),
			wantErr: true,
		},
		{
			name: "inverted period is empty",
			bill: recurringBill(1, 5,
				core.YearMonth{Year: 2024, Month: 6},
				core.YearMonth{Year: 2024, Month: 1}),
			wantErr: true,
		},
		{
			name: "not recurring",
			bill: core.Bill{
				ID:       "o1",
				Schedule: core.OneOff{DueDate: core.NewDate(2024, 3, 1)},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandInstallments(tt.bill)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ExpandInstallments: %v", err)
			}
			if len(got) != len(tt.wantDates) {
				t.Fatalf("got %d occurrences, want %d", len(got), len(tt.wantDates))
			}
			for i, occ := range got {
				if occ.DueDate.String() != tt.wantDates[i] {
					t.Errorf("occurrence %d = %s, want %s", i, occ.DueDate, tt.wantDates[i])
				}
				if occ.Sequence != i+1 || occ.Total != len(tt.wantDates) {
					t.Errorf("occurrence %d numbering = %d/%d", i, occ.Sequence, occ.Total)
				}
			}
		})
	}
}

func TestEffectiveDueDate(t *testing.T) {
	today := core.NewDate(2024, 2, 15)

	oneOff := core.Bill{Schedule: core.OneOff{DueDate: core.NewDate(2024, 3, 1)}}
	if due, ok := EffectiveDueDate(oneOff, today); !ok || due.String() != "2024-03-01" {
		t.Errorf("one-off due = %v, %v", due, ok)
	}

	inPeriod := recurringBill(12, 31,
		core.YearMonth{Year: 2024, Month: 1},
		core.YearMonth{Year: 2024, Month: 12})
	if due, ok := EffectiveDueDate(inPeriod, today); !ok || due.String() != "2024-02-29" {
		t.Errorf("in-period due = %v, %v", due, ok)
	}

	beforePeriod := recurringBill(7, 5,
		core.YearMonth{Year: 2024, Month: 6},
		core.YearMonth{Year: 2024, Month: 12})
	if due, ok := EffectiveDueDate(beforePeriod, today); !ok || due.String() != "2024-06-05" {
		t.Errorf("before-period due = %v, %v", due, ok)
	}

	afterPeriod := recurringBill(6, 5,
		core.YearMonth{Year: 2023, Month: 1},
		core.YearMonth{Year: 2023, Month: 6})
	if due, ok := EffectiveDueDate(afterPeriod, today); !ok || due.String() != "2023-06-05" {
		t.Errorf("after-period due = %v, %v", due, ok)
	}
}
