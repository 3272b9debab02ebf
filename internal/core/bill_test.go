package core

import (
	"errors"
	"strings"
	"testing"
)

func validOneOff() Bill {
	return Bill{
		Description: "Rent",
		Amount:      Money{Cents: 150000},
		Schedule:    OneOff{DueDate: NewDate(2024, 3, 1)},
		Status:      StatusPending,
	}
}

func TestBillValidateOneOff(t *testing.T) {
	if err := validOneOff().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	b := validOneOff()
	b.Description = "   "
	if err := b.Validate(); !errors.Is(err, ErrEmptyDescription) {
		t.Fatalf("blank description: got %v", err)
	}

	b = validOneOff()
	b.Description = strings.Repeat("x", 201)
	if err := b.Validate(); !errors.Is(err, ErrInvalidDescription) {
		t.Fatalf("long description: got %v", err)
	} else if errors.Is(err, ErrEmptyDescription) {
		t.Fatal("long description must not report as empty")
	}

	b = validOneOff()
	b.Amount = Money{Cents: 0}
	if err := b.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: got %v", err)
	}

	b = validOneOff()
	b.Schedule = OneOff{}
	if err := b.Validate(); !errors.Is(err, ErrMissingDueDate) {
		t.Fatalf("empty due date: got %v", err)
	}

	b = validOneOff()
	b.Schedule = nil
	if err := b.Validate(); !errors.Is(err, ErrMissingDueDate) {
		t.Fatalf("nil schedule: got %v", err)
	}
}

func TestBillValidateRecurring(t *testing.T) {
	good := Bill{
		Description: "Internet",
		Amount:      Money{Cents: 9990},
		Schedule:    Recurring{InstallmentCount: 12, FixedDueDay: 10},
		Status:      StatusPending,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	b := good
	b.Schedule = Recurring{InstallmentCount: 0}
	if err := b.Validate(); !errors.Is(err, ErrInvalidRecurrence) {
		t.Fatalf("zero installments: got %v", err)
	}

	b = good
	b.Schedule = Recurring{InstallmentCount: 3, FixedDueDay: 32}
	if err := b.Validate(); !errors.Is(err, ErrInvalidRecurrence) {
		t.Fatalf("day 32: got %v", err)
	}

	b = good
	b.Schedule = Recurring{
		InstallmentCount: 3,
		PeriodStart:      YearMonth{Year: 2024, Month: 6},
		PeriodEnd:        YearMonth{Year: 2024, Month: 2},
	}
	if err := b.Validate(); !errors.Is(err, ErrInvalidRecurrence) {
		t.Fatalf("inverted period: got %v", err)
	}

	// A recurring bill needs no due date.
	if _, ok := good.DueDate(); ok {
		t.Fatal("recurring bill should not expose a due date")
	}
	if !good.IsRecurring() {
		t.Fatal("expected IsRecurring")
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"pendente", StatusPending, true},
		{"pending", StatusPending, true},
		{"", StatusPending, true},
		{"paga", StatusPaid, true},
		{"pago", StatusPaid, true},
		{"PAID", StatusPaid, true},
		{"vencida", StatusOverdue, true},
		{"overdue", StatusOverdue, true},
		{"quitada", StatusPending, false},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.in)
		if got != tc.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if tc.ok != (err == nil) {
			t.Errorf("ParseStatus(%q) error = %v, want ok=%v", tc.in, err, tc.ok)
		}
	}
}
