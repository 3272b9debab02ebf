// Package snapshot persists the last confirmed bill collection in a
// local SQLite file. The store writes it after every successful sync
// and reads it back when the remote service is unreachable.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"contas/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Replace overwrites the stored collection in one transaction,
// preserving the order the bills arrived in.
func (r *SQLiteRepository) Replace(ctx context.Context, bills []core.Bill) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bills`); err != nil {
		return fmt.Errorf("clear bills: %w", err)
	}

	const insert = `
		INSERT INTO bills (
			id, description, amount_cents, recurring,
			due_date, period_start, period_end, fixed_due_day,
			installment_count, installment_number, installment_total,
			status, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i, b := range bills {
		row := toRow(b)
		_, err := tx.ExecContext(ctx, insert,
			row.id, row.description, row.amountCents, row.recurring,
			row.dueDate, row.periodStart, row.periodEnd, row.fixedDueDay,
			row.installmentCount, row.installmentNumber, row.installmentTotal,
			row.status, i)
		if err != nil {
			return fmt.Errorf("insert bill %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load returns the stored collection in its original order.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, recurring,
		       due_date, period_start, period_end, fixed_due_day,
		       installment_count, installment_number, installment_total,
		       status
		FROM bills ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		var row billRow
		err := rows.Scan(
			&row.id, &row.description, &row.amountCents, &row.recurring,
			&row.dueDate, &row.periodStart, &row.periodEnd, &row.fixedDueDay,
			&row.installmentCount, &row.installmentNumber, &row.installmentTotal,
			&row.status)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		b, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return bills, nil
}

type billRow struct {
	id                string
	description       string
	amountCents       int64
	recurring         bool
	dueDate           sql.NullString
	periodStart       sql.NullString
	periodEnd         sql.NullString
	fixedDueDay       int
	installmentCount  int
	installmentNumber int
	installmentTotal  int
	status            string
}

func toRow(b core.Bill) billRow {
	row := billRow{
		id:                b.ID,
		description:       b.Description,
		amountCents:       b.Amount.Cents,
		status:            string(b.Status),
		installmentNumber: b.Installment.Number,
		installmentTotal:  b.Installment.Total,
	}
	switch s := b.Schedule.(type) {
	case core.OneOff:
		if !s.DueDate.IsZero() {
			row.dueDate = sql.NullString{String: s.DueDate.String(), Valid: true}
		}
	case core.Recurring:
		row.recurring = true
		row.fixedDueDay = s.FixedDueDay
		row.installmentCount = s.InstallmentCount
		if !s.PeriodStart.IsZero() {
			row.periodStart = sql.NullString{String: s.PeriodStart.String(), Valid: true}
		}
		if !s.PeriodEnd.IsZero() {
			row.periodEnd = sql.NullString{String: s.PeriodEnd.String(), Valid: true}
		}
	}
	return row
}

func fromRow(row billRow) (core.Bill, error) {
	status, _ := core.ParseStatus(row.status)
	b := core.Bill{
		ID:          row.id,
		Description: row.description,
		Amount:      core.Money{Cents: row.amountCents},
		Status:      status,
		Installment: core.Installment{Number: row.installmentNumber, Total: row.installmentTotal},
	}

	if row.recurring {
		rec := core.Recurring{
			InstallmentCount: row.installmentCount,
			FixedDueDay:      row.fixedDueDay,
		}
		var err error
		if row.periodStart.Valid {
			if rec.PeriodStart, err = core.ParseYearMonth(row.periodStart.String); err != nil {
				return core.Bill{}, fmt.Errorf("bill %s: %w", row.id, err)
			}
		}
		if row.periodEnd.Valid {
			if rec.PeriodEnd, err = core.ParseYearMonth(row.periodEnd.String); err != nil {
				return core.Bill{}, fmt.Errorf("bill %s: %w", row.id, err)
			}
		}
		b.Schedule = rec
		return b, nil
	}

	var due core.Date
	if row.dueDate.Valid {
		var err error
		if due, err = core.ParseDate(row.dueDate.String); err != nil {
			return core.Bill{}, fmt.Errorf("bill %s: %w", row.id, err)
		}
	}
	b.Schedule = core.OneOff{DueDate: due}
	return b, nil
}
