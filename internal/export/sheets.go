package export

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"contas/internal/services"
)

// SheetsConfig identifies the target spreadsheet and the service
// account used to write to it.
type SheetsConfig struct {
	CredentialsFile string
	SpreadsheetID   string
	SheetName       string
}

func (c SheetsConfig) Validate() error {
	if c.CredentialsFile == "" {
		return fmt.Errorf("missing Google credentials file")
	}
	if c.SpreadsheetID == "" {
		return fmt.Errorf("missing spreadsheet id")
	}
	if c.SheetName == "" {
		return fmt.Errorf("missing sheet name")
	}
	return nil
}

// SheetsExporter appends report snapshots to a Google Sheets
// spreadsheet, one block of rows per export.
type SheetsExporter struct {
	srv *sheets.Service
	cfg SheetsConfig
}

func NewSheetsExporter(ctx context.Context, cfg SheetsConfig) (*SheetsExporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsExporter{srv: srv, cfg: cfg}, nil
}

// AppendReport appends the report as rows and returns the updated
// range reference.
func (e *SheetsExporter) AppendReport(ctx context.Context, r services.Report) (string, error) {
	values := [][]any{
		{"Relatorio", r.GeneratedAt.Format("2006-01-02 15:04")},
		{"Total de contas", r.TotalBills},
		{"Valor total", r.TotalAmount.Reais()},
		{"Pagas", r.PaidAmount.Reais()},
		{"Pendentes", r.PendingAmount.Reais()},
		{"Vencidas", r.OverdueAmount.Reais()},
		{"Descricao", "Total (R$)"},
	}
	for _, dt := range r.ByDescription {
		values = append(values, []any{dt.Description, dt.Total.Reais()})
	}
	values = append(values, []any{"Mes", "Total (R$)"})
	for _, mt := range r.ByMonth {
		values = append(values, []any{mt.Month.String(), mt.Total.Reais()})
	}

	vr := &sheets.ValueRange{Values: values}
	resp, err := e.srv.Spreadsheets.Values.
		Append(e.cfg.SpreadsheetID, e.cfg.SheetName+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to spreadsheet: %w", err)
	}
	if resp.Updates == nil {
		return "", nil
	}
	return resp.Updates.UpdatedRange, nil
}
