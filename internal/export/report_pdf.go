// Package export renders the bill report to PDF, XLSX and a Google
// Sheets spreadsheet.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"contas/internal/services"
)

// BuildReportPDF renders the report as a single-page A4 PDF.
func BuildReportPDF(r services.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Relatorio de Contas")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Gerado em: %s", r.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total de contas: %d", r.TotalBills))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Valor total: %s", r.TotalAmount.BRL()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Pagas: %s", r.PaidAmount.BRL()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Pendentes: %s", r.PendingAmount.BRL()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Vencidas: %s", r.OverdueAmount.BRL()))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 6, "Descricao", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, dt := range r.ByDescription {
		pdf.CellFormat(90, 6, dt.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, dt.Total.BRL(), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 6, "Mes", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, mt := range r.ByMonth {
		pdf.CellFormat(90, 6, mt.Month.String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, mt.Total.BRL(), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
