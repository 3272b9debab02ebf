package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"contas/internal/services"
)

// BuildReportXLSX renders the report as a workbook with a summary
// sheet and one sheet per breakdown.
func BuildReportXLSX(r services.Report) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "resumo"
	descSheet := "por_descricao"
	monthSheet := "por_mes"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(descSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if _, err := f.NewSheet(monthSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	_ = f.SetCellValue(summarySheet, "A1", "Relatorio de Contas")
	_ = f.SetCellValue(summarySheet, "A3", "Gerado em")
	_ = f.SetCellValue(summarySheet, "B3", r.GeneratedAt.Format("2006-01-02 15:04"))
	_ = f.SetCellValue(summarySheet, "A4", "Total de contas")
	_ = f.SetCellValue(summarySheet, "B4", r.TotalBills)
	_ = f.SetCellValue(summarySheet, "A5", "Valor total")
	_ = f.SetCellValue(summarySheet, "B5", r.TotalAmount.Reais())
	_ = f.SetCellValue(summarySheet, "A6", "Pagas")
	_ = f.SetCellValue(summarySheet, "B6", r.PaidAmount.Reais())
	_ = f.SetCellValue(summarySheet, "A7", "Pendentes")
	_ = f.SetCellValue(summarySheet, "B7", r.PendingAmount.Reais())
	_ = f.SetCellValue(summarySheet, "A8", "Vencidas")
	_ = f.SetCellValue(summarySheet, "B8", r.OverdueAmount.Reais())

	_ = f.SetCellValue(descSheet, "A1", "Descricao")
	_ = f.SetCellValue(descSheet, "B1", "Total (R$)")
	for i, dt := range r.ByDescription {
		row := i + 2
		_ = f.SetCellValue(descSheet, fmt.Sprintf("A%d", row), dt.Description)
		_ = f.SetCellValue(descSheet, fmt.Sprintf("B%d", row), dt.Total.Reais())
	}

	_ = f.SetCellValue(monthSheet, "A1", "Mes")
	_ = f.SetCellValue(monthSheet, "B1", "Total (R$)")
	for i, mt := range r.ByMonth {
		row := i + 2
		_ = f.SetCellValue(monthSheet, fmt.Sprintf("A%d", row), mt.Month.String())
		_ = f.SetCellValue(monthSheet, fmt.Sprintf("B%d", row), mt.Total.Reais())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
