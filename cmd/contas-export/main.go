// Command contas-export builds a report from the current bill
// collection and writes it as XLSX, PDF or a Google Sheets append.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"contas/internal/backend"
	"contas/internal/cli"
	"contas/internal/export"
	"contas/internal/log"
	"contas/internal/services"
	"contas/internal/store"
)

func main() {
	format := flag.String("format", "xlsx", "export format: xlsx, pdf or sheets")
	out := flag.String("out", "", "output file path (defaults to contas-YYYYMMDD.<format>)")
	flag.Parse()

	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger("info", "text")
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	switch *format {
	case "xlsx", "pdf", "sheets":
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q: must be xlsx, pdf or sheets\n", *format)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateGateway(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create gateway", log.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Gateway cleanup error", log.FieldError, err)
		}
	}()

	st := store.New(result.Gateway, store.WithLogger(logger))
	if err := st.Refresh(ctx); err != nil {
		logger.Error("Failed to load bills", log.FieldError, err)
		os.Exit(1)
	}

	report := services.BuildReport(st.Bills(), time.Now())
	logger.Info("Report built",
		log.FieldCount, report.TotalBills,
		"total", report.TotalAmount.BRL())

	if *format == "sheets" {
		exportToSheets(ctx, logger, cfg.GoogleCredentialsFile, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, report)
		return
	}

	var data []byte
	switch *format {
	case "xlsx":
		data, err = export.BuildReportXLSX(report)
	case "pdf":
		data, err = export.BuildReportPDF(report)
	}
	if err != nil {
		logger.Error("Failed to build export", log.FieldError, err, log.FieldFormat, *format)
		os.Exit(1)
	}

	path := *out
	if path == "" {
		path = fmt.Sprintf("contas-%s.%s", time.Now().Format("20060102"), *format)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		logger.Error("Failed to write export", log.FieldError, err, "path", path)
		os.Exit(1)
	}
	logger.Info("Export written", "path", path, log.FieldFormat, *format)
}

func exportToSheets(ctx context.Context, logger *log.Logger, credsFile, spreadsheetID, sheetName string, report services.Report) {
	exporter, err := export.NewSheetsExporter(ctx, export.SheetsConfig{
		CredentialsFile: credsFile,
		SpreadsheetID:   spreadsheetID,
		SheetName:       sheetName,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", log.FieldError, err)
		os.Exit(1)
	}

	updatedRange, err := exporter.AppendReport(ctx, report)
	if err != nil {
		logger.Error("Failed to append report to Google Sheets", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Report appended to Google Sheets", log.FieldSheetsRef, updatedRange)
}
