// Package report renders import results as XLSX workbooks.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"afipimport/internal/service"
)

const (
	// ContentType is the MIME type of the generated workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	invoicesSheet = "Comprobantes"
	summarySheet  = "Resumen"
)

var invoiceHeaders = []interface{}{
	"Línea", "Tipo", "Referencia", "Emisor", "Resultado", "Factura", "Diferencias",
}

// WriteXLSX writes a workbook with one row per imported line and a summary sheet.
func WriteXLSX(w io.Writer, result *service.ImportResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", invoicesSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := f.SetSheetRow(invoicesSheet, "A1", &invoiceHeaders); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetCellStyle(invoicesSheet, "A1", "G1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i := range result.Invoices {
		inv := &result.Invoices[i]
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			inv.Line,
			inv.DocType,
			inv.Reference,
			inv.IssuerName,
			string(inv.Outcome),
			invoiceID(inv),
			mismatches(inv),
		}
		if err := f.SetSheetRow(invoicesSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(invoicesSheet, "B", "G", 20); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := writeSummary(f, result, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, result *service.ImportResult, bold int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Empresa", result.CompanyID.String()},
		{"Archivo", result.ArchiveKey},
		{"Filas", result.Rows},
		{"Validadas", result.Validated},
		{"A revisar", result.Flagged},
		{"Duplicadas", result.Skipped},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(rows)), bold); err != nil {
		return fmt.Errorf("styling summary: %w", err)
	}
	return f.SetColWidth(summarySheet, "A", "B", 40)
}

func invoiceID(inv *service.InvoiceOutcome) string {
	if inv.InvoiceID == uuid.Nil {
		return ""
	}
	return inv.InvoiceID.String()
}

func mismatches(inv *service.InvoiceOutcome) string {
	parts := make([]string, 0, len(inv.Mismatches))
	for _, m := range inv.Mismatches {
		parts = append(parts, m.String())
	}
	return strings.Join(parts, "; ")
}
