package afip

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ColumnCount is the number of positional columns in the export.
const ColumnCount = 16

// DateLayout is the only accepted date format (DD/MM/YYYY).
const DateLayout = "02/01/2006"

type column struct {
	name  string
	parse func(rec *Record, value string) error
}

// columns is the positional schema of the export, one converter per field.
var columns = [ColumnCount]column{
	{"fecha", dateCol(func(r *Record, v time.Time) { r.Date = v })},
	{"tipo", stringCol(func(r *Record, v string) { r.DocType = v })},
	{"punto_venta", stringCol(func(r *Record, v string) { r.PointOfSale = v })},
	{"numero_desde", stringCol(func(r *Record, v string) { r.NumberFrom = v })},
	{"numero_hasta", stringCol(func(r *Record, v string) { r.NumberTo = v })},
	{"cod_autorizacion", stringCol(func(r *Record, v string) { r.AuthorizationCode = v })},
	{"tipo_doc_emisor", fiscalKindCol(func(r *Record, v string) { r.IssuerIDType = v })},
	{"numero_doc_emisor", stringCol(func(r *Record, v string) { r.IssuerIDNumber = v })},
	{"denominacion_emisor", stringCol(func(r *Record, v string) { r.IssuerName = v })},
	{"tipo_cambio", amountCol(func(r *Record, v decimal.Decimal) { r.ExchangeRate = v })},
	{"moneda", stringCol(func(r *Record, v string) { r.Currency = v })},
	{"neto_gravado", amountCol(func(r *Record, v decimal.Decimal) { r.TaxedNet = v })},
	{"neto_no_gravado", amountCol(func(r *Record, v decimal.Decimal) { r.NotTaxedNet = v })},
	{"op_exentas", amountCol(func(r *Record, v decimal.Decimal) { r.ExemptOperations = v })},
	{"iva", amountCol(func(r *Record, v decimal.Decimal) { r.VAT = v })},
	{"total", amountCol(func(r *Record, v decimal.Decimal) { r.Total = v })},
}

func stringCol(set func(*Record, string)) func(*Record, string) error {
	return func(r *Record, value string) error {
		set(r, strings.TrimSpace(value))
		return nil
	}
}

func dateCol(set func(*Record, time.Time)) func(*Record, string) error {
	return func(r *Record, value string) error {
		v, err := ParseDate(value)
		if err != nil {
			return err
		}
		set(r, v)
		return nil
	}
}

func amountCol(set func(*Record, decimal.Decimal)) func(*Record, string) error {
	return func(r *Record, value string) error {
		v, err := ParseAmount(value)
		if err != nil {
			return err
		}
		set(r, v)
		return nil
	}
}

func fiscalKindCol(set func(*Record, string)) func(*Record, string) error {
	return func(r *Record, value string) error {
		value = strings.TrimSpace(value)
		if _, err := FiscalIDKind(value); err != nil {
			return err
		}
		set(r, value)
		return nil
	}
}

// ParseDate parses a DD/MM/YYYY cell.
func ParseDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, &FormatError{Value: v, Layout: "DD/MM/YYYY"}
	}
	return t, nil
}

// ParseAmount parses a decimal cell. Empty cells are zero.
func ParseAmount(value string) (decimal.Decimal, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", v, err)
	}
	return d, nil
}

// ParseRow converts one data row into a Record.
func ParseRow(row []string) (Record, error) {
	var rec Record
	if len(row) < ColumnCount {
		return Record{}, &ParseError{
			Err: fmt.Errorf("expected %d columns, got %d", ColumnCount, len(row)),
		}
	}
	for i, col := range columns {
		if err := col.parse(&rec, row[i]); err != nil {
			return Record{}, &ParseError{Field: col.name, Err: err}
		}
	}
	return rec, nil
}

// ParseRecords reads a comma-delimited export. The first row is a header and
// is always skipped. Parsing stops at the first malformed row.
func ParseRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	// Issuer names may contain quotes mid-field, e.g. Panaderia "La Espiga" SRL.
	cr.LazyQuotes = true

	var records []Record
	line := 0
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		if line == 1 {
			continue
		}

		rec, err := ParseRow(row)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = line
			}
			return nil, err
		}
		rec.Line = line
		records = append(records, rec)
	}
	return records, nil
}
