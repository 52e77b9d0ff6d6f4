package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"afipimport/internal/service"
)

// ContentType is the MIME type of the generated export.
const ContentType = "text/csv; charset=utf-8"

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Line",
	"Doc Type",
	"Reference",
	"Issuer",
	"Outcome",
	"Invoice ID",
	"Party ID",
	"Differences",
}

// Writer wraps csv.Writer for exporting import outcomes as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteOutcomes writes one row per imported line.
func (w *Writer) WriteOutcomes(outcomes []service.InvoiceOutcome) error {
	for i := range outcomes {
		if err := w.csv.Write(outcomeToRow(&outcomes[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteResult writes the BOM, the header and every outcome of result.
func WriteResult(out io.Writer, result *service.ImportResult) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteOutcomes(result.Invoices); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// outcomeToRow converts a single outcome to a row. Skipped duplicates have no
// invoice id.
func outcomeToRow(o *service.InvoiceOutcome) []string {
	row := make([]string, len(columns))
	row[0] = strconv.Itoa(o.Line)
	row[1] = o.DocType
	row[2] = o.Reference
	row[3] = o.IssuerName
	row[4] = string(o.Outcome)
	row[5] = formatID(o.InvoiceID)
	row[6] = formatID(o.PartyID)

	diffs := make([]string, 0, len(o.Mismatches))
	for _, m := range o.Mismatches {
		diffs = append(diffs, m.String())
	}
	row[7] = strings.Join(diffs, "; ")
	return row
}

func formatID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "import"
	}
	return s
}

// BuildFilename returns a sanitized report filename.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(strings.TrimSuffix(name, extOf(name)))
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}
