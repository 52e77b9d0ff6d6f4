package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afipimport/internal/domain"
	"afipimport/internal/reconcile"
	"afipimport/internal/service"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)

	assert.Len(t, row, 8)
	assert.Equal(t, "Line", row[0])
	assert.Equal(t, "Differences", row[7])
}

func TestWriteResult(t *testing.T) {
	invoiceID := uuid.New()
	partyID := uuid.New()
	result := &service.ImportResult{
		Rows: 2,
		Invoices: []service.InvoiceOutcome{
			{
				Line:       2,
				InvoiceID:  invoiceID,
				PartyID:    partyID,
				DocType:    "001",
				Reference:  "00003-00001234",
				IssuerName: "ACME SA",
				Outcome:    domain.ImportOutcomeFlagged,
				Mismatches: []reconcile.Mismatch{
					{Field: "vat", Declared: decimal.NewFromInt(21), Computed: decimal.NewFromInt(20)},
					{Field: "total", Declared: decimal.NewFromInt(121), Computed: decimal.NewFromInt(120)},
				},
			},
			{
				Line:       3,
				PartyID:    partyID,
				DocType:    "001",
				Reference:  "00003-00001235",
				IssuerName: "ACME SA",
				Outcome:    domain.ImportOutcomeSkippedDuplicate,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, result))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), BOM))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"2", "001", "00003-00001234", "ACME SA", "flagged", invoiceID.String(), partyID.String(),
		"vat: declared 21, computed 20; total: declared 121, computed 120",
	}, rows[1])
	assert.Equal(t, "skipped_duplicate", rows[2][4])
	assert.Empty(t, rows[2][5])
	assert.Empty(t, rows[2][7])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"comprobantes", "comprobantes"},
		{"Mis Comprobantes Recibidos", "Mis_Comprobantes_Recibidos"},
		{"junio/2024 (final)", "junio_2024_final"},
		{"___", "import"},
		{"", "import"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	date := time.Now().Format("2006-01-02")
	assert.Equal(t, "comprobantes_junio_"+date+".csv", BuildFilename("comprobantes junio.csv", "csv"))
	assert.Equal(t, "import_"+date+".xlsx", BuildFilename("", "xlsx"))
}
