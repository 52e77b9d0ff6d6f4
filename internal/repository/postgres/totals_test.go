package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"afipimport/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals_Itemized(t *testing.T) {
	totals := computeTotals([]taxedLine{
		{Quantity: d("1"), UnitPrice: d("100"), TaxKind: domain.TaxKindVAT, TaxRate: d("0.21")},
		{Quantity: d("1"), UnitPrice: d("10"), TaxKind: domain.TaxKindNotTaxed, TaxRate: d("0")},
		{Quantity: d("1"), UnitPrice: d("5"), TaxKind: domain.TaxKindExempt, TaxRate: d("0")},
	})

	assert.True(t, totals.UntaxedAmount.Equal(d("115")))
	assert.True(t, totals.TaxAmount.Equal(d("21")))
	assert.True(t, totals.TotalAmount.Equal(d("136")))
	assert.True(t, totals.TaxedNet.Equal(d("100")))
	assert.True(t, totals.NotTaxedNet.Equal(d("10")))
	assert.True(t, totals.ExemptOperations.Equal(d("5")))
	assert.True(t, totals.VAT.Equal(d("21")))
}

func TestComputeTotals_CreditNote(t *testing.T) {
	totals := computeTotals([]taxedLine{
		{Quantity: d("-1"), UnitPrice: d("50"), TaxKind: domain.TaxKindVAT, TaxRate: d("0")},
	})

	assert.True(t, totals.TotalAmount.Equal(d("-50")))
	assert.True(t, totals.TaxedNet.Equal(d("50")))
	assert.True(t, totals.VAT.IsZero())
}

func TestComputeTotals_RoundsTax(t *testing.T) {
	totals := computeTotals([]taxedLine{
		{Quantity: d("1"), UnitPrice: d("33.33"), TaxKind: domain.TaxKindVAT, TaxRate: d("0.105")},
	})

	assert.True(t, totals.VAT.Equal(d("3.50")))
	assert.True(t, totals.TotalAmount.Equal(d("36.83")))
}

func TestComputeTotals_NoLines(t *testing.T) {
	totals := computeTotals(nil)

	assert.True(t, totals.TotalAmount.IsZero())
	assert.True(t, totals.TaxedNet.IsZero())
}
