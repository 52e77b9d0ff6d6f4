package postgres

import (
	"github.com/shopspring/decimal"

	"afipimport/internal/domain"
)

// taxedLine is an invoice line joined with its tax.
type taxedLine struct {
	Quantity  decimal.Decimal `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	TaxKind   domain.TaxKind  `db:"tax_kind"`
	TaxRate   decimal.Decimal `db:"tax_rate"`
}

// computeTotals derives the invoice amounts from its lines. Untaxed, tax and
// total amounts are signed; the AFIP category amounts are absolute values, as
// AFIP reports them for credit notes too.
func computeTotals(lines []taxedLine) *domain.InvoiceTotals {
	var untaxed, tax, taxedNet, notTaxedNet, exempt, vat decimal.Decimal
	for _, l := range lines {
		amount := l.Quantity.Mul(l.UnitPrice).Round(2)
		lineTax := amount.Mul(l.TaxRate).Round(2)
		untaxed = untaxed.Add(amount)
		tax = tax.Add(lineTax)

		switch l.TaxKind {
		case domain.TaxKindVAT:
			taxedNet = taxedNet.Add(amount)
			vat = vat.Add(lineTax)
		case domain.TaxKindNotTaxed:
			notTaxedNet = notTaxedNet.Add(amount)
		case domain.TaxKindExempt:
			exempt = exempt.Add(amount)
		}
	}
	return &domain.InvoiceTotals{
		UntaxedAmount:    untaxed,
		TaxAmount:        tax,
		TotalAmount:      untaxed.Add(tax),
		TaxedNet:         taxedNet.Abs(),
		NotTaxedNet:      notTaxedNet.Abs(),
		ExemptOperations: exempt.Abs(),
		VAT:              vat.Abs(),
	}
}
