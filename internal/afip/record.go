package afip

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one invoice row of the AFIP "Mis Comprobantes Recibidos" export.
type Record struct {
	// Line is the 1-based row number in the file, header included.
	Line              int
	Date              time.Time
	DocType           string
	PointOfSale       string
	NumberFrom        string
	NumberTo          string
	AuthorizationCode string
	IssuerIDType      string
	IssuerIDNumber    string
	IssuerName        string
	ExchangeRate      decimal.Decimal
	Currency          string
	TaxedNet          decimal.Decimal
	NotTaxedNet       decimal.Decimal
	ExemptOperations  decimal.Decimal
	VAT               decimal.Decimal
	Total             decimal.Decimal
}

// DocTypeCode returns the normalized 3-digit voucher code.
func (r Record) DocTypeCode() string {
	return NormalizeDocType(r.DocType)
}

// Reference formats the invoice number as <point of sale>-<number>, zero padded to 5 and 8 digits.
func (r Record) Reference() string {
	return fmt.Sprintf("%s-%s", zfill(r.PointOfSale, 5), zfill(r.NumberFrom, 8))
}

// IsCreditNote reports whether the row's voucher type is a credit note.
func (r Record) IsCreditNote() bool {
	return IsCreditNote(r.DocTypeCode())
}

// IsTotalOnly reports whether only the total is populated, as on type C vouchers.
func (r Record) IsTotalOnly() bool {
	return r.TaxedNet.IsZero() && r.NotTaxedNet.IsZero() &&
		r.ExemptOperations.IsZero() && r.VAT.IsZero()
}

// CurrencyCode returns the ISO code for the row's currency symbol.
func (r Record) CurrencyCode() string {
	return CurrencyCode(r.Currency)
}

// FiscalIDType returns the stored identifier type of the issuer, e.g. "fiscal_cuit".
func (r Record) FiscalIDType() string {
	return FiscalIDType(r.IssuerIDType)
}

// Sign is -1 for credit notes and 1 otherwise.
func (r Record) Sign() decimal.Decimal {
	if r.IsCreditNote() {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

func zfill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := make([]byte, width-len(s))
	for i := range pad {
		pad[i] = '0'
	}
	return string(pad) + s
}
