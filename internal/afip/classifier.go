package afip

import (
	"fmt"
	"strings"

	"afipimport/internal/domain"
)

// creditNoteTypes lists the AFIP voucher codes that reverse a prior invoice.
var creditNoteTypes = map[string]bool{
	"003": true,
	"008": true,
	"013": true,
	"021": true,
	"203": true,
	"208": true,
	"213": true,
}

// docTypeIVACondition maps voucher codes to the issuer's VAT regime they imply.
var docTypeIVACondition = map[string]domain.IVACondition{
	"001": domain.IVAConditionResponsableInscripto,
	"002": domain.IVAConditionResponsableInscripto,
	"003": domain.IVAConditionResponsableInscripto,
	"004": domain.IVAConditionResponsableInscripto,
	"005": domain.IVAConditionResponsableInscripto,
	"011": domain.IVAConditionMonotributo,
	"012": domain.IVAConditionMonotributo,
	"013": domain.IVAConditionMonotributo,
	"015": domain.IVAConditionMonotributo,
}

// fiscalIDKinds maps the issuer document label to its AFIP numeric code.
var fiscalIDKinds = map[string]domain.DocumentKind{
	"CUIT": domain.DocumentKindCUIT,
	"CUIL": domain.DocumentKindCUIL,
	"DNI":  domain.DocumentKindDNI,
}

// currencyCodes maps the currency symbols used in the export to ISO codes.
var currencyCodes = map[string]string{
	"$":   "ARS",
	"U$S": "USD",
}

// DefaultCurrencyCode is used for symbols missing from the currency table.
const DefaultCurrencyCode = "ARS"

// IsCreditNote reports whether the voucher code is a credit note.
func IsCreditNote(docType string) bool {
	return creditNoteTypes[docType]
}

// DefaultIVACondition returns the VAT regime implied by a voucher code.
// The second result is false for codes outside the table.
func DefaultIVACondition(docType string) (domain.IVACondition, bool) {
	cond, ok := docTypeIVACondition[docType]
	return cond, ok
}

// FiscalIDKind maps a CUIT/CUIL/DNI label to its document kind.
func FiscalIDKind(label string) (domain.DocumentKind, error) {
	kind, ok := fiscalIDKinds[strings.ToUpper(strings.TrimSpace(label))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFiscalIDKind, label)
	}
	return kind, nil
}

// FiscalIDType returns the identifier type under which parties are stored,
// e.g. "fiscal_cuit".
func FiscalIDType(label string) string {
	return "fiscal_" + strings.ToLower(strings.TrimSpace(label))
}

// CurrencyCode normalizes a currency symbol, defaulting to ARS.
func CurrencyCode(symbol string) string {
	if code, ok := LookupCurrencyCode(symbol); ok {
		return code
	}
	return DefaultCurrencyCode
}

// LookupCurrencyCode returns the ISO code for a known currency symbol.
func LookupCurrencyCode(symbol string) (string, bool) {
	code, ok := currencyCodes[strings.TrimSpace(symbol)]
	return code, ok
}

// NormalizeDocType extracts the zero-padded 3-digit code from cells such as
// "1 - Factura A" or "011-Factura C".
func NormalizeDocType(raw string) string {
	return zfill(strings.TrimSpace(strings.SplitN(raw, "-", 2)[0]), 3)
}
