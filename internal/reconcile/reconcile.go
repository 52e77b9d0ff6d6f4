// Package reconcile compares the totals declared in an AFIP export row with
// the totals the ledger computed for the imported invoice.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"afipimport/internal/afip"
	"afipimport/internal/domain"
)

// Field names an amount checked during reconciliation.
type Field string

const (
	FieldTaxedNet         Field = "taxed_net"
	FieldNotTaxedNet      Field = "not_taxed_net"
	FieldExemptOperations Field = "exempt_operations"
	FieldVAT              Field = "vat"
	FieldTotal            Field = "total"
)

// Mismatch records a declared amount that differs from the computed one.
type Mismatch struct {
	Field    Field           `json:"field"`
	Declared decimal.Decimal `json:"declared"`
	Computed decimal.Decimal `json:"computed"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: declared %s, computed %s", m.Field, m.Declared, m.Computed)
}

// Result is the reconciliation outcome for one invoice.
type Result struct {
	Status     domain.ReconciliationStatus `json:"status"`
	Mismatches []Mismatch                  `json:"mismatches,omitempty"`
}

// Validated reports whether the invoice may be validated automatically.
func (r Result) Validated() bool {
	return r.Status == domain.ReconciliationValidated
}

type check struct {
	field    Field
	declared func(afip.Record) decimal.Decimal
	computed func(*domain.InvoiceTotals) decimal.Decimal
}

// checks pairs each declared amount with the ledger field it must equal.
var checks = []check{
	{
		field:    FieldTaxedNet,
		declared: func(r afip.Record) decimal.Decimal { return r.TaxedNet },
		computed: func(t *domain.InvoiceTotals) decimal.Decimal { return t.TaxedNet },
	},
	{
		field:    FieldNotTaxedNet,
		declared: func(r afip.Record) decimal.Decimal { return r.NotTaxedNet },
		computed: func(t *domain.InvoiceTotals) decimal.Decimal { return t.NotTaxedNet },
	},
	{
		field:    FieldExemptOperations,
		declared: func(r afip.Record) decimal.Decimal { return r.ExemptOperations },
		computed: func(t *domain.InvoiceTotals) decimal.Decimal { return t.ExemptOperations },
	},
	{
		field:    FieldVAT,
		declared: func(r afip.Record) decimal.Decimal { return r.VAT },
		computed: func(t *domain.InvoiceTotals) decimal.Decimal { return t.VAT },
	},
	{
		field:    FieldTotal,
		declared: func(r afip.Record) decimal.Decimal { return r.Total },
		computed: func(t *domain.InvoiceTotals) decimal.Decimal { return t.TotalAmount },
	},
}

// Reconcile compares declared and computed amounts exactly, without tolerance.
//
// Total-only rows compare the declared total against the computed total
// multiplied by the credit note sign. Itemized rows compare every amount; on
// credit notes the total also matches when it equals the negated computed total.
func Reconcile(rec afip.Record, totals *domain.InvoiceTotals) Result {
	var mismatches []Mismatch

	if rec.IsTotalOnly() {
		computed := totals.TotalAmount.Mul(rec.Sign())
		if !rec.Total.Equal(computed) {
			mismatches = append(mismatches, Mismatch{
				Field: FieldTotal, Declared: rec.Total, Computed: computed,
			})
		}
		return result(mismatches)
	}

	creditNote := rec.IsCreditNote()
	for _, c := range checks {
		declared := c.declared(rec)
		computed := c.computed(totals)
		if c.field == FieldTotal && creditNote && declared.Equal(computed.Neg()) {
			continue
		}
		if !declared.Equal(computed) {
			mismatches = append(mismatches, Mismatch{
				Field: c.field, Declared: declared, Computed: computed,
			})
		}
	}
	return result(mismatches)
}

func result(mismatches []Mismatch) Result {
	if len(mismatches) > 0 {
		return Result{Status: domain.ReconciliationFlagged, Mismatches: mismatches}
	}
	return Result{Status: domain.ReconciliationValidated}
}
