package service

import (
	"github.com/shopspring/decimal"

	"afipimport/internal/afip"
	"afipimport/internal/domain"
)

// LineBuilder derives invoice lines from the amounts declared in a row.
type LineBuilder struct{}

// NewLineBuilder creates a new LineBuilder.
func NewLineBuilder() *LineBuilder {
	return &LineBuilder{}
}

// itemizedCategories is the order in which category lines are emitted.
var itemizedCategories = []domain.LineCategory{
	domain.LineCategoryTaxedNet,
	domain.LineCategoryNotTaxedNet,
	domain.LineCategoryExemptOperations,
}

// BuildLines returns the lines for inv. Total-only rows produce a single
// not-taxed line for the total; other rows produce one line per non-zero
// category amount. Credit notes carry quantity -1. partyCfg may be nil.
// Account and taxes are only required for the lines actually emitted.
func (b *LineBuilder) BuildLines(rec afip.Record, inv *domain.Invoice, companyCfg *domain.CompanyImportConfig, partyCfg *domain.PartyImportConfig) ([]domain.InvoiceLine, error) {
	quantity := rec.Sign()

	if rec.IsTotalOnly() {
		line, err := buildLine(domain.LineCategoryNotTaxedNet, rec.Total, quantity, inv, companyCfg, partyCfg)
		if err != nil {
			return nil, err
		}
		return []domain.InvoiceLine{line}, nil
	}

	lines := make([]domain.InvoiceLine, 0, len(itemizedCategories))
	for _, category := range itemizedCategories {
		amount := categoryAmount(rec, category)
		if amount.IsZero() {
			continue
		}
		line, err := buildLine(category, amount, quantity, inv, companyCfg, partyCfg)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func buildLine(
	category domain.LineCategory,
	amount, quantity decimal.Decimal,
	inv *domain.Invoice,
	companyCfg *domain.CompanyImportConfig,
	partyCfg *domain.PartyImportConfig,
) (domain.InvoiceLine, error) {
	account, err := expenseAccount(inv, companyCfg, partyCfg)
	if err != nil {
		return domain.InvoiceLine{}, err
	}
	tax, err := categoryTax(category, inv, companyCfg, partyCfg)
	if err != nil {
		return domain.InvoiceLine{}, err
	}
	return newLine(category, amount, quantity, account, tax, inv, companyCfg), nil
}

func newLine(
	category domain.LineCategory,
	amount, quantity decimal.Decimal,
	account *domain.Account,
	tax *domain.Tax,
	inv *domain.Invoice,
	companyCfg *domain.CompanyImportConfig,
) domain.InvoiceLine {
	return domain.InvoiceLine{
		InvoiceID:               inv.ID,
		Category:                category,
		Description:             account.Name,
		Quantity:                quantity,
		UnitPrice:               amount,
		AccountID:               account.ID,
		TaxID:                   tax.ID,
		TaxesDeductibleRateZero: companyCfg.TaxesDeductibleRateZero,
	}
}

func expenseAccount(inv *domain.Invoice, companyCfg *domain.CompanyImportConfig, partyCfg *domain.PartyImportConfig) (*domain.Account, error) {
	if partyCfg != nil && partyCfg.ExpenseAccount != nil {
		return partyCfg.ExpenseAccount, nil
	}
	if companyCfg.DefaultExpenseAccount != nil {
		return companyCfg.DefaultExpenseAccount, nil
	}
	return nil, domain.NewMissingConfigurationError(inv.Reference, "default expense account")
}

func categoryAmount(rec afip.Record, category domain.LineCategory) decimal.Decimal {
	switch category {
	case domain.LineCategoryTaxedNet:
		return rec.TaxedNet
	case domain.LineCategoryNotTaxedNet:
		return rec.NotTaxedNet
	case domain.LineCategoryExemptOperations:
		return rec.ExemptOperations
	default:
		return decimal.Zero
	}
}

// categoryTax picks the purchase tax for a category. Only the taxed-net tax can
// be overridden per party.
func categoryTax(category domain.LineCategory, inv *domain.Invoice, companyCfg *domain.CompanyImportConfig, partyCfg *domain.PartyImportConfig) (*domain.Tax, error) {
	var tax *domain.Tax
	switch category {
	case domain.LineCategoryTaxedNet:
		if partyCfg != nil && partyCfg.TaxedNetTax != nil {
			tax = partyCfg.TaxedNetTax
		} else {
			tax = companyCfg.TaxedNetTax
		}
	case domain.LineCategoryNotTaxedNet:
		tax = companyCfg.NotTaxedNetTax
	case domain.LineCategoryExemptOperations:
		tax = companyCfg.ExemptOperationsTax
	}
	if tax == nil {
		return nil, domain.NewMissingConfigurationError(inv.Reference, string(category)+" tax")
	}
	return tax, nil
}
