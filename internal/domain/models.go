package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Company is the accounting entity importing the invoices.
type Company struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PartyID   uuid.UUID `db:"party_id" json:"party_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Party is a counterparty identified by its fiscal id.
type Party struct {
	ID                    uuid.UUID    `db:"id" json:"id"`
	Name                  string       `db:"name" json:"name"`
	FiscalIDType          string       `db:"fiscal_id_type" json:"fiscal_id_type"`
	FiscalIDNumber        string       `db:"fiscal_id_number" json:"fiscal_id_number"`
	DocumentKind          DocumentKind `db:"document_kind" json:"document_kind"`
	IVACondition          IVACondition `db:"iva_condition" json:"iva_condition"`
	AccountPayableID      *uuid.UUID   `db:"account_payable_id" json:"account_payable_id"`
	SupplierPaymentTermID *uuid.UUID   `db:"supplier_payment_term_id" json:"supplier_payment_term_id"`
	CreatedAt             time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time    `db:"updated_at" json:"updated_at"`
}

// TaxIdentifier returns the identifier printed on invoices, e.g. "fiscal_cuit 20111111111".
func (p *Party) TaxIdentifier() string {
	if p.FiscalIDNumber == "" {
		return ""
	}
	return p.FiscalIDType + " " + p.FiscalIDNumber
}

// Address is a postal address of a party.
type Address struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PartyID     uuid.UUID `db:"party_id" json:"party_id"`
	Invoice     bool      `db:"invoice" json:"invoice"`
	Street      string    `db:"street" json:"street"`
	PostalCode  string    `db:"postal_code" json:"postal_code"`
	City        string    `db:"city" json:"city"`
	Subdivision string    `db:"subdivision" json:"subdivision"`
	Country     string    `db:"country" json:"country"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RegistryData is the enrichment payload returned by the fiscal registry.
type RegistryData struct {
	Name         string       `json:"name"`
	IVACondition IVACondition `json:"iva_condition"`
	Street       string       `json:"street"`
	PostalCode   string       `json:"postal_code"`
	City         string       `json:"city"`
	Subdivision  string       `json:"subdivision"`
	Country      string       `json:"country"`
}

// IsEmpty reports whether the registry returned nothing usable.
func (d *RegistryData) IsEmpty() bool {
	return d == nil || (d.Name == "" && d.Street == "" && d.City == "")
}

// Account is a ledger account.
type Account struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Code string    `db:"code" json:"code"`
	Name string    `db:"name" json:"name"`
}

// Tax is a purchase tax that can be assigned to invoice lines.
type Tax struct {
	ID   uuid.UUID       `db:"id" json:"id"`
	Name string          `db:"name" json:"name"`
	Kind TaxKind         `db:"kind" json:"kind"`
	Rate decimal.Decimal `db:"rate" json:"rate"`
}

// Journal is a ledger journal.
type Journal struct {
	ID   uuid.UUID   `db:"id" json:"id"`
	Name string      `db:"name" json:"name"`
	Type JournalType `db:"type" json:"type"`
}

// Invoice is a ledger invoice header.
type Invoice struct {
	ID                 uuid.UUID        `db:"id" json:"id"`
	CompanyID          uuid.UUID        `db:"company_id" json:"company_id"`
	PartyID            uuid.UUID        `db:"party_id" json:"party_id"`
	PartyTaxIdentifier string           `db:"party_tax_identifier" json:"party_tax_identifier"`
	Direction          InvoiceDirection `db:"direction" json:"direction"`
	State              InvoiceState     `db:"state" json:"state"`
	JournalID          *uuid.UUID       `db:"journal_id" json:"journal_id"`
	InvoiceDate        time.Time        `db:"invoice_date" json:"invoice_date"`
	CurrencyCode       string           `db:"currency_code" json:"currency_code"`
	CurrencyRate       decimal.Decimal  `db:"currency_rate" json:"currency_rate"`
	AccountID          *uuid.UUID       `db:"account_id" json:"account_id"`
	InvoiceAddressID   *uuid.UUID       `db:"invoice_address_id" json:"invoice_address_id"`
	PaymentTermID      *uuid.UUID       `db:"payment_term_id" json:"payment_term_id"`
	DocType            string           `db:"doc_type" json:"doc_type"`
	Reference          string           `db:"reference" json:"reference"`
	AuthorizationCode  string           `db:"authorization_code" json:"authorization_code"`
	TaxScheme          string           `db:"tax_scheme" json:"tax_scheme"`
	UntaxedAmount      decimal.Decimal  `db:"untaxed_amount" json:"untaxed_amount"`
	TaxAmount          decimal.Decimal  `db:"tax_amount" json:"tax_amount"`
	TotalAmount        decimal.Decimal  `db:"total_amount" json:"total_amount"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
	Lines              []InvoiceLine    `db:"-" json:"lines,omitempty"`
}

// InvoiceLine is a line of an invoice.
type InvoiceLine struct {
	ID                      uuid.UUID       `db:"id" json:"id"`
	InvoiceID               uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	Category                LineCategory    `db:"category" json:"category"`
	Description             string          `db:"description" json:"description"`
	Quantity                decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice               decimal.Decimal `db:"unit_price" json:"unit_price"`
	AccountID               uuid.UUID       `db:"account_id" json:"account_id"`
	TaxID                   uuid.UUID       `db:"tax_id" json:"tax_id"`
	TaxesDeductibleRateZero bool            `db:"taxes_deductible_rate_zero" json:"taxes_deductible_rate_zero"`
}

// InvoiceTotals holds the amounts the ledger derives for an invoice.
type InvoiceTotals struct {
	UntaxedAmount    decimal.Decimal `json:"untaxed_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TaxedNet         decimal.Decimal `json:"taxed_net"`
	NotTaxedNet      decimal.Decimal `json:"not_taxed_net"`
	ExemptOperations decimal.Decimal `json:"exempt_operations"`
	VAT              decimal.Decimal `json:"vat"`
}

// CompanyImportConfig is the per-company accounting setup used when importing.
type CompanyImportConfig struct {
	CompanyID               uuid.UUID `json:"company_id"`
	DefaultExpenseAccount   *Account  `json:"default_expense_account"`
	TaxedNetTax             *Tax      `json:"taxed_net_tax"`
	NotTaxedNetTax          *Tax      `json:"not_taxed_net_tax"`
	ExemptOperationsTax     *Tax      `json:"exempt_operations_tax"`
	TaxesDeductibleRateZero bool      `json:"taxes_deductible_rate_zero"`
}

// PartyImportConfig holds per-party overrides.
type PartyImportConfig struct {
	PartyID        uuid.UUID `json:"party_id"`
	ExpenseAccount *Account  `json:"expense_account"`
	TaxedNetTax    *Tax      `json:"taxed_net_tax"`
}
