package domain

// InvoiceDirection distinguishes supplier (incoming) from customer invoices.
type InvoiceDirection string

const (
	InvoiceDirectionIn  InvoiceDirection = "in"
	InvoiceDirectionOut InvoiceDirection = "out"
)

// InvoiceState represents the lifecycle of an invoice in the ledger.
type InvoiceState string

const (
	InvoiceStateDraft     InvoiceState = "draft"
	InvoiceStateValidated InvoiceState = "validated"
)

// JournalType classifies ledger journals.
type JournalType string

const (
	JournalTypeExpense JournalType = "expense"
	JournalTypeRevenue JournalType = "revenue"
)

// IVACondition is a party's VAT regime as registered with AFIP.
type IVACondition string

const (
	IVAConditionResponsableInscripto IVACondition = "responsable_inscripto"
	IVAConditionMonotributo          IVACondition = "monotributo"
	IVAConditionExento               IVACondition = "exento"
	IVAConditionConsumidorFinal      IVACondition = "consumidor_final"
)

// DocumentKind is the AFIP numeric identity document code (80=CUIT, 86=CUIL, 96=DNI).
type DocumentKind string

const (
	DocumentKindCUIT DocumentKind = "80"
	DocumentKindCUIL DocumentKind = "86"
	DocumentKindDNI  DocumentKind = "96"
)

// LineCategory is the AFIP amount bucket an invoice line was derived from.
type LineCategory string

const (
	LineCategoryTaxedNet         LineCategory = "taxed_net"
	LineCategoryNotTaxedNet      LineCategory = "not_taxed_net"
	LineCategoryExemptOperations LineCategory = "exempt_operations"
)

// TaxKind tells the ledger which AFIP total a tax contributes to.
type TaxKind string

const (
	TaxKindVAT      TaxKind = "vat"
	TaxKindNotTaxed TaxKind = "not_taxed"
	TaxKindExempt   TaxKind = "exempt"
)

// ReconciliationStatus is the outcome of comparing declared and computed totals.
type ReconciliationStatus string

const (
	ReconciliationPending   ReconciliationStatus = "pending"
	ReconciliationValidated ReconciliationStatus = "validated"
	ReconciliationFlagged   ReconciliationStatus = "flagged"
)

// ImportOutcome describes what happened to one row of an import file.
type ImportOutcome string

const (
	ImportOutcomeValidated        ImportOutcome = "validated"
	ImportOutcomeFlagged          ImportOutcome = "flagged"
	ImportOutcomeSkippedDuplicate ImportOutcome = "skipped_duplicate"
)
