package port

import (
	"context"

	"github.com/google/uuid"

	"afipimport/internal/domain"
)

// LedgerService is the accounting ledger that owns invoices and their lines.
type LedgerService interface {
	// FindInvoice returns domain.ErrInvoiceNotFound when no invoice matches.
	FindInvoice(ctx context.Context, partyID uuid.UUID, direction domain.InvoiceDirection, docType, reference string) (*domain.Invoice, error)
	// DefaultJournal returns domain.ErrJournalNotFound when no journal of the type exists.
	DefaultJournal(ctx context.Context, journalType domain.JournalType) (*domain.Journal, error)
	// CreateInvoice persists a draft header and assigns inv.ID.
	CreateInvoice(ctx context.Context, inv *domain.Invoice) error
	// ApplyDirectionDefaults fills the fields the ledger derives from the invoice direction.
	ApplyDirectionDefaults(ctx context.Context, inv *domain.Invoice) error
	// SetLines stores the lines and leaves them, with their ids, on inv.Lines.
	SetLines(ctx context.Context, inv *domain.Invoice, lines []domain.InvoiceLine) error
	ComputeTotals(ctx context.Context, inv *domain.Invoice) (*domain.InvoiceTotals, error)
	DeleteLines(ctx context.Context, inv *domain.Invoice, lineIDs []uuid.UUID) error
	BulkValidate(ctx context.Context, invoiceIDs []uuid.UUID) error
}
