package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"afipimport/internal/domain"
	"afipimport/internal/port"
)

const invoiceColumns = `id, company_id, party_id, party_tax_identifier, direction, state, journal_id,
	invoice_date, currency_code, currency_rate, account_id, invoice_address_id, payment_term_id,
	doc_type, reference, authorization_code, tax_scheme, untaxed_amount, tax_amount, total_amount,
	created_at, updated_at`

type ledgerRepo struct {
	db *sqlx.DB
}

// NewLedgerRepo creates a new PostgreSQL-backed LedgerService.
func NewLedgerRepo(db *sqlx.DB) port.LedgerService {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) FindInvoice(ctx context.Context, partyID uuid.UUID, direction domain.InvoiceDirection, docType, reference string) (*domain.Invoice, error) {
	var inv domain.Invoice
	query := `SELECT ` + invoiceColumns + ` FROM invoices
		WHERE party_id = $1 AND direction = $2 AND doc_type = $3 AND reference = $4`
	err := r.db.GetContext(ctx, &inv, query, partyID, direction, docType, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("ledgerRepo.FindInvoice: %w", err)
	}
	return &inv, nil
}

func (r *ledgerRepo) DefaultJournal(ctx context.Context, journalType domain.JournalType) (*domain.Journal, error) {
	var journal domain.Journal
	err := r.db.GetContext(ctx, &journal,
		`SELECT id, name, type FROM journals WHERE type = $1 ORDER BY is_default DESC, name LIMIT 1`, journalType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJournalNotFound
		}
		return nil, fmt.Errorf("ledgerRepo.DefaultJournal: %w", err)
	}
	return &journal, nil
}

func (r *ledgerRepo) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	inv.ID = uuid.New()
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if inv.State == "" {
		inv.State = domain.InvoiceStateDraft
	}

	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.CompanyID, inv.PartyID, inv.PartyTaxIdentifier, inv.Direction, inv.State, inv.JournalID,
		inv.InvoiceDate, inv.CurrencyCode, inv.CurrencyRate, inv.AccountID, inv.InvoiceAddressID, inv.PaymentTermID,
		inv.DocType, inv.Reference, inv.AuthorizationCode, inv.TaxScheme, inv.UntaxedAmount, inv.TaxAmount, inv.TotalAmount,
		inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ledgerRepo.CreateInvoice: %w", err)
	}
	return nil
}

// ApplyDirectionDefaults fills what the ledger derives from the invoice
// direction and party: the default journal, the payable account, the payment
// term, and the tax scheme taken from the party's VAT regime.
func (r *ledgerRepo) ApplyDirectionDefaults(ctx context.Context, inv *domain.Invoice) error {
	journalType := domain.JournalTypeExpense
	if inv.Direction == domain.InvoiceDirectionOut {
		journalType = domain.JournalTypeRevenue
	}
	if inv.JournalID == nil {
		journal, err := r.DefaultJournal(ctx, journalType)
		switch {
		case err == nil:
			inv.JournalID = &journal.ID
		case !errors.Is(err, domain.ErrJournalNotFound):
			return err
		}
	}

	var party struct {
		IVACondition          domain.IVACondition `db:"iva_condition"`
		AccountPayableID      *uuid.UUID          `db:"account_payable_id"`
		SupplierPaymentTermID *uuid.UUID          `db:"supplier_payment_term_id"`
	}
	err := r.db.GetContext(ctx, &party,
		`SELECT iva_condition, account_payable_id, supplier_payment_term_id FROM parties WHERE id = $1`, inv.PartyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPartyNotFound
		}
		return fmt.Errorf("ledgerRepo.ApplyDirectionDefaults: %w", err)
	}

	if inv.AccountID == nil {
		inv.AccountID = party.AccountPayableID
	}
	if inv.PaymentTermID == nil && inv.Direction == domain.InvoiceDirectionIn {
		inv.PaymentTermID = party.SupplierPaymentTermID
	}
	inv.TaxScheme = string(party.IVACondition)
	return nil
}

func (r *ledgerRepo) SetLines(ctx context.Context, inv *domain.Invoice, lines []domain.InvoiceLine) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledgerRepo.SetLines begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, inv.ID); err != nil {
		return fmt.Errorf("ledgerRepo.SetLines delete: %w", err)
	}

	query := `INSERT INTO invoice_lines (id, invoice_id, category, description, quantity, unit_price,
		account_id, tax_id, taxes_deductible_rate_zero)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	stored := make([]domain.InvoiceLine, len(lines))
	for i := range lines {
		line := lines[i]
		line.ID = uuid.New()
		line.InvoiceID = inv.ID
		_, err := tx.ExecContext(ctx, query,
			line.ID, line.InvoiceID, line.Category, line.Description, line.Quantity, line.UnitPrice,
			line.AccountID, line.TaxID, line.TaxesDeductibleRateZero)
		if err != nil {
			return fmt.Errorf("ledgerRepo.SetLines insert: %w", err)
		}
		stored[i] = line
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledgerRepo.SetLines commit: %w", err)
	}
	inv.Lines = stored
	return nil
}

// ComputeTotals recomputes the invoice amounts from its stored lines and
// persists them on the header.
func (r *ledgerRepo) ComputeTotals(ctx context.Context, inv *domain.Invoice) (*domain.InvoiceTotals, error) {
	var lines []taxedLine
	err := r.db.SelectContext(ctx, &lines, `
		SELECT l.quantity, l.unit_price, t.kind AS tax_kind, t.rate AS tax_rate
		FROM invoice_lines l
		JOIN taxes t ON t.id = l.tax_id
		WHERE l.invoice_id = $1`, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("ledgerRepo.ComputeTotals select: %w", err)
	}

	totals := computeTotals(lines)

	inv.UpdatedAt = time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		UPDATE invoices SET untaxed_amount = $1, tax_amount = $2, total_amount = $3, updated_at = $4
		WHERE id = $5`,
		totals.UntaxedAmount, totals.TaxAmount, totals.TotalAmount, inv.UpdatedAt, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("ledgerRepo.ComputeTotals update: %w", err)
	}
	inv.UntaxedAmount = totals.UntaxedAmount
	inv.TaxAmount = totals.TaxAmount
	inv.TotalAmount = totals.TotalAmount
	return totals, nil
}

func (r *ledgerRepo) DeleteLines(ctx context.Context, inv *domain.Invoice, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		return nil
	}
	ids := make([]string, len(lineIDs))
	for i, id := range lineIDs {
		ids[i] = id.String()
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM invoice_lines WHERE invoice_id = $1 AND id = ANY($2::uuid[])`, inv.ID, ids)
	if err != nil {
		return fmt.Errorf("ledgerRepo.DeleteLines: %w", err)
	}
	return nil
}

// BulkValidate moves the given draft invoices to the validated state in one
// transaction. Non-draft invoices abort the whole batch.
func (r *ledgerRepo) BulkValidate(ctx context.Context, invoiceIDs []uuid.UUID) error {
	if len(invoiceIDs) == 0 {
		return nil
	}
	ids := make([]string, len(invoiceIDs))
	for i, id := range invoiceIDs {
		ids[i] = id.String()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledgerRepo.BulkValidate begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE invoices SET state = $1, updated_at = NOW()
		WHERE id = ANY($2::uuid[]) AND state = $3`,
		domain.InvoiceStateValidated, ids, domain.InvoiceStateDraft)
	if err != nil {
		return fmt.Errorf("ledgerRepo.BulkValidate: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows != int64(len(ids)) {
		return domain.ErrInvoiceNotDraft
	}
	return tx.Commit()
}
