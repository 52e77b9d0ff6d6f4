package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"afipimport/internal/afip"
	"afipimport/internal/domain"
	"afipimport/internal/port"
)

// InvoiceBuilder builds draft supplier invoice headers from export rows.
type InvoiceBuilder struct {
	ledger          port.LedgerService
	parties         port.PartyService
	defaultCurrency string
}

// NewInvoiceBuilder creates a new InvoiceBuilder. Currency symbols missing from
// the symbol table fall back to defaultCurrency.
func NewInvoiceBuilder(ledger port.LedgerService, parties port.PartyService, defaultCurrency string) *InvoiceBuilder {
	if defaultCurrency == "" {
		defaultCurrency = afip.DefaultCurrencyCode
	}
	return &InvoiceBuilder{ledger: ledger, parties: parties, defaultCurrency: defaultCurrency}
}

// BuildHeader returns an unsaved draft invoice for rec, or nil when the party
// already has an incoming invoice with the same voucher type and number.
func (b *InvoiceBuilder) BuildHeader(ctx context.Context, rec afip.Record, party *domain.Party, company *domain.Company) (*domain.Invoice, error) {
	docType := rec.DocTypeCode()
	reference := rec.Reference()

	existing, err := b.ledger.FindInvoice(ctx, party.ID, domain.InvoiceDirectionIn, docType, reference)
	switch {
	case err == nil:
		log.Info().
			Str("component", "invoice_builder").
			Str("reference", reference).
			Str("doc_type", docType).
			Str("invoice_id", existing.ID.String()).
			Msg("invoice already imported, skipping")
		return nil, nil
	case !errors.Is(err, domain.ErrInvoiceNotFound):
		return nil, fmt.Errorf("looking up invoice %s: %w", reference, err)
	}

	inv := &domain.Invoice{
		CompanyID:          company.ID,
		PartyID:            party.ID,
		PartyTaxIdentifier: party.TaxIdentifier(),
		Direction:          domain.InvoiceDirectionIn,
		State:              domain.InvoiceStateDraft,
		InvoiceDate:        rec.Date,
		CurrencyCode:       b.currency(rec.Currency),
		CurrencyRate:       rec.ExchangeRate,
		AccountID:          party.AccountPayableID,
		PaymentTermID:      party.SupplierPaymentTermID,
		DocType:            docType,
		Reference:          reference,
		AuthorizationCode:  rec.AuthorizationCode,
	}

	journal, err := b.ledger.DefaultJournal(ctx, domain.JournalTypeExpense)
	switch {
	case err == nil:
		inv.JournalID = &journal.ID
	case !errors.Is(err, domain.ErrJournalNotFound):
		return nil, fmt.Errorf("loading expense journal: %w", err)
	}

	addr, err := b.parties.PartyInvoiceAddress(ctx, party.ID)
	switch {
	case err == nil:
		inv.InvoiceAddressID = &addr.ID
	case !errors.Is(err, domain.ErrAddressNotFound):
		return nil, fmt.Errorf("loading invoice address of party %s: %w", party.ID, err)
	}

	if err := b.ledger.ApplyDirectionDefaults(ctx, inv); err != nil {
		return nil, fmt.Errorf("applying defaults to %s: %w", reference, err)
	}
	return inv, nil
}

func (b *InvoiceBuilder) currency(symbol string) string {
	if code, ok := afip.LookupCurrencyCode(symbol); ok {
		return code
	}
	return b.defaultCurrency
}
