package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"afipimport/internal/domain"
	"afipimport/internal/port"
)

const (
	partyColumns = `id, name, fiscal_id_type, fiscal_id_number, document_kind, iva_condition,
	account_payable_id, supplier_payment_term_id, created_at, updated_at`
	addressColumns = `id, party_id, invoice, street, postal_code, city, subdivision, country, created_at`
)

type partyRepo struct {
	db *sqlx.DB
}

// NewPartyRepo creates a new PostgreSQL-backed PartyService.
func NewPartyRepo(db *sqlx.DB) port.PartyService {
	return &partyRepo{db: db}
}

func (r *partyRepo) FindParty(ctx context.Context, fiscalIDType, fiscalIDNumber string) (*domain.Party, error) {
	var party domain.Party
	err := r.db.GetContext(ctx, &party,
		`SELECT `+partyColumns+` FROM parties WHERE fiscal_id_type = $1 AND fiscal_id_number = $2`,
		fiscalIDType, fiscalIDNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPartyNotFound
		}
		return nil, fmt.Errorf("partyRepo.FindParty: %w", err)
	}
	return &party, nil
}

func (r *partyRepo) CreateParty(ctx context.Context, party *domain.Party) error {
	party.ID = uuid.New()
	now := time.Now().UTC()
	party.CreatedAt = now
	party.UpdatedAt = now

	query := `INSERT INTO parties (` + partyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		party.ID, party.Name, party.FiscalIDType, party.FiscalIDNumber, party.DocumentKind, party.IVACondition,
		party.AccountPayableID, party.SupplierPaymentTermID, party.CreatedAt, party.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateParty
		}
		return fmt.Errorf("partyRepo.CreateParty: %w", err)
	}
	return nil
}

// ApplyRegistryData updates the party name and VAT regime from the registry
// and stores the registered address as the party's invoice address.
func (r *partyRepo) ApplyRegistryData(ctx context.Context, party *domain.Party, data *domain.RegistryData) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("partyRepo.ApplyRegistryData begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if data.Name != "" {
		party.Name = data.Name
	}
	if data.IVACondition != "" {
		party.IVACondition = data.IVACondition
	}
	party.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE parties SET name = $1, iva_condition = $2, updated_at = $3 WHERE id = $4`,
		party.Name, party.IVACondition, party.UpdatedAt, party.ID)
	if err != nil {
		return fmt.Errorf("partyRepo.ApplyRegistryData update: %w", err)
	}

	if data.Street != "" || data.City != "" {
		addr := &domain.Address{
			PartyID:     party.ID,
			Invoice:     true,
			Street:      data.Street,
			PostalCode:  data.PostalCode,
			City:        data.City,
			Subdivision: data.Subdivision,
			Country:     data.Country,
		}
		if err := insertAddress(ctx, tx, addr); err != nil {
			return fmt.Errorf("partyRepo.ApplyRegistryData address: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("partyRepo.ApplyRegistryData commit: %w", err)
	}
	return nil
}

func (r *partyRepo) CompanyInvoiceAddress(ctx context.Context, companyID uuid.UUID) (*domain.Address, error) {
	var addr domain.Address
	err := r.db.GetContext(ctx, &addr, `
		SELECT a.id, a.party_id, a.invoice, a.street, a.postal_code, a.city, a.subdivision, a.country, a.created_at
		FROM addresses a
		JOIN companies c ON c.party_id = a.party_id
		WHERE c.id = $1
		ORDER BY a.invoice DESC, a.created_at
		LIMIT 1`, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, fmt.Errorf("partyRepo.CompanyInvoiceAddress: %w", err)
	}
	return &addr, nil
}

func (r *partyRepo) PartyInvoiceAddress(ctx context.Context, partyID uuid.UUID) (*domain.Address, error) {
	var addr domain.Address
	err := r.db.GetContext(ctx, &addr,
		`SELECT `+addressColumns+` FROM addresses WHERE party_id = $1 ORDER BY invoice DESC, created_at LIMIT 1`,
		partyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, fmt.Errorf("partyRepo.PartyInvoiceAddress: %w", err)
	}
	return &addr, nil
}

func (r *partyRepo) CreateAddress(ctx context.Context, addr *domain.Address) error {
	if err := insertAddress(ctx, r.db, addr); err != nil {
		return fmt.Errorf("partyRepo.CreateAddress: %w", err)
	}
	return nil
}

func insertAddress(ctx context.Context, exec sqlx.ExecerContext, addr *domain.Address) error {
	addr.ID = uuid.New()
	addr.CreatedAt = time.Now().UTC()
	_, err := exec.ExecContext(ctx, `INSERT INTO addresses (`+addressColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		addr.ID, addr.PartyID, addr.Invoice, addr.Street, addr.PostalCode, addr.City,
		addr.Subdivision, addr.Country, addr.CreatedAt)
	return err
}
