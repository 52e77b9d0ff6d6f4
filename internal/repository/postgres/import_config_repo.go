package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"afipimport/internal/domain"
	"afipimport/internal/port"
)

type importConfigRepo struct {
	db *sqlx.DB
}

// NewImportConfigRepo creates a new PostgreSQL-backed ConfigurationService.
func NewImportConfigRepo(db *sqlx.DB) port.ConfigurationService {
	return &importConfigRepo{db: db}
}

// accountRef and taxRef scan a LEFT JOINed account or tax that may be absent.
type accountRef struct {
	ID   uuid.NullUUID  `db:"id"`
	Code sql.NullString `db:"code"`
	Name sql.NullString `db:"name"`
}

func (a accountRef) toDomain() *domain.Account {
	if !a.ID.Valid {
		return nil
	}
	return &domain.Account{ID: a.ID.UUID, Code: a.Code.String, Name: a.Name.String}
}

type taxRef struct {
	ID   uuid.NullUUID       `db:"id"`
	Name sql.NullString      `db:"name"`
	Kind sql.NullString      `db:"kind"`
	Rate decimal.NullDecimal `db:"rate"`
}

func (t taxRef) toDomain() *domain.Tax {
	if !t.ID.Valid {
		return nil
	}
	return &domain.Tax{ID: t.ID.UUID, Name: t.Name.String, Kind: domain.TaxKind(t.Kind.String), Rate: t.Rate.Decimal}
}

func (r *importConfigRepo) Company(ctx context.Context, companyID uuid.UUID) (*domain.Company, error) {
	var company domain.Company
	err := r.db.GetContext(ctx, &company,
		`SELECT id, party_id, name, created_at, updated_at FROM companies WHERE id = $1`, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("importConfigRepo.Company: %w", err)
	}
	return &company, nil
}

// CompanyConfig returns the company's import setup. A company without a
// config row gets an empty config so every missing setting is reported by the
// row that needs it.
func (r *importConfigRepo) CompanyConfig(ctx context.Context, companyID uuid.UUID) (*domain.CompanyImportConfig, error) {
	var row struct {
		TaxesDeductibleRateZero bool       `db:"taxes_deductible_rate_zero"`
		Account                 accountRef `db:"account"`
		TaxedNet                taxRef     `db:"taxed_net"`
		NotTaxedNet             taxRef     `db:"not_taxed_net"`
		Exempt                  taxRef     `db:"exempt"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT c.taxes_deductible_rate_zero,
			a.id AS "account.id", a.code AS "account.code", a.name AS "account.name",
			tn.id AS "taxed_net.id", tn.name AS "taxed_net.name", tn.kind AS "taxed_net.kind", tn.rate AS "taxed_net.rate",
			nt.id AS "not_taxed_net.id", nt.name AS "not_taxed_net.name", nt.kind AS "not_taxed_net.kind", nt.rate AS "not_taxed_net.rate",
			ex.id AS "exempt.id", ex.name AS "exempt.name", ex.kind AS "exempt.kind", ex.rate AS "exempt.rate"
		FROM company_import_configs c
		LEFT JOIN accounts a ON a.id = c.default_expense_account_id
		LEFT JOIN taxes tn ON tn.id = c.taxed_net_tax_id
		LEFT JOIN taxes nt ON nt.id = c.not_taxed_net_tax_id
		LEFT JOIN taxes ex ON ex.id = c.exempt_operations_tax_id
		WHERE c.company_id = $1`, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.CompanyImportConfig{CompanyID: companyID}, nil
		}
		return nil, fmt.Errorf("importConfigRepo.CompanyConfig: %w", err)
	}

	return &domain.CompanyImportConfig{
		CompanyID:               companyID,
		DefaultExpenseAccount:   row.Account.toDomain(),
		TaxedNetTax:             row.TaxedNet.toDomain(),
		NotTaxedNetTax:          row.NotTaxedNet.toDomain(),
		ExemptOperationsTax:     row.Exempt.toDomain(),
		TaxesDeductibleRateZero: row.TaxesDeductibleRateZero,
	}, nil
}

func (r *importConfigRepo) PartyConfig(ctx context.Context, companyID, partyID uuid.UUID) (*domain.PartyImportConfig, error) {
	var row struct {
		Account  accountRef `db:"account"`
		TaxedNet taxRef     `db:"taxed_net"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT a.id AS "account.id", a.code AS "account.code", a.name AS "account.name",
			tn.id AS "taxed_net.id", tn.name AS "taxed_net.name", tn.kind AS "taxed_net.kind", tn.rate AS "taxed_net.rate"
		FROM party_import_configs p
		LEFT JOIN accounts a ON a.id = p.expense_account_id
		LEFT JOIN taxes tn ON tn.id = p.taxed_net_tax_id
		WHERE p.company_id = $1 AND p.party_id = $2`, companyID, partyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.PartyImportConfig{PartyID: partyID}, nil
		}
		return nil, fmt.Errorf("importConfigRepo.PartyConfig: %w", err)
	}

	return &domain.PartyImportConfig{
		PartyID:        partyID,
		ExpenseAccount: row.Account.toDomain(),
		TaxedNetTax:    row.TaxedNet.toDomain(),
	}, nil
}
