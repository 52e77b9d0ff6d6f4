package port

import (
	"context"

	"github.com/google/uuid"

	"afipimport/internal/domain"
)

// ConfigurationService exposes the accounting setup used by the importer.
type ConfigurationService interface {
	// Company returns domain.ErrCompanyNotFound for unknown ids.
	Company(ctx context.Context, companyID uuid.UUID) (*domain.Company, error)
	// CompanyConfig is read once per import and shared by every row.
	CompanyConfig(ctx context.Context, companyID uuid.UUID) (*domain.CompanyImportConfig, error)
	// PartyConfig returns an empty config when the party has no overrides.
	PartyConfig(ctx context.Context, companyID, partyID uuid.UUID) (*domain.PartyImportConfig, error)
}
