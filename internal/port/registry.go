package port

import (
	"context"

	"afipimport/internal/domain"
)

// RegistryLookup queries the government taxpayer registry (padrón).
type RegistryLookup interface {
	Lookup(ctx context.Context, fiscalIDNumber string) (*domain.RegistryData, error)
}
