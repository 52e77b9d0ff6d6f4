package port

import (
	"context"

	"github.com/google/uuid"

	"afipimport/internal/domain"
)

// PartyService manages counterparties and their addresses.
type PartyService interface {
	// FindParty returns domain.ErrPartyNotFound when no party has the fiscal id.
	FindParty(ctx context.Context, fiscalIDType, fiscalIDNumber string) (*domain.Party, error)
	CreateParty(ctx context.Context, party *domain.Party) error
	ApplyRegistryData(ctx context.Context, party *domain.Party, data *domain.RegistryData) error
	CompanyInvoiceAddress(ctx context.Context, companyID uuid.UUID) (*domain.Address, error)
	// PartyInvoiceAddress returns domain.ErrAddressNotFound when the party has no invoice address.
	PartyInvoiceAddress(ctx context.Context, partyID uuid.UUID) (*domain.Address, error)
	CreateAddress(ctx context.Context, addr *domain.Address) error
}
