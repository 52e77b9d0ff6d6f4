package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"afipimport/internal/domain"
)

// MockPartyService is a mock implementation of port.PartyService.
type MockPartyService struct {
	mock.Mock
}

func (m *MockPartyService) FindParty(ctx context.Context, fiscalIDType, fiscalIDNumber string) (*domain.Party, error) {
	args := m.Called(ctx, fiscalIDType, fiscalIDNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

func (m *MockPartyService) CreateParty(ctx context.Context, party *domain.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyService) ApplyRegistryData(ctx context.Context, party *domain.Party, data *domain.RegistryData) error {
	args := m.Called(ctx, party, data)
	return args.Error(0)
}

func (m *MockPartyService) CompanyInvoiceAddress(ctx context.Context, companyID uuid.UUID) (*domain.Address, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *MockPartyService) PartyInvoiceAddress(ctx context.Context, partyID uuid.UUID) (*domain.Address, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *MockPartyService) CreateAddress(ctx context.Context, addr *domain.Address) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}
