package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"afipimport/internal/domain"
)

// MockConfigurationService is a mock implementation of port.ConfigurationService.
type MockConfigurationService struct {
	mock.Mock
}

func (m *MockConfigurationService) Company(ctx context.Context, companyID uuid.UUID) (*domain.Company, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockConfigurationService) CompanyConfig(ctx context.Context, companyID uuid.UUID) (*domain.CompanyImportConfig, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompanyImportConfig), args.Error(1)
}

func (m *MockConfigurationService) PartyConfig(ctx context.Context, companyID, partyID uuid.UUID) (*domain.PartyImportConfig, error) {
	args := m.Called(ctx, companyID, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PartyImportConfig), args.Error(1)
}
