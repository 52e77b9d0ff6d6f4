package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"afipimport/internal/domain"
)

// MockRegistryLookup is a mock implementation of port.RegistryLookup.
type MockRegistryLookup struct {
	mock.Mock
}

func (m *MockRegistryLookup) Lookup(ctx context.Context, fiscalIDNumber string) (*domain.RegistryData, error) {
	args := m.Called(ctx, fiscalIDNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegistryData), args.Error(1)
}
