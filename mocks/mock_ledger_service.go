package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"afipimport/internal/domain"
)

// MockLedgerService is a mock implementation of port.LedgerService.
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) FindInvoice(ctx context.Context, partyID uuid.UUID, direction domain.InvoiceDirection, docType, reference string) (*domain.Invoice, error) {
	args := m.Called(ctx, partyID, direction, docType, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockLedgerService) DefaultJournal(ctx context.Context, journalType domain.JournalType) (*domain.Journal, error) {
	args := m.Called(ctx, journalType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockLedgerService) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockLedgerService) ApplyDirectionDefaults(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockLedgerService) SetLines(ctx context.Context, inv *domain.Invoice, lines []domain.InvoiceLine) error {
	args := m.Called(ctx, inv, lines)
	return args.Error(0)
}

func (m *MockLedgerService) ComputeTotals(ctx context.Context, inv *domain.Invoice) (*domain.InvoiceTotals, error) {
	args := m.Called(ctx, inv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceTotals), args.Error(1)
}

func (m *MockLedgerService) DeleteLines(ctx context.Context, inv *domain.Invoice, lineIDs []uuid.UUID) error {
	args := m.Called(ctx, inv, lineIDs)
	return args.Error(0)
}

func (m *MockLedgerService) BulkValidate(ctx context.Context, invoiceIDs []uuid.UUID) error {
	args := m.Called(ctx, invoiceIDs)
	return args.Error(0)
}
