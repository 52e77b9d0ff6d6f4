package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"afipimport/internal/afip"
	"afipimport/internal/config"
	"afipimport/internal/domain"
	"afipimport/internal/port"
	"afipimport/internal/service"
	"afipimport/mocks"
)

const exportHeader = "Fecha,Tipo,Punto de Venta,Número Desde,Número Hasta,Cód. Autorización,Tipo Doc. Emisor," +
	"Nro. Doc. Emisor,Denominación Emisor,Tipo Cambio,Moneda,Imp. Neto Gravado,Imp. Neto No Gravado," +
	"Imp. Op. Exentas,IVA,Imp. Total\n"

func exportRow(total string) string {
	return "01/03/2024,001-Factura A,3,1234,1234,74123456789012,CUIT,20111111111,Acme SA,1,$,100,0,0,21," + total + "\n"
}

type importFixture struct {
	ledger   *mocks.MockLedgerService
	parties  *mocks.MockPartyService
	registry *mocks.MockRegistryLookup
	settings *mocks.MockConfigurationService
	storage  *mocks.MockObjectStorage
	notifier *mocks.MockReviewNotifier
	svc      service.ImportService
	company  *domain.Company
	party    *domain.Party
	cfg      *domain.CompanyImportConfig
}

func newImportFixture() *importFixture {
	f := &importFixture{
		ledger:   new(mocks.MockLedgerService),
		parties:  new(mocks.MockPartyService),
		registry: new(mocks.MockRegistryLookup),
		settings: new(mocks.MockConfigurationService),
		storage:  new(mocks.MockObjectStorage),
		notifier: new(mocks.MockReviewNotifier),
		company:  newCompany(),
		party:    vendorParty(),
		cfg:      companyConfig(),
	}
	f.svc = service.NewImportService(
		f.ledger, f.parties, f.registry, f.settings, f.storage, f.notifier,
		&config.S3Config{Bucket: "uploads", MaxFileSizeMB: 1},
		&config.ImportConfig{DefaultCurrency: "ARS", ArchiveUploads: true},
	)
	return f
}

// expectCompany stubs the per-import configuration reads.
func (f *importFixture) expectCompany() {
	f.settings.On("Company", mock.Anything, f.company.ID).Return(f.company, nil)
	f.settings.On("CompanyConfig", mock.Anything, f.company.ID).Return(f.cfg, nil)
}

// expectHeader stubs party resolution and header building for a new invoice.
func (f *importFixture) expectHeader() {
	f.parties.On("FindParty", mock.Anything, "fiscal_cuit", "20111111111").Return(f.party, nil)
	f.ledger.On("FindInvoice", mock.Anything, f.party.ID, domain.InvoiceDirectionIn, "001", "00003-00001234").
		Return(nil, domain.ErrInvoiceNotFound)
	f.ledger.On("DefaultJournal", mock.Anything, domain.JournalTypeExpense).Return(nil, domain.ErrJournalNotFound)
	f.parties.On("PartyInvoiceAddress", mock.Anything, f.party.ID).Return(nil, domain.ErrAddressNotFound)
	f.ledger.On("ApplyDirectionDefaults", mock.Anything, mock.Anything).Return(nil)
	f.settings.On("PartyConfig", mock.Anything, f.company.ID, f.party.ID).Return(&domain.PartyImportConfig{PartyID: f.party.ID}, nil)
}

// expectPersist stubs invoice and line persistence and returns the invoice id.
func (f *importFixture) expectPersist() uuid.UUID {
	id := uuid.New()
	f.ledger.On("CreateInvoice", mock.Anything, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Invoice).ID = id }).
		Return(nil).Once()
	f.ledger.On("SetLines", mock.Anything, mock.AnythingOfType("*domain.Invoice"), mock.Anything).
		Run(func(args mock.Arguments) {
			inv := args.Get(1).(*domain.Invoice)
			lines := args.Get(2).([]domain.InvoiceLine)
			for i := range lines {
				lines[i].ID = uuid.New()
				lines[i].InvoiceID = inv.ID
			}
			inv.Lines = lines
		}).
		Return(nil).Once()
	return id
}

func acmeTotals() *domain.InvoiceTotals {
	return &domain.InvoiceTotals{
		UntaxedAmount: dec("100"),
		TaxAmount:     dec("21"),
		TotalAmount:   dec("121"),
		TaxedNet:      dec("100"),
		VAT:           dec("21"),
	}
}

func TestImportService_Import_Validated(t *testing.T) {
	f := newImportFixture()
	f.expectCompany()
	f.expectHeader()
	id := f.expectPersist()
	f.ledger.On("ComputeTotals", mock.Anything, mock.Anything).Return(acmeTotals(), nil).Once()
	f.ledger.On("BulkValidate", mock.Anything, []uuid.UUID{id}).Return(nil).Once()

	result, err := f.svc.Import(context.Background(), f.company.ID, strings.NewReader(exportHeader+exportRow("121")))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, 1, result.Validated)
	assert.Equal(t, 0, result.Flagged)
	require.Len(t, result.Invoices, 1)
	assert.Equal(t, id, result.Invoices[0].InvoiceID)
	assert.Equal(t, domain.ImportOutcomeValidated, result.Invoices[0].Outcome)
	assert.Equal(t, 2, result.Invoices[0].Line)
	assert.Empty(t, result.NeedsReview())
	f.ledger.AssertExpectations(t)
	f.ledger.AssertNotCalled(t, "DeleteLines", mock.Anything, mock.Anything, mock.Anything)
}

func TestImportService_Import_FlaggedLeftForReview(t *testing.T) {
	f := newImportFixture()
	f.expectCompany()
	f.expectHeader()
	id := f.expectPersist()
	f.ledger.On("ComputeTotals", mock.Anything, mock.Anything).Return(acmeTotals(), nil).Once()
	f.ledger.On("DeleteLines", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	f.ledger.On("ComputeTotals", mock.Anything, mock.Anything).Return(&domain.InvoiceTotals{}, nil).Once()
	f.notifier.On("NotifyReview", mock.Anything, mock.MatchedBy(func(n port.ReviewNotice) bool {
		return n.CompanyID == f.company.ID && n.Flagged == 1 && len(n.Items) == 1 &&
			n.Items[0].InvoiceID == id && n.Items[0].Line == 2 && len(n.Items[0].Differences) == 1
	})).Return(nil)

	result, err := f.svc.Import(context.Background(), f.company.ID, strings.NewReader(exportHeader+exportRow("120")))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Flagged)
	assert.Equal(t, []uuid.UUID{id}, result.NeedsReview())
	require.Len(t, result.Invoices[0].Mismatches, 1)
	f.ledger.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.ledger.AssertNotCalled(t, "BulkValidate", mock.Anything, mock.Anything)
}

func TestImportService_Import_NotificationFailureIgnored(t *testing.T) {
	f := newImportFixture()
	f.expectCompany()
	f.expectHeader()
	f.expectPersist()
	f.ledger.On("ComputeTotals", mock.Anything, mock.Anything).Return(acmeTotals(), nil).Once()
	f.ledger.On("DeleteLines", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	f.ledger.On("ComputeTotals", mock.Anything, mock.Anything).Return(&domain.InvoiceTotals{}, nil).Once()
	f.notifier.On("NotifyReview", mock.Anything, mock.Anything).Return(errors.New("ses throttled"))

	result, err := f.svc.Import(context.Background(), f.company.ID, strings.NewReader(exportHeader+exportRow("120")))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Flagged)
	f.notifier.AssertExpectations(t)
}

func TestImportService_Import_SkipsDuplicate(t *testing.T) {
	f := newImportFixture()
	f.expectCompany()
	f.parties.On("FindParty", mock.Anything, "fiscal_cuit", "20111111111").Return(f.party, nil)
	f.ledger.On("FindInvoice", mock.Anything, f.party.ID, domain.InvoiceDirectionIn, "001", "00003-00001234").
		Return(&domain.Invoice{ID: uuid.New()}, nil)

	result, err := f.svc.Import(context.Background(), f.company.ID, strings.NewReader(exportHeader+exportRow("121")))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, domain.ImportOutcomeSkippedDuplicate, result.Invoices[0].Outcome)
	assert.Equal(t, uuid.Nil, result.Invoices[0].InvoiceID)

	body, err := json.Marshal(result.Invoices[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), `"invoice_id":"00000000-0000-0000-0000-000000000000"`)
	f.ledger.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "BulkValidate", mock.Anything, mock.Anything)
}

// expectNewParty stubs resolution of an issuer unknown to the ledger with the
// registry disabled. The returned party is filled in when CreateParty runs.
func (f *importFixture) expectNewParty() (uuid.UUID, *domain.Party, *domain.Address) {
	id := uuid.New()
	created := &domain.Party{}
	addr := &domain.Address{}
	f.parties.On("FindParty", mock.Anything, "fiscal_cuit", "20111111111").Return(nil, domain.ErrPartyNotFound).Once()
	f.registry.On("Lookup", mock.Anything, "20111111111").Return(nil, domain.ErrRegistryDisabled).Once()
	f.parties.On("CompanyInvoiceAddress", mock.Anything, f.company.ID).Return(companyAddress(f.company), nil).Once()
	f.parties.On("CreateParty", mock.Anything, mock.AnythingOfType("*domain.Party")).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(*domain.Party)
			p.ID = id
			*created = *p
		}).
		Return(nil).Once()
	f.parties.On("CreateAddress", mock.Anything, mock.AnythingOfType("*domain.Address")).
		Run(func(args mock.Arguments) {
			a := args.Get(1).(*domain.Address)
			a.ID = uuid.New()
			*addr = *a
		}).
		Return(nil).Once()
	return id, created, addr
}

// expectNewInvoice stubs header building and persistence for partyID and
// captures the stored lines.
func (f *importFixture) expectNewInvoice(partyID uuid.UUID, docType, reference string, lines *[]domain.InvoiceLine) uuid.UUID {
	invoiceID := uuid.New()
	f.ledger.On("FindInvoice", mock.Anything, partyID, domain.InvoiceDirectionIn, docType, reference).
		Return(nil, domain.ErrInvoiceNotFound).Once()
	f.ledger.On("DefaultJournal", mock.Anything, domain.JournalTypeExpense).Return(nil, domain.ErrJournalNotFound)
	f.parties.On("PartyInvoiceAddress", mock.Anything, partyID).Return(nil, domain.ErrAddressNotFound)
	f.ledger.On("ApplyDirectionDefaults", mock.Anything, mock.Anything).Return(nil)
	f.settings.On("PartyConfig", mock.Anything, f.company.ID, partyID).Return(&domain.PartyImportConfig{PartyID: partyID}, nil)
	f.ledger.On("CreateInvoice", mock.Anything, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Invoice).ID = invoiceID }).
		Return(nil).Once()
	f.ledger.On("SetLines", mock.Anything, mock.AnythingOfType("*domain.Invoice"), mock.Anything).
		Run(func(args mock.Arguments) {
			inv := args.Get(1).(*domain.Invoice)
			stored := args.Get(2).([]domain.InvoiceLine)
			for i := range stored {
				stored[i].ID = uuid.New()
				stored[i].InvoiceID = inv.ID
			}
			inv.Lines = stored
			*lines = stored
		}).
		Return(nil).Once()
	return invoiceID
}

func TestImportService_Import_NewPartyValidated(t *testing.T) {
	f := newImportFixture()
	f.expectCompany()
	partyID, created, addr := f.expectNewParty()
	var lines []domain.InvoiceLine
	invoiceID := f.expectNewInvoice(partyID, "001", "00001-00000123", &lines)
	f.ledger.On("ComputeTotals", mock.Anything, mock.Anything).Return(acmeTotals(), nil).Once()
	f.ledger.On("BulkValidate", mock.Anything, []uuid.UUID{invoiceID}).Return(nil).Once()

	row := "01/03/2024,001-Factura A,00001,00000123,00000123,74123456789012,CUIT,20111111111,Acme SA,1,$," +
		"100.00,0,0,21.00,121.00\n"
	result, err := f.svc.Import(context.Background(), f.company.ID, strings.NewReader(exportHeader+row))

	require.NoError(t, err)
	assert.Equal(t, partyID, created.ID)
	assert.Equal(t, "Acme SA", created.Name)
	assert.Equal(t, "fiscal_cuit", created.FiscalIDType)
	assert.Equal(t, "20111111111", created.FiscalIDNumber)
	assert.Equal(t, domain.IVAConditionResponsableInscripto, created.IVACondition)
	assert.Equal(t, partyID, addr.PartyID)
	assert.Equal(t, "Av. Corrientes 1234", addr.Street)

	require.Len(t, lines, 1)
	assert.Equal(t, domain.LineCategoryTaxedNet, lines[0].Category)
	assert.True(t, lines[0].UnitPrice.Equal(dec("100.00")))
	assert.True(t, lines[0].Quantity.Equal(dec("1")))
	assert.Equal(t, f.cfg.TaxedNetTax.ID, lines[0].TaxID)
	assert.Equal(t, f.cfg.DefaultExpenseAccount.ID, lines[0].AccountID)

	assert.Equal(t, 1, result.Validated)
	require.Len(t, result.Invoices, 1)
	outcome := result.Invoices[0]
	assert.Equal(t, invoiceID, outcome.InvoiceID)
	assert.Equal(t, partyID, outcome.PartyID)
	assert.Equal(t, "00001-00000123", outcome.Reference)
	assert.Equal(t, domain.ImportOutcomeValidated, outcome.Outcome)
	f.parties.AssertExpectations(t)
	f.registry.AssertExpectations(t)
	f.ledger.AssertExpectations(t)
	f.ledger.AssertNotCalled(t, "DeleteLines", mock.Anything, mock.Anything, mock.Anything)
}

func TestImportService_Import_CreditNoteValidated(t *testing.T) {
	f := newImportFixture()
	f.expectCompany()
	partyID, _, _ := f.expectNewParty()
	var lines []domain.InvoiceLine
	invoiceID := f.expectNewInvoice(partyID, "003", "00001-00000045", &lines)
	f.ledger.On("ComputeTotals", mock.Anything, mock.Anything).Return(&domain.InvoiceTotals{
		UntaxedAmount: dec("-41.32"),
		TaxAmount:     dec("-8.68"),
		TotalAmount:   dec("-50.00"),
		TaxedNet:      dec("41.32"),
		VAT:           dec("8.68"),
	}, nil).Once()
	f.ledger.On("BulkValidate", mock.Anything, []uuid.UUID{invoiceID}).Return(nil).Once()

	row := "05/03/2024,003-Nota de Crédito A,00001,00000045,00000045,74123456789099,CUIT,20111111111,Acme SA,1,$," +
		"41.32,0,0,8.68,50.00\n"
	result, err := f.svc.Import(context.Background(), f.company.ID, strings.NewReader(exportHeader+row))

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, domain.LineCategoryTaxedNet, lines[0].Category)
	assert.True(t, lines[0].Quantity.Equal(dec("-1")))
	assert.True(t, lines[0].UnitPrice.Equal(dec("41.32")))

	assert.Equal(t, 1, result.Validated)
	assert.Equal(t, "003", result.Invoices[0].DocType)
	assert.Equal(t, domain.ImportOutcomeValidated, result.Invoices[0].Outcome)
	assert.Empty(t, result.Invoices[0].Mismatches)
	f.ledger.AssertExpectations(t)
	f.ledger.AssertNotCalled(t, "DeleteLines", mock.Anything, mock.Anything, mock.Anything)
}

func TestImportService_Import_ParseErrorPersistsNothing(t *testing.T) {
	f := newImportFixture()
	bad := strings.Replace(exportRow("121"), "01/03/2024", "2024-03-01", 1)

	result, err := f.svc.Import(context.Background(), f.company.ID,
		strings.NewReader(exportHeader+exportRow("121")+bad))

	assert.Nil(t, result)
	var pe *afip.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
	f.settings.AssertNotCalled(t, "Company", mock.Anything, mock.Anything)
	f.parties.AssertNotCalled(t, "FindParty", mock.Anything, mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
}

func TestImportService_Import_MissingConfigurationLeavesNoHeader(t *testing.T) {
	f := newImportFixture()
	f.cfg.DefaultExpenseAccount = nil
	f.expectCompany()
	f.expectHeader()

	result, err := f.svc.Import(context.Background(), f.company.ID, strings.NewReader(exportHeader+exportRow("121")))

	require.Error(t, err)
	assert.True(t, domain.IsMissingConfiguration(err))
	require.NotNil(t, result)
	assert.Empty(t, result.Invoices)
	f.ledger.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "BulkValidate", mock.Anything, mock.Anything)
}

func TestImportService_Import_BulkValidateError(t *testing.T) {
	f := newImportFixture()
	f.expectCompany()
	f.expectHeader()
	f.expectPersist()
	boom := errors.New("validation rejected")
	f.ledger.On("ComputeTotals", mock.Anything, mock.Anything).Return(acmeTotals(), nil).Once()
	f.ledger.On("BulkValidate", mock.Anything, mock.Anything).Return(boom).Once()

	result, err := f.svc.Import(context.Background(), f.company.ID, strings.NewReader(exportHeader+exportRow("121")))

	assert.ErrorIs(t, err, boom)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Validated)
}

func TestImportService_Import_HeaderOnly(t *testing.T) {
	f := newImportFixture()
	f.expectCompany()

	result, err := f.svc.Import(context.Background(), f.company.ID, strings.NewReader(exportHeader))

	require.NoError(t, err)
	assert.Equal(t, 0, result.Rows)
	assert.Empty(t, result.Invoices)
	f.ledger.AssertNotCalled(t, "BulkValidate", mock.Anything, mock.Anything)
}

func TestImportService_Import_UnknownCompany(t *testing.T) {
	f := newImportFixture()
	f.settings.On("Company", mock.Anything, f.company.ID).Return(nil, domain.ErrCompanyNotFound)

	_, err := f.svc.Import(context.Background(), f.company.ID, strings.NewReader(exportHeader+exportRow("121")))

	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
}

func TestImportService_ImportUpload_ArchivesThenImports(t *testing.T) {
	f := newImportFixture()
	f.expectCompany()
	body := exportHeader

	var archived port.UploadInput
	f.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Run(func(args mock.Arguments) { archived = args.Get(1).(port.UploadInput) }).
		Return(&port.UploadOutput{Location: "s3://uploads/x"}, nil).Once()

	result, err := f.svc.ImportUpload(context.Background(), service.UploadImportInput{
		CompanyID: f.company.ID,
		Filename:  "comprobantes.csv",
		Size:      int64(len(body)),
		Body:      strings.NewReader(body),
	})

	require.NoError(t, err)
	assert.Equal(t, "uploads", archived.Bucket)
	assert.True(t, strings.HasPrefix(archived.Key, "companies/"+f.company.ID.String()+"/imports/"))
	assert.True(t, strings.HasSuffix(archived.Key, "/comprobantes.csv"))
	assert.Equal(t, archived.Key, result.ArchiveKey)
	f.storage.AssertExpectations(t)
}

func TestImportService_ImportUpload_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input service.UploadImportInput
		want  error
	}{
		{"empty", service.UploadImportInput{Filename: "a.csv", Size: 0}, domain.ErrEmptyImport},
		{"wrong extension", service.UploadImportInput{Filename: "a.pdf", Size: 10}, domain.ErrUnsupportedFileType},
		{"too large", service.UploadImportInput{Filename: "a.csv", Size: 2 * 1024 * 1024}, domain.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImportFixture()
			tt.input.Body = strings.NewReader("")

			result, err := f.svc.ImportUpload(context.Background(), tt.input)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.want)
			f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		})
	}
}

func TestImportService_ImportUpload_ArchiveFailure(t *testing.T) {
	f := newImportFixture()
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	_, err := f.svc.ImportUpload(context.Background(), service.UploadImportInput{
		CompanyID: f.company.ID,
		Filename:  "a.csv",
		Size:      int64(len(exportHeader)),
		Body:      strings.NewReader(exportHeader),
	})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	f.settings.AssertNotCalled(t, "Company", mock.Anything, mock.Anything)
}

func TestImportService_ImportObject(t *testing.T) {
	f := newImportFixture()
	f.expectCompany()
	f.storage.On("Download", mock.Anything, "archive", "2024/03.csv").Return([]byte(exportHeader), nil)

	result, err := f.svc.ImportObject(context.Background(), f.company.ID, "archive", "2024/03.csv")

	require.NoError(t, err)
	assert.Equal(t, "2024/03.csv", result.ArchiveKey)
	f.storage.AssertExpectations(t)
}
