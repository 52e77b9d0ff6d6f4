package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"afipimport/internal/afip"
	"afipimport/internal/csvexport"
	"afipimport/internal/domain"
	"afipimport/internal/handler"
	"afipimport/internal/middleware"
	"afipimport/internal/report"
	"afipimport/internal/service"
	"afipimport/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func uploadRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, _ = part.Write([]byte(content))
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func sampleResult(companyID uuid.UUID) *service.ImportResult {
	return &service.ImportResult{
		CompanyID: companyID,
		Rows:      1,
		Validated: 1,
		Invoices: []service.InvoiceOutcome{{
			Line:       2,
			InvoiceID:  uuid.New(),
			PartyID:    uuid.New(),
			DocType:    "001",
			Reference:  "00003-00001234",
			IssuerName: "ACME SA",
			Outcome:    domain.ImportOutcomeValidated,
		}},
	}
}

func TestImportHandler_Upload_Success(t *testing.T) {
	mockImport := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockImport)
	companyID := uuid.New()

	mockImport.On("ImportUpload", mock.Anything, mock.MatchedBy(func(in service.UploadImportInput) bool {
		return in.CompanyID == companyID && in.Filename == "comprobantes.csv" && in.Size > 0
	})).Return(sampleResult(companyID), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = uploadRequest(t, "/api/v1/imports", "comprobantes.csv", "Fecha,Tipo\n")
	c.Set(middleware.ContextKeyCompanyID, companyID)

	h.Upload(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	mockImport.AssertExpectations(t)
}

func TestImportHandler_Upload_XLSX(t *testing.T) {
	mockImport := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockImport)
	companyID := uuid.New()

	mockImport.On("ImportUpload", mock.Anything, mock.Anything).Return(sampleResult(companyID), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = uploadRequest(t, "/api/v1/imports?format=xlsx", "comprobantes.csv", "Fecha,Tipo\n")
	c.Set(middleware.ContextKeyCompanyID, companyID)

	h.Upload(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ContentType, w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Comprobantes")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestImportHandler_Upload_NoFile(t *testing.T) {
	mockImport := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockImport)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/imports", http.NoBody)
	c.Set(middleware.ContextKeyCompanyID, uuid.New())

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockImport.AssertNotCalled(t, "ImportUpload", mock.Anything, mock.Anything)
}

func TestImportHandler_Upload_NoCompany(t *testing.T) {
	mockImport := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockImport)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = uploadRequest(t, "/api/v1/imports", "comprobantes.csv", "x")

	h.Upload(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestImportHandler_Upload_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"parse error", &afip.ParseError{Line: 3, Field: "Fecha", Err: errors.New("bad date")}, http.StatusBadRequest, "INVALID_IMPORT_FILE"},
		{"missing configuration", domain.NewMissingConfigurationError("00003-00001234", "default expense account"), http.StatusUnprocessableEntity, "MISSING_CONFIGURATION"},
		{"too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"unsupported", domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"unknown company", domain.ErrCompanyNotFound, http.StatusNotFound, "COMPANY_NOT_FOUND"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockImport := new(mocks.MockImportService)
			h := handler.NewImportHandler(mockImport)
			mockImport.On("ImportUpload", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = uploadRequest(t, "/api/v1/imports", "comprobantes.csv", "x")
			c.Set(middleware.ContextKeyCompanyID, uuid.New())

			h.Upload(c)

			assert.Equal(t, tt.status, w.Code)
			var resp handler.APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Nil(t, resp.Data)
		})
	}
}

func TestImportHandler_Upload_PartialResult(t *testing.T) {
	mockImport := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockImport)
	companyID := uuid.New()
	cfgErr := domain.NewMissingConfigurationError("00003-00001235", "default expense account")

	mockImport.On("ImportUpload", mock.Anything, mock.Anything).Return(sampleResult(companyID), cfgErr)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = uploadRequest(t, "/api/v1/imports", "comprobantes.csv", "x")
	c.Set(middleware.ContextKeyCompanyID, companyID)

	h.Upload(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "00003-00001235")
	assert.Contains(t, w.Body.String(), `"validated":1`)
}

func TestImportHandler_ImportObject(t *testing.T) {
	mockImport := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockImport)
	companyID := uuid.New()

	mockImport.On("ImportObject", mock.Anything, companyID, "exports", "2024/06/comprobantes.csv").
		Return(sampleResult(companyID), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/imports/object",
		strings.NewReader(`{"uri":"s3://exports/2024/06/comprobantes.csv"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextKeyCompanyID, companyID)

	h.ImportObject(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockImport.AssertExpectations(t)
}

func TestImportHandler_ImportObject_InvalidURI(t *testing.T) {
	mockImport := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockImport)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/imports/object",
		strings.NewReader(`{"uri":"/tmp/comprobantes.csv"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextKeyCompanyID, uuid.New())

	h.ImportObject(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_URI")
}

func TestImportHandler_Upload_CSV(t *testing.T) {
	mockImport := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockImport)
	companyID := uuid.New()

	mockImport.On("ImportUpload", mock.Anything, mock.Anything).Return(sampleResult(companyID), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = uploadRequest(t, "/api/v1/imports?format=csv", "comprobantes.csv", "Fecha,Tipo\n")
	c.Set(middleware.ContextKeyCompanyID, companyID)

	h.Upload(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, csvexport.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "comprobantes_")
	assert.Contains(t, w.Body.String(), "00003-00001234")
}
