package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"afipimport/internal/csvexport"
	"afipimport/internal/middleware"
	"afipimport/internal/report"
	"afipimport/internal/service"
	"afipimport/internal/storage/s3"
)

// ImportHandler handles AFIP export import endpoints.
type ImportHandler struct {
	importService service.ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// ImportObjectRequest is the body of POST /api/v1/imports/object.
type ImportObjectRequest struct {
	URI string `json:"uri" binding:"required"`
}

// Upload handles POST /api/v1/imports
// Accepts a multipart "file" field. With ?format=xlsx or ?format=csv the result
// is returned as a report file instead of JSON.
func (h *ImportHandler) Upload(c *gin.Context) {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing company context")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.importService.ImportUpload(c.Request.Context(), service.UploadImportInput{
		CompanyID:   companyID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondImportError(c, result, err)
		return
	}
	h.respond(c, result, header.Filename)
}

// ImportObject handles POST /api/v1/imports/object
// Imports an export already stored in object storage.
func (h *ImportHandler) ImportObject(c *gin.Context) {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing company context")
		return
	}

	var req ImportObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	bucket, key, err := s3.ParseURI(req.URI)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_URI", "uri must look like s3://bucket/key")
		return
	}

	result, err := h.importService.ImportObject(c.Request.Context(), companyID, bucket, key)
	if err != nil {
		respondImportError(c, result, err)
		return
	}
	h.respond(c, result, path.Base(key))
}

func (h *ImportHandler) respond(c *gin.Context, result *service.ImportResult, name string) {
	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	format := c.Query("format")
	switch format {
	case "xlsx":
		contentType = report.ContentType
		err = report.WriteXLSX(&buf, result)
	case "csv":
		contentType = csvexport.ContentType
		err = csvexport.WriteResult(&buf, result)
	default:
		RespondOK(c, result)
		return
	}
	if err != nil {
		HandleError(c, fmt.Errorf("rendering %s report: %w", format, err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, csvexport.BuildFilename(name, format)))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// respondImportError reports an aborted import. The rows committed before the
// failing one are returned alongside the error.
func respondImportError(c *gin.Context, result *service.ImportResult, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Error().Err(err).
			Str("component", "http").
			Str("request_id", c.GetString("request_id")).
			Msg("import failed")
	}
	resp := APIResponse{Success: false, Error: &APIError{Code: code, Message: msg}}
	if result != nil {
		resp.Data = result
	}
	c.JSON(status, resp)
}
