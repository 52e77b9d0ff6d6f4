package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"afipimport/internal/afip"
	"afipimport/internal/config"
	"afipimport/internal/domain"
	"afipimport/internal/port"
	"afipimport/internal/reconcile"
)

// InvoiceOutcome reports what happened to one row of the export.
// InvoiceID is the nil UUID for skipped duplicates.
type InvoiceOutcome struct {
	Line       int                  `json:"line"`
	InvoiceID  uuid.UUID            `json:"invoice_id"`
	PartyID    uuid.UUID            `json:"party_id"`
	DocType    string               `json:"doc_type"`
	Reference  string               `json:"reference"`
	IssuerName string               `json:"issuer_name"`
	Outcome    domain.ImportOutcome `json:"outcome"`
	Mismatches []reconcile.Mismatch `json:"mismatches,omitempty"`
}

// ImportResult summarizes an import run.
type ImportResult struct {
	CompanyID  uuid.UUID        `json:"company_id"`
	ArchiveKey string           `json:"archive_key,omitempty"`
	Rows       int              `json:"rows"`
	Validated  int              `json:"validated"`
	Flagged    int              `json:"flagged"`
	Skipped    int              `json:"skipped"`
	Invoices   []InvoiceOutcome `json:"invoices"`
}

func (r *ImportResult) add(o InvoiceOutcome) {
	switch o.Outcome {
	case domain.ImportOutcomeValidated:
		r.Validated++
	case domain.ImportOutcomeFlagged:
		r.Flagged++
	case domain.ImportOutcomeSkippedDuplicate:
		r.Skipped++
	}
	r.Invoices = append(r.Invoices, o)
}

// NeedsReview returns the ids of the invoices left in draft for manual correction.
func (r *ImportResult) NeedsReview() []uuid.UUID {
	var ids []uuid.UUID
	for i := range r.Invoices {
		if r.Invoices[i].Outcome == domain.ImportOutcomeFlagged {
			ids = append(ids, r.Invoices[i].InvoiceID)
		}
	}
	return ids
}

// UploadImportInput is the DTO for importing an uploaded export file.
type UploadImportInput struct {
	CompanyID   uuid.UUID
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImportService defines the AFIP import contract.
type ImportService interface {
	// Import parses every row of r before touching the ledger, then imports
	// the rows in file order and bulk-validates the reconciled invoices.
	// On failure the partial result of the rows already committed is returned
	// alongside the error.
	Import(ctx context.Context, companyID uuid.UUID, r io.Reader) (*ImportResult, error)
	// ImportUpload archives the uploaded file to object storage, then imports it.
	ImportUpload(ctx context.Context, input UploadImportInput) (*ImportResult, error)
	// ImportObject imports an export previously stored in object storage.
	ImportObject(ctx context.Context, companyID uuid.UUID, bucket, key string) (*ImportResult, error)
}

type importService struct {
	ledger   port.LedgerService
	settings port.ConfigurationService
	storage  port.ObjectStorage
	notifier port.ReviewNotifier
	resolver *PartyResolver
	headers  *InvoiceBuilder
	lines    *LineBuilder
	engine   *reconcile.Engine
	s3Cfg    *config.S3Config
	cfg      *config.ImportConfig
}

// NewImportService creates a new ImportService implementation. storage may be
// nil, in which case uploads are not archived. notifier may be nil, in which
// case nobody is told about invoices left for review.
func NewImportService(
	ledger port.LedgerService,
	parties port.PartyService,
	registry port.RegistryLookup,
	settings port.ConfigurationService,
	storage port.ObjectStorage,
	notifier port.ReviewNotifier,
	s3Cfg *config.S3Config,
	cfg *config.ImportConfig,
) ImportService {
	return &importService{
		ledger:   ledger,
		settings: settings,
		storage:  storage,
		notifier: notifier,
		resolver: NewPartyResolver(parties, registry),
		headers:  NewInvoiceBuilder(ledger, parties, cfg.DefaultCurrency),
		lines:    NewLineBuilder(),
		engine:   reconcile.NewEngine(ledger),
		s3Cfg:    s3Cfg,
		cfg:      cfg,
	}
}

func (s *importService) Import(ctx context.Context, companyID uuid.UUID, r io.Reader) (*ImportResult, error) {
	records, err := afip.ParseRecords(r)
	if err != nil {
		return nil, err
	}

	company, err := s.settings.Company(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading company %s: %w", companyID, err)
	}
	companyCfg, err := s.settings.CompanyConfig(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading import configuration of company %s: %w", companyID, err)
	}

	result := &ImportResult{CompanyID: companyID, Rows: len(records)}
	var accepted []uuid.UUID

	for _, rec := range records {
		outcome, err := s.importRecord(ctx, rec, company, companyCfg)
		if err != nil {
			log.Error().Err(err).
				Str("component", "import").
				Str("company_id", companyID.String()).
				Str("reference", rec.Reference()).
				Int("line", rec.Line).
				Msg("import aborted")
			return result, fmt.Errorf("line %d (%s %s): %w", rec.Line, rec.DocTypeCode(), rec.Reference(), err)
		}
		outcome.Line = rec.Line
		result.add(*outcome)
		if outcome.Outcome == domain.ImportOutcomeValidated {
			accepted = append(accepted, outcome.InvoiceID)
		}
	}

	if len(accepted) > 0 {
		if err := s.ledger.BulkValidate(ctx, accepted); err != nil {
			return result, fmt.Errorf("validating %d invoices: %w", len(accepted), err)
		}
	}

	log.Info().
		Str("component", "import").
		Str("company_id", companyID.String()).
		Int("rows", result.Rows).
		Int("validated", result.Validated).
		Int("flagged", result.Flagged).
		Int("skipped", result.Skipped).
		Msg("import finished")

	if result.Flagged > 0 && s.notifier != nil {
		s.notifyReview(ctx, company, result)
	}
	return result, nil
}

// notifyReview reports flagged invoices. A failed notification never fails
// the import.
func (s *importService) notifyReview(ctx context.Context, company *domain.Company, result *ImportResult) {
	notice := port.ReviewNotice{
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Rows:        result.Rows,
		Validated:   result.Validated,
		Flagged:     result.Flagged,
		Skipped:     result.Skipped,
	}
	for _, inv := range result.Invoices {
		if inv.Outcome != domain.ImportOutcomeFlagged {
			continue
		}
		item := port.ReviewItem{
			Line:       inv.Line,
			InvoiceID:  inv.InvoiceID,
			DocType:    inv.DocType,
			Reference:  inv.Reference,
			IssuerName: inv.IssuerName,
		}
		for _, m := range inv.Mismatches {
			item.Differences = append(item.Differences, m.String())
		}
		notice.Items = append(notice.Items, item)
	}

	if err := s.notifier.NotifyReview(ctx, notice); err != nil {
		log.Warn().Err(err).
			Str("component", "import").
			Str("company_id", company.ID.String()).
			Int("flagged", result.Flagged).
			Msg("review notification failed")
	}
}

func (s *importService) importRecord(
	ctx context.Context,
	rec afip.Record,
	company *domain.Company,
	companyCfg *domain.CompanyImportConfig,
) (*InvoiceOutcome, error) {
	party, err := s.resolver.Resolve(ctx, rec, company)
	if err != nil {
		return nil, err
	}

	outcome := &InvoiceOutcome{
		PartyID:    party.ID,
		DocType:    rec.DocTypeCode(),
		Reference:  rec.Reference(),
		IssuerName: rec.IssuerName,
	}

	inv, err := s.headers.BuildHeader(ctx, rec, party, company)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		outcome.Outcome = domain.ImportOutcomeSkippedDuplicate
		return outcome, nil
	}

	partyCfg, err := s.settings.PartyConfig(ctx, company.ID, party.ID)
	if err != nil {
		return nil, fmt.Errorf("loading configuration of party %s: %w", party.ID, err)
	}

	// Lines are built before the header is stored so a configuration error
	// leaves nothing behind.
	lines, err := s.lines.BuildLines(rec, inv, companyCfg, partyCfg)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.CreateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}
	outcome.InvoiceID = inv.ID

	if err := s.ledger.SetLines(ctx, inv, lines); err != nil {
		return nil, fmt.Errorf("storing lines of invoice %s: %w", inv.ID, err)
	}

	res, err := s.engine.Check(ctx, rec, inv)
	if err != nil {
		return nil, err
	}
	if res.Validated() {
		outcome.Outcome = domain.ImportOutcomeValidated
	} else {
		outcome.Outcome = domain.ImportOutcomeFlagged
		outcome.Mismatches = res.Mismatches
	}
	return outcome, nil
}

func (s *importService) ImportUpload(ctx context.Context, input UploadImportInput) (*ImportResult, error) {
	if input.Size == 0 {
		return nil, domain.ErrEmptyImport
	}
	ext := strings.ToLower(filepath.Ext(input.Filename))
	if ext != ".csv" && ext != ".txt" {
		return nil, domain.ErrUnsupportedFileType
	}
	maxBytes := s.s3Cfg.MaxFileSizeMB * 1024 * 1024
	if maxBytes > 0 && input.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	var archiveKey string
	if s.storage != nil && s.cfg.ArchiveUploads {
		archiveKey = fmt.Sprintf("companies/%s/imports/%s/%s",
			input.CompanyID, time.Now().UTC().Format("20060102T150405Z"), filepath.Base(input.Filename))
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.s3Cfg.Bucket,
			Key:         archiveKey,
			Body:        bytes.NewReader(data),
			ContentType: "text/csv",
			Size:        int64(len(data)),
		})
		if err != nil {
			log.Error().Err(err).
				Str("component", "import").
				Str("key", archiveKey).
				Msg("archiving upload failed")
			return nil, domain.ErrUploadFailed
		}
	}

	result, err := s.Import(ctx, input.CompanyID, bytes.NewReader(data))
	if result != nil {
		result.ArchiveKey = archiveKey
	}
	return result, err
}

func (s *importService) ImportObject(ctx context.Context, companyID uuid.UUID, bucket, key string) (*ImportResult, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("importing s3://%s/%s: object storage not configured", bucket, key)
	}
	data, err := s.storage.Download(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("downloading s3://%s/%s: %w", bucket, key, err)
	}
	result, err := s.Import(ctx, companyID, bytes.NewReader(data))
	if result != nil {
		result.ArchiveKey = key
	}
	return result, err
}
