package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"afipimport/internal/afip"
	"afipimport/internal/domain"
	"afipimport/internal/port"
)

var errRegistryApply = errors.New("applying registry data")

// PartyResolver finds the issuing party of a row, creating and enriching it when missing.
type PartyResolver struct {
	parties  port.PartyService
	registry port.RegistryLookup
}

// NewPartyResolver creates a new PartyResolver.
func NewPartyResolver(parties port.PartyService, registry port.RegistryLookup) *PartyResolver {
	return &PartyResolver{parties: parties, registry: registry}
}

// Resolve returns the party identified by the row's issuer fiscal id. Existing
// parties are returned untouched. New parties take their VAT regime from the
// row's voucher type and are enriched from the registry; when enrichment fails
// for any reason the company's invoice address is copied to the party instead.
// The registry is queried before the party is stored, so a failed lookup with
// no company address to fall back on creates nothing.
func (r *PartyResolver) Resolve(ctx context.Context, rec afip.Record, company *domain.Company) (*domain.Party, error) {
	fiscalIDType := rec.FiscalIDType()

	party, err := r.parties.FindParty(ctx, fiscalIDType, rec.IssuerIDNumber)
	if err == nil {
		return party, nil
	}
	if !errors.Is(err, domain.ErrPartyNotFound) {
		return nil, fmt.Errorf("finding party %s %s: %w", fiscalIDType, rec.IssuerIDNumber, err)
	}

	kind, err := afip.FiscalIDKind(rec.IssuerIDType)
	if err != nil {
		return nil, err
	}
	docType := rec.DocTypeCode()
	condition, ok := afip.DefaultIVACondition(docType)
	if !ok {
		return nil, domain.NewMissingConfigurationError(rec.Reference(),
			fmt.Sprintf("iva condition for document type %s", docType))
	}

	data, lookupErr := r.lookup(ctx, rec.IssuerIDNumber)
	var fallback *domain.Address
	if lookupErr != nil {
		if fallback, err = r.companyAddress(ctx, company, rec.Reference()); err != nil {
			return nil, err
		}
	}

	party = &domain.Party{
		Name:           rec.IssuerName,
		FiscalIDType:   fiscalIDType,
		FiscalIDNumber: rec.IssuerIDNumber,
		DocumentKind:   kind,
		IVACondition:   condition,
	}
	if err := r.parties.CreateParty(ctx, party); err != nil {
		return nil, fmt.Errorf("creating party %s %s: %w", fiscalIDType, rec.IssuerIDNumber, err)
	}

	if lookupErr == nil {
		err := r.parties.ApplyRegistryData(ctx, party, data)
		if err == nil {
			log.Info().
				Str("component", "party_resolver").
				Str("party_id", party.ID.String()).
				Str("fiscal_id", party.FiscalIDNumber).
				Msg("party enriched from registry")
			return party, nil
		}
		lookupErr = fmt.Errorf("%w: %w", errRegistryApply, err)
		if fallback, err = r.companyAddress(ctx, company, rec.Reference()); err != nil {
			return nil, err
		}
	}

	event := log.Warn()
	if errors.Is(lookupErr, domain.ErrRegistryDisabled) {
		event = log.Debug()
	}
	event.Err(lookupErr).
		Str("component", "party_resolver").
		Str("party_id", party.ID.String()).
		Str("fiscal_id", party.FiscalIDNumber).
		Str("registry_failure", registryFailure(lookupErr)).
		Msg("registry lookup failed, copying company address")

	if err := r.copyAddress(ctx, party, fallback); err != nil {
		return nil, err
	}
	return party, nil
}

// lookup queries the registry, treating a payload with nothing usable as a failure.
func (r *PartyResolver) lookup(ctx context.Context, fiscalIDNumber string) (*domain.RegistryData, error) {
	data, err := r.registry.Lookup(ctx, fiscalIDNumber)
	if err != nil {
		return nil, err
	}
	if data.IsEmpty() {
		return nil, domain.ErrRegistryEmpty
	}
	return data, nil
}

func (r *PartyResolver) companyAddress(ctx context.Context, company *domain.Company, reference string) (*domain.Address, error) {
	src, err := r.parties.CompanyInvoiceAddress(ctx, company.ID)
	if errors.Is(err, domain.ErrAddressNotFound) {
		return nil, domain.NewMissingConfigurationError(reference, "company invoice address")
	}
	if err != nil {
		return nil, fmt.Errorf("loading company address: %w", err)
	}
	return src, nil
}

func (r *PartyResolver) copyAddress(ctx context.Context, party *domain.Party, src *domain.Address) error {
	addr := &domain.Address{
		PartyID:     party.ID,
		Invoice:     true,
		Street:      src.Street,
		PostalCode:  src.PostalCode,
		City:        src.City,
		Subdivision: src.Subdivision,
		Country:     src.Country,
	}
	if err := r.parties.CreateAddress(ctx, addr); err != nil {
		return fmt.Errorf("creating address for party %s: %w", party.ID, err)
	}
	return nil
}

// registryFailure labels a lookup failure for logs.
func registryFailure(err error) string {
	switch {
	case errors.Is(err, domain.ErrRegistryDisabled):
		return "disabled"
	case errors.Is(err, domain.ErrRegistryUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrRegistryNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrRegistryMalformed):
		return "malformed"
	case errors.Is(err, domain.ErrRegistryEmpty):
		return "empty"
	case errors.Is(err, errRegistryApply):
		return "apply_failed"
	default:
		return "unknown"
	}
}
