// Package registry looks up taxpayers in the AFIP registry (padrón) through an
// HTTP gateway.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"afipimport/internal/config"
	"afipimport/internal/domain"
	"afipimport/internal/port"
)

const defaultTimeout = 10 * time.Second

type personaResponse struct {
	Data *persona `json:"data"`
}

type persona struct {
	RazonSocial  string    `json:"razon_social"`
	Nombre       string    `json:"nombre"`
	Apellido     string    `json:"apellido"`
	CondicionIVA string    `json:"condicion_iva"`
	Domicilio    domicilio `json:"domicilio"`
}

type domicilio struct {
	Direccion    string `json:"direccion"`
	CodigoPostal string `json:"codigo_postal"`
	Localidad    string `json:"localidad"`
	Provincia    string `json:"provincia"`
	Pais         string `json:"pais"`
}

var ivaConditions = map[string]domain.IVACondition{
	"RESPONSABLE INSCRIPTO": domain.IVAConditionResponsableInscripto,
	"MONOTRIBUTO":           domain.IVAConditionMonotributo,
	"EXENTO":                domain.IVAConditionExento,
	"CONSUMIDOR FINAL":      domain.IVAConditionConsumidorFinal,
}

// Client queries the padrón gateway at GET {baseURL}/personas/{cuit}.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a registry client. A zero timeout uses the default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Lookup(ctx context.Context, fiscalIDNumber string) (*domain.RegistryData, error) {
	endpoint := c.baseURL + "/personas/" + url.PathEscape(fiscalIDNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRegistryUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrRegistryNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", domain.ErrRegistryUnavailable, resp.StatusCode)
	}

	var body personaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRegistryMalformed, err)
	}
	if body.Data == nil {
		return nil, domain.ErrRegistryEmpty
	}

	data := toRegistryData(body.Data)
	if data.IsEmpty() {
		return nil, domain.ErrRegistryEmpty
	}
	return data, nil
}

func toRegistryData(p *persona) *domain.RegistryData {
	name := strings.TrimSpace(p.RazonSocial)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(p.Apellido) + " " + strings.TrimSpace(p.Nombre))
	}
	return &domain.RegistryData{
		Name:         name,
		IVACondition: ivaConditions[strings.ToUpper(strings.TrimSpace(p.CondicionIVA))],
		Street:       strings.TrimSpace(p.Domicilio.Direccion),
		PostalCode:   strings.TrimSpace(p.Domicilio.CodigoPostal),
		City:         strings.TrimSpace(p.Domicilio.Localidad),
		Subdivision:  strings.TrimSpace(p.Domicilio.Provincia),
		Country:      strings.TrimSpace(p.Domicilio.Pais),
	}
}

// Disabled is used when no gateway is configured. Every lookup fails with
// domain.ErrRegistryDisabled.
type Disabled struct{}

func (Disabled) Lookup(_ context.Context, _ string) (*domain.RegistryData, error) {
	return nil, domain.ErrRegistryDisabled
}

// New returns a Client for the configured gateway, or Disabled when none is set.
func New(cfg *config.RegistryConfig) port.RegistryLookup {
	if !cfg.Enabled() {
		return Disabled{}
	}
	return NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout())
}

// Compile-time checks.
var (
	_ port.RegistryLookup = (*Client)(nil)
	_ port.RegistryLookup = Disabled{}
)
