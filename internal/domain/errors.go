package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrCompanyNotFound     = errors.New("company not found")
	ErrPartyNotFound       = errors.New("party not found")
	ErrDuplicateParty      = errors.New("party with this fiscal id already exists")
	ErrAddressNotFound     = errors.New("address not found")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrJournalNotFound     = errors.New("journal not found")
	ErrInvoiceNotDraft     = errors.New("invoice is not a draft")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrEmptyImport         = errors.New("import file has no invoice rows")
)

// Registry lookup failures. They never escape the party resolver; they only
// select the address fallback and label the log entry.
var (
	ErrRegistryDisabled    = errors.New("registry lookup disabled")
	ErrRegistryUnavailable = errors.New("registry unavailable")
	ErrRegistryNotFound    = errors.New("fiscal id not found in registry")
	ErrRegistryMalformed   = errors.New("malformed registry response")
	ErrRegistryEmpty       = errors.New("registry returned no data")
)

// MissingConfigurationError reports an accounting setting that must be
// configured before an invoice can be imported.
type MissingConfigurationError struct {
	Reference string
	Setting   string
}

func (e *MissingConfigurationError) Error() string {
	if e.Reference == "" {
		return fmt.Sprintf("missing configuration: %s", e.Setting)
	}
	return fmt.Sprintf("missing configuration for invoice %s: %s", e.Reference, e.Setting)
}

// NewMissingConfigurationError creates a MissingConfigurationError.
func NewMissingConfigurationError(reference, setting string) *MissingConfigurationError {
	return &MissingConfigurationError{Reference: reference, Setting: setting}
}

// IsMissingConfiguration reports whether err is or wraps a MissingConfigurationError.
func IsMissingConfiguration(err error) bool {
	var mce *MissingConfigurationError
	return errors.As(err, &mce)
}
