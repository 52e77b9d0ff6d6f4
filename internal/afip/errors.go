package afip

import (
	"errors"
	"fmt"
)

// ErrUnknownFiscalIDKind is returned for issuer document labels other than CUIT, CUIL or DNI.
var ErrUnknownFiscalIDKind = errors.New("unknown fiscal id kind")

// FormatError indicates a cell that does not match the expected layout.
type FormatError struct {
	Value  string
	Layout string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("value %q does not match format %s", e.Value, e.Layout)
}

// ParseError describes a row of the export that could not be converted.
// Line is the 1-based row number, header included.
type ParseError struct {
	Line  int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, field %s: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
