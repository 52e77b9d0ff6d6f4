package reconcile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"afipimport/internal/afip"
	"afipimport/internal/domain"
	"afipimport/internal/port"
)

// Engine reconciles persisted invoices against their source rows.
type Engine struct {
	ledger port.LedgerService
}

// NewEngine creates a new reconciliation engine.
func NewEngine(ledger port.LedgerService) *Engine {
	return &Engine{ledger: ledger}
}

// Check asks the ledger for the invoice totals and reconciles them with rec.
// Flagged invoices have all their lines removed and their totals recomputed,
// leaving an empty draft for manual correction.
func (e *Engine) Check(ctx context.Context, rec afip.Record, inv *domain.Invoice) (Result, error) {
	totals, err := e.ledger.ComputeTotals(ctx, inv)
	if err != nil {
		return Result{Status: domain.ReconciliationPending}, fmt.Errorf("computing totals for %s: %w", inv.Reference, err)
	}

	res := Reconcile(rec, totals)
	if res.Validated() {
		return res, nil
	}

	for _, m := range res.Mismatches {
		log.Warn().
			Str("component", "reconcile").
			Str("reference", inv.Reference).
			Str("field", string(m.Field)).
			Str("declared", m.Declared.String()).
			Str("computed", m.Computed.String()).
			Msg("amount mismatch")
	}

	if err := e.strip(ctx, inv); err != nil {
		return res, err
	}
	return res, nil
}

func (e *Engine) strip(ctx context.Context, inv *domain.Invoice) error {
	ids := make([]uuid.UUID, 0, len(inv.Lines))
	for i := range inv.Lines {
		ids = append(ids, inv.Lines[i].ID)
	}
	if len(ids) > 0 {
		if err := e.ledger.DeleteLines(ctx, inv, ids); err != nil {
			return fmt.Errorf("deleting lines of %s: %w", inv.Reference, err)
		}
	}
	inv.Lines = nil
	if _, err := e.ledger.ComputeTotals(ctx, inv); err != nil {
		return fmt.Errorf("recomputing totals for %s: %w", inv.Reference, err)
	}
	return nil
}
