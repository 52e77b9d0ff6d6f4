package port

import (
	"context"

	"github.com/google/uuid"
)

// ReviewItem is an imported invoice whose totals did not match the export.
type ReviewItem struct {
	Line        int
	InvoiceID   uuid.UUID
	DocType     string
	Reference   string
	IssuerName  string
	Differences []string
}

// ReviewNotice summarizes an import that left invoices in draft.
type ReviewNotice struct {
	CompanyID   uuid.UUID
	CompanyName string
	Rows        int
	Validated   int
	Flagged     int
	Skipped     int
	Items       []ReviewItem
}

// ReviewNotifier tells accountants that imported invoices need manual review.
type ReviewNotifier interface {
	NotifyReview(ctx context.Context, notice ReviewNotice) error
}
