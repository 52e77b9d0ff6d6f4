package noop

import (
	"context"

	"github.com/rs/zerolog/log"

	"afipimport/internal/port"
)

type noopNotifier struct{}

// NewNoopNotifier creates a ReviewNotifier that only logs the notice.
func NewNoopNotifier() port.ReviewNotifier {
	return noopNotifier{}
}

func (noopNotifier) NotifyReview(_ context.Context, n port.ReviewNotice) error {
	for _, item := range n.Items {
		log.Info().
			Str("component", "email").
			Str("company_id", n.CompanyID.String()).
			Int("line", item.Line).
			Str("reference", item.Reference).
			Strs("differences", item.Differences).
			Msg("[NOOP EMAIL] invoice needs review")
	}
	return nil
}
