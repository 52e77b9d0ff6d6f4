package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"afipimport/internal/email"
	"afipimport/internal/port"
)

// sendEmailAPI is the part of the SES client the notifier uses.
type sendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesNotifier struct {
	client      sendEmailAPI
	fromAddress string
	fromName    string
	recipients  []string
}

// NewSESNotifier creates a new SES-backed ReviewNotifier.
func NewSESNotifier(ctx context.Context, region, fromAddress, fromName string, recipients []string) (port.ReviewNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return newNotifier(sesv2.NewFromConfig(cfg), fromAddress, fromName, recipients), nil
}

func newNotifier(client sendEmailAPI, fromAddress, fromName string, recipients []string) *sesNotifier {
	return &sesNotifier{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		recipients:  recipients,
	}
}

func (s *sesNotifier) NotifyReview(ctx context.Context, notice port.ReviewNotice) error {
	subject := email.ReviewSubject(notice)
	htmlBody := email.ReviewHTML(notice)
	textBody := email.ReviewText(notice)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: s.recipients,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}
