package channels

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"hospital-ops/internal/common/logger"
	"hospital-ops/internal/models"
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailSink sends through SES when a client is supplied; with a nil
// client it is the logging stub.
type EmailSink struct {
	client SESService
	from   string
	to     string
	logger logger.Logger
}

func NewEmailSink(client SESService, from, to string, log logger.Logger) *EmailSink {
	return &EmailSink{
		client: client,
		from:   from,
		to:     to,
		logger: log.WithFields(map[string]interface{}{"channel": models.ChannelEmail}),
	}
}

func (s *EmailSink) Channel() models.Channel { return models.ChannelEmail }

func (s *EmailSink) Send(ctx context.Context, n models.Notification) error {
	if s.client == nil {
		s.logger.Info("email notification (stub transport)", map[string]interface{}{
			"notificationId": n.ID,
			"subject":        subject(n),
		})
		return nil
	}

	text := body(n)
	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{s.to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject(n))},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(text)},
			},
		},
		Source: aws.String(s.from),
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("email notification sent", map[string]interface{}{
		"notificationId": n.ID,
	})
	return nil
}
