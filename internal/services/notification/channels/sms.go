package channels

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"hospital-ops/internal/common/logger"
	"hospital-ops/internal/models"
)

// SMSSink sends through SNS direct-to-phone when a client is supplied;
// with a nil client it is the logging stub.
type SMSSink struct {
	client   SNSService
	phone    string
	senderID string
	logger   logger.Logger
}

func NewSMSSink(client SNSService, phone, senderID string, log logger.Logger) *SMSSink {
	return &SMSSink{
		client:   client,
		phone:    phone,
		senderID: senderID,
		logger:   log.WithFields(map[string]interface{}{"channel": models.ChannelSMS}),
	}
}

func (s *SMSSink) Channel() models.Channel { return models.ChannelSMS }

func (s *SMSSink) Send(ctx context.Context, n models.Notification) error {
	text := smsBody(n)
	if s.client == nil {
		s.logger.Info("sms notification (stub transport)", map[string]interface{}{
			"notificationId": n.ID,
			"text":           text,
		})
		return nil
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(s.phone),
		Message:     aws.String(text),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		},
	}
	if s.senderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("publish sms: %w", err)
	}

	s.logger.Info("sms notification sent", map[string]interface{}{
		"notificationId": n.ID,
	})
	return nil
}
