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

// SNSService is the subset of the SNS client used by the push and SMS sinks.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// PushSink publishes to an SNS topic that fans out to mobile/browser
// endpoints. Without a client or topic the platform capability is
// missing and Send is a no-op.
type PushSink struct {
	client   SNSService
	topicARN string
	logger   logger.Logger
}

func NewPushSink(client SNSService, topicARN string, log logger.Logger) *PushSink {
	return &PushSink{
		client:   client,
		topicARN: topicARN,
		logger:   log.WithFields(map[string]interface{}{"channel": models.ChannelPush}),
	}
}

func (s *PushSink) Channel() models.Channel { return models.ChannelPush }

// Available reports whether a push transport is configured.
func (s *PushSink) Available() bool {
	return s.client != nil && s.topicARN != ""
}

func (s *PushSink) Send(ctx context.Context, n models.Notification) error {
	if !s.Available() {
		s.logger.Debug("push unavailable, skipping", map[string]interface{}{
			"notificationId": n.ID,
		})
		return nil
	}

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(truncate(subject(n), 100)),
		Message:  aws.String(body(n)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"priority": {DataType: aws.String("String"), StringValue: aws.String(string(n.Priority))},
			"category": {DataType: aws.String("String"), StringValue: aws.String(string(n.Category))},
		},
	})
	if err != nil {
		return fmt.Errorf("publish push notification: %w", err)
	}

	s.logger.Info("push notification published", map[string]interface{}{
		"notificationId": n.ID,
	})
	return nil
}

// truncate cuts s to at most max runes; SNS rejects subjects over 100 characters.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
