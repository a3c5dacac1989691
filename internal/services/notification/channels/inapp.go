package channels

import (
	"context"

	"hospital-ops/internal/common/logger"
	"hospital-ops/internal/models"
)

// InAppSink is the delivery-side half of the in-app channel. The list
// update and broadcast already happened synchronously in Create, so this
// only records that the channel was reached.
type InAppSink struct {
	logger logger.Logger
}

func NewInAppSink(log logger.Logger) *InAppSink {
	return &InAppSink{logger: log.WithFields(map[string]interface{}{"channel": models.ChannelInApp})}
}

func (s *InAppSink) Channel() models.Channel { return models.ChannelInApp }

func (s *InAppSink) Send(_ context.Context, n models.Notification) error {
	s.logger.Debug("in-app notification shown", map[string]interface{}{
		"notificationId": n.ID,
	})
	return nil
}
