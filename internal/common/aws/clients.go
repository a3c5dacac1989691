// internal/common/aws/clients.go
package aws

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"hospital-ops/internal/common/config"
)

// Clients holds the AWS service clients the notification sinks need.
// A field is nil when no configured transport uses that service.
type Clients struct {
	SES *ses.Client
	SNS *sns.Client
}

// NewClients loads the default credential chain once and builds only the
// clients the notification config asks for.
func NewClients(ctx context.Context, cfg config.NotificationConfig) (*Clients, error) {
	clients := &Clients{}
	if !cfg.UsesAWS() {
		return clients, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if cfg.Email.Transport == config.TransportSES {
		clients.SES = ses.NewFromConfig(awsCfg)
	}
	if cfg.SMS.Transport == config.TransportSNS || cfg.Push.TopicARN != "" {
		clients.SNS = sns.NewFromConfig(awsCfg)
	}
	return clients, nil
}
