package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// Slack posts notifications to a Slack channel.
type Slack struct {
	client  *slack.Client
	channel string
	logger  *zap.Logger
}

// NewSlack creates a slack sink. All messages go to the configured channel;
// the destination id is shown as context in the message.
func NewSlack(token, channel string, logger *zap.Logger) *Slack {
	return &Slack{
		client:  slack.New(token),
		channel: channel,
		logger:  logger,
	}
}

// Send posts the message.
func (s *Slack) Send(ctx context.Context, destination, message string) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(fmt.Sprintf("[%s]%s", destination, message), false))
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	s.logger.Debug("sent slack notification", zap.String("destination", destination))
	return nil
}
