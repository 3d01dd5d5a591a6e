package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Discord posts notifications to a Discord channel.
type Discord struct {
	session *discordgo.Session
	channel string
	logger  *zap.Logger
}

// NewDiscord creates a discord sink over an authenticated session.
func NewDiscord(token, channel string, logger *zap.Logger) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Discord{session: session, channel: channel, logger: logger}, nil
}

// Send posts the message.
func (d *Discord) Send(ctx context.Context, destination, message string) error {
	_, err := d.session.ChannelMessageSend(d.channel,
		fmt.Sprintf("[%s]%s", destination, message),
		discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord post: %w", err)
	}
	d.logger.Debug("sent discord notification", zap.String("destination", destination))
	return nil
}

// Close shuts down the Discord session.
func (d *Discord) Close() error {
	return d.session.Close()
}
