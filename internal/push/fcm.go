package push

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/domain"
)

// TokenStore is the slice of the push registry the native channel reads.
type TokenStore interface {
	GetDeviceTokens(ctx context.Context, userID uuid.UUID) ([]*domain.DeviceToken, error)
}

// MessageSender delivers one message to one device token. Implemented by
// fcm.Client.
type MessageSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// FCMChannel delivers notifications to a user's registered devices through
// the cloud messaging backend. Fire-and-forget: failures are logged with
// enough context to diagnose and never returned.
type FCMChannel struct {
	tokens TokenStore
	sender MessageSender
	logger *zap.Logger
}

func NewFCMChannel(tokens TokenStore, sender MessageSender, logger *zap.Logger) *FCMChannel {
	return &FCMChannel{
		tokens: tokens,
		sender: sender,
		logger: logger,
	}
}

func (c *FCMChannel) Name() string { return "fcm" }

func (c *FCMChannel) Send(ctx context.Context, d Delivery) error {
	tokens, err := c.tokens.GetDeviceTokens(ctx, d.UserID)
	if err != nil {
		c.logger.Error("failed to load device tokens",
			zap.String("user_id", d.UserID.String()),
			zap.Error(err),
		)
		return nil
	}
	if len(tokens) == 0 {
		return nil
	}

	data := d.Data()
	for _, t := range tokens {
		if t.Token == "" {
			continue
		}
		if err := c.sender.Send(ctx, t.Token, d.Title, d.Body, data); err != nil {
			c.logger.Error("fcm send failed",
				zap.String("user_id", d.UserID.String()),
				zap.String("token", truncateToken(t.Token)),
				zap.Error(err),
			)
		}
	}
	return nil
}

func truncateToken(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}
