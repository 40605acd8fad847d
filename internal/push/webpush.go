package push

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/config"
	"github.com/parkfind/backend/internal/domain"
)

// SubscriptionStore is the slice of the push registry the Web Push channel
// reads.
type SubscriptionStore interface {
	GetPushSubscriptions(ctx context.Context, userID uuid.UUID) ([]*domain.PushSubscription, error)
}

// WebPushChannel encrypts and delivers payloads to every browser
// subscription of the target user. Per-subscription failures are isolated;
// only context cancellation aborts the remaining sends.
type WebPushChannel struct {
	store  SubscriptionStore
	vapid  config.VAPIDConfig
	client *http.Client
	logger *zap.Logger
}

func NewWebPushChannel(store SubscriptionStore, vapid config.VAPIDConfig, logger *zap.Logger) *WebPushChannel {
	return &WebPushChannel{
		store:  store,
		vapid:  vapid,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (c *WebPushChannel) Name() string { return "webpush" }

type webPushPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

func (c *WebPushChannel) Send(ctx context.Context, d Delivery) error {
	if !c.vapid.Configured() {
		c.logger.Warn("webpush skipped: VAPID keys not configured",
			zap.String("user_id", d.UserID.String()),
		)
		return nil
	}

	subs, err := c.store.GetPushSubscriptions(ctx, d.UserID)
	if err != nil {
		c.logger.Error("failed to load push subscriptions",
			zap.String("user_id", d.UserID.String()),
			zap.Error(err),
		)
		return nil
	}
	if len(subs) == 0 {
		return nil
	}

	payload, err := json.Marshal(webPushPayload{
		Title: d.Title,
		Body:  d.Body,
		Data:  d.Data(),
	})
	if err != nil {
		c.logger.Error("failed to marshal webpush payload", zap.Error(err))
		return nil
	}

	options := &webpush.Options{
		HTTPClient:      c.client,
		Subscriber:      c.vapid.Subject,
		VAPIDPublicKey:  c.vapid.PublicKey,
		VAPIDPrivateKey: c.vapid.PrivateKey,
		TTL:             60,
	}

	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.sendOne(ctx, payload, sub, options)
	}
	return ctx.Err()
}

func (c *WebPushChannel) sendOne(ctx context.Context, payload []byte, sub *domain.PushSubscription, options *webpush.Options) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, options)
	if err != nil {
		c.logger.Error("webpush send failed",
			zap.String("user_id", sub.UserID.String()),
			zap.String("endpoint", sub.Endpoint),
			zap.Error(err),
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		// 404/410 mean the browser dropped the subscription.
		c.logger.Warn("webpush rejected by push service",
			zap.String("user_id", sub.UserID.String()),
			zap.String("endpoint", sub.Endpoint),
			zap.Int("status", resp.StatusCode),
		)
	}
}
