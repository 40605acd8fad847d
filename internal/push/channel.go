// Package push fans one logical notification out across independent delivery
// channels. Channels are best-effort: a failure inside one channel never
// affects another, and never the request that triggered the notification.
package push

import (
	"context"

	"github.com/google/uuid"
	"github.com/parkfind/backend/internal/domain"
)

// Delivery is the channel-agnostic description of one notification to one
// user. Channels render it into their own wire shape.
type Delivery struct {
	NotificationID uuid.UUID
	UserID         uuid.UUID
	Code           domain.NotificationCode
	Title          string
	Body           string
	ActorNickname  string
	ActorPhotoURL  string
	DeepLink       string
}

// Data flattens the delivery into the small string map carried by push
// payloads. Empty actor fields are omitted.
func (d Delivery) Data() map[string]string {
	data := map[string]string{
		"type":            string(d.Code),
		"notification_id": d.NotificationID.String(),
		"link":            d.DeepLink,
	}
	if d.ActorNickname != "" {
		data["actor_nickname"] = d.ActorNickname
	}
	if d.ActorPhotoURL != "" {
		data["actor_photo_url"] = d.ActorPhotoURL
	}
	return data
}

// Channel delivers a notification to one user over one transport. Send
// returns an error only for caller-contract violations such as context
// cancellation; per-recipient delivery failures are logged inside the
// channel and swallowed.
type Channel interface {
	Name() string
	Send(ctx context.Context, d Delivery) error
}
