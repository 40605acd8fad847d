package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidReference     = errors.New("notification reference does not match code")
)

// NotificationCode enumerates the event kinds a notification can represent.
type NotificationCode string

const (
	CodeFollow     NotificationCode = "FOLLOW"
	CodeComment    NotificationCode = "COMMENT"
	CodeFindUpdate NotificationCode = "FIND_UPDATE"
	CodeParkUpdate NotificationCode = "PARK_UPDATE"
)

// Notification is the persisted system of record a client polls. Exactly one
// of FollowID, CommentID, ParkUpdateID, or Message is populated, matching
// Code. Checked flips true at most once; nothing else mutates after insert.
type Notification struct {
	ID           uuid.UUID        `json:"id"`
	Code         NotificationCode `json:"code"`
	FollowID     *uuid.UUID       `json:"follow_id,omitempty"`
	CommentID    *uuid.UUID       `json:"comment_id,omitempty"`
	ParkUpdateID *uuid.UUID       `json:"park_update_id,omitempty"`
	Message      *string          `json:"message,omitempty"`
	TargetUserID uuid.UUID        `json:"target_user_id"`
	Checked      bool             `json:"checked"`
	CreatedAt    time.Time        `json:"created_at"`
}

type CreateNotificationParams struct {
	Code         NotificationCode
	TargetUserID uuid.UUID
	FollowID     *uuid.UUID
	CommentID    *uuid.UUID
	ParkUpdateID *uuid.UUID
	Message      *string
}

// Validate enforces the code/reference invariant: the populated field must be
// the one the code names, and it must be the only one.
func (p CreateNotificationParams) Validate() error {
	populated := 0
	if p.FollowID != nil {
		populated++
	}
	if p.CommentID != nil {
		populated++
	}
	if p.ParkUpdateID != nil {
		populated++
	}
	if p.Message != nil {
		populated++
	}
	if populated != 1 {
		return ErrInvalidReference
	}

	switch p.Code {
	case CodeFollow:
		if p.FollowID == nil {
			return ErrInvalidReference
		}
	case CodeComment:
		if p.CommentID == nil {
			return ErrInvalidReference
		}
	case CodeParkUpdate:
		if p.ParkUpdateID == nil {
			return ErrInvalidReference
		}
	case CodeFindUpdate:
		if p.Message == nil {
			return ErrInvalidReference
		}
	default:
		return ErrInvalidReference
	}
	return nil
}

// NotificationRow is a notification joined with its resolved actor, as read
// back for client listings.
type NotificationRow struct {
	Notification
	ActorNickname *string `json:"-"`
	ActorPhotoURL *string `json:"-"`
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, params CreateNotificationParams) (*Notification, error)
	GetNotificationByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*NotificationRow, error)
	MarkNotificationsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error)
}

// PushSubscription is one browser's Web Push registration. Endpoint is unique
// across all users; re-subscribing with the same endpoint updates in place.
type PushSubscription struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeviceToken is a native push registration, upserted on token. This table is
// the single source of truth for a user's current devices; no token lives on
// the user row.
type DeviceToken struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	AppName   string    `json:"app_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PushRegistry interface {
	UpsertPushSubscription(ctx context.Context, userID uuid.UUID, endpoint, p256dh, auth string) (*PushSubscription, error)
	DeletePushSubscription(ctx context.Context, userID uuid.UUID, endpoint string) error
	GetPushSubscriptions(ctx context.Context, userID uuid.UUID) ([]*PushSubscription, error)
	UpsertDeviceToken(ctx context.Context, userID uuid.UUID, token, platform, appName string) (*DeviceToken, error)
	GetDeviceTokens(ctx context.Context, userID uuid.UUID) ([]*DeviceToken, error)
}

// TxRunner runs fn inside a database transaction. Domain events raised during
// fn are published only after the transaction commits.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
