package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// NotificationItem is the projected shape returned to clients: the record
// plus a human-readable actor and per-type text.
type NotificationItem struct {
	ID            uuid.UUID        `json:"id"`
	Code          NotificationCode `json:"code"`
	Text          string           `json:"text"`
	ActorNickname string           `json:"actor_nickname,omitempty"`
	ActorPhotoURL string           `json:"actor_photo_url,omitempty"`
	Checked       bool             `json:"checked"`
	CreatedAt     string           `json:"created_at"`
}

// NotificationService owns the notification record store and its read-state
// bookkeeping. Records are created by the dispatcher path and mutated only by
// the mark-read transitions here.
type NotificationService struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Create inserts a new unread record after checking the code/reference
// invariant.
func (s *NotificationService) Create(ctx context.Context, params CreateNotificationParams) (*Notification, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.CreateNotification(ctx, params)
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page, size int) ([]*NotificationItem, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	rows, err := s.repo.ListNotifications(ctx, userID, size, (page-1)*size)
	if err != nil {
		return nil, err
	}

	items := make([]*NotificationItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, project(row))
	}
	return items, nil
}

// MarkRead flips the given records to read. Records already read or owned by
// someone else are left untouched; the returned count reflects actual flips
// and may be zero.
func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.MarkNotificationsRead(ctx, userID, ids)
}

// MarkAllRead flips every unread record for the user.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}

// UnreadCount is the authoritative unread total, read straight from storage.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnreadNotifications(ctx, userID)
}

func project(row *NotificationRow) *NotificationItem {
	item := &NotificationItem{
		ID:        row.ID,
		Code:      row.Code,
		Checked:   row.Checked,
		CreatedAt: row.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if row.ActorNickname != nil {
		item.ActorNickname = *row.ActorNickname
	}
	if row.ActorPhotoURL != nil {
		item.ActorPhotoURL = *row.ActorPhotoURL
	}

	switch row.Code {
	case CodeFollow:
		item.Text = fmt.Sprintf("%s님이 회원님을 팔로우하기 시작했습니다.", item.ActorNickname)
	case CodeComment:
		item.Text = fmt.Sprintf("%s님이 회원님의 글에 댓글을 남겼습니다.", item.ActorNickname)
	case CodeFindUpdate:
		if row.Message != nil {
			item.Text = *row.Message
		}
	case CodeParkUpdate:
		item.Text = "회원님이 찜한 공원에 새로운 소식이 있습니다."
	}
	return item
}
