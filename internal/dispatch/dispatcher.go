// Package dispatch turns committed domain events into notification records
// and best-effort channel deliveries. Its handlers only ever run after the
// originating transaction has committed, and nothing that goes wrong here is
// allowed to reach the request that raised the event.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/domain"
	"github.com/parkfind/backend/internal/event"
	"github.com/parkfind/backend/internal/push"
)

type Dispatcher struct {
	notifications *domain.NotificationService
	follows       domain.FollowRepository
	posts         domain.PostRepository
	users         domain.UserRepository
	channels      []push.Channel
	logger        *zap.Logger
}

func NewDispatcher(
	notifications *domain.NotificationService,
	follows domain.FollowRepository,
	posts domain.PostRepository,
	users domain.UserRepository,
	channels []push.Channel,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		follows:       follows,
		posts:         posts,
		users:         users,
		channels:      channels,
		logger:        logger,
	}
}

// Register subscribes the dispatcher to the bus. Call once at startup.
func (d *Dispatcher) Register(bus *event.Bus) {
	bus.Subscribe(event.FollowCreated{}.Name(), d.handleFollowCreated)
	bus.Subscribe(event.CommentCreated{}.Name(), d.handleCommentCreated)
	bus.Subscribe(event.FindDiscovered{}.Name(), d.handleFindDiscovered)
	bus.Subscribe(event.ParkUpdated{}.Name(), d.handleParkUpdated)
}

func (d *Dispatcher) handleFollowCreated(ctx context.Context, e event.Event) {
	ev, ok := e.(event.FollowCreated)
	if !ok {
		return
	}

	// Re-resolve by id; the row may have been deleted since the commit.
	follow, err := d.follows.GetFollowByID(ctx, ev.FollowID)
	if err != nil {
		d.abandon("follow", ev.FollowID, err)
		return
	}

	record, err := d.notifications.Create(ctx, domain.CreateNotificationParams{
		Code:         domain.CodeFollow,
		TargetUserID: follow.FollowedID,
		FollowID:     &follow.ID,
	})
	if err != nil {
		d.logger.Error("failed to create follow notification",
			zap.String("follow_id", ev.FollowID.String()),
			zap.Error(err),
		)
		return
	}

	delivery := push.Delivery{
		NotificationID: record.ID,
		UserID:         follow.FollowedID,
		Code:           domain.CodeFollow,
		Title:          "새 팔로우",
		DeepLink:       fmt.Sprintf("parkfind://users/%s", follow.FollowerID),
	}
	d.attachActor(ctx, &delivery, follow.FollowerID)
	if delivery.ActorNickname != "" {
		delivery.Body = fmt.Sprintf("%s님이 회원님을 팔로우하기 시작했습니다.", delivery.ActorNickname)
	} else {
		delivery.Body = "새로운 팔로워가 생겼습니다."
	}

	d.fanout(ctx, delivery)
}

func (d *Dispatcher) handleCommentCreated(ctx context.Context, e event.Event) {
	ev, ok := e.(event.CommentCreated)
	if !ok {
		return
	}

	comment, err := d.posts.GetCommentByID(ctx, ev.CommentID)
	if err != nil {
		d.abandon("comment", ev.CommentID, err)
		return
	}
	post, err := d.posts.GetPostByID(ctx, comment.PostID)
	if err != nil {
		d.abandon("post", comment.PostID, err)
		return
	}

	// Commenting on your own post is not news.
	if post.AuthorID == comment.AuthorID {
		return
	}

	record, err := d.notifications.Create(ctx, domain.CreateNotificationParams{
		Code:         domain.CodeComment,
		TargetUserID: post.AuthorID,
		CommentID:    &comment.ID,
	})
	if err != nil {
		d.logger.Error("failed to create comment notification",
			zap.String("comment_id", ev.CommentID.String()),
			zap.Error(err),
		)
		return
	}

	delivery := push.Delivery{
		NotificationID: record.ID,
		UserID:         post.AuthorID,
		Code:           domain.CodeComment,
		Title:          "새 댓글",
		DeepLink:       fmt.Sprintf("parkfind://posts/%s/comments/%s", post.ID, comment.ID),
	}
	d.attachActor(ctx, &delivery, comment.AuthorID)
	if delivery.ActorNickname != "" {
		delivery.Body = fmt.Sprintf("%s님이 회원님의 글에 댓글을 남겼습니다.", delivery.ActorNickname)
	} else {
		delivery.Body = "회원님의 글에 새 댓글이 달렸습니다."
	}

	d.fanout(ctx, delivery)
}

func (d *Dispatcher) handleFindDiscovered(ctx context.Context, e event.Event) {
	ev, ok := e.(event.FindDiscovered)
	if !ok {
		return
	}

	message := ev.Message
	record, err := d.notifications.Create(ctx, domain.CreateNotificationParams{
		Code:         domain.CodeFindUpdate,
		TargetUserID: ev.UserID,
		Message:      &message,
	})
	if err != nil {
		d.logger.Error("failed to create find notification",
			zap.String("user_id", ev.UserID.String()),
			zap.Error(err),
		)
		return
	}

	d.fanout(ctx, push.Delivery{
		NotificationID: record.ID,
		UserID:         ev.UserID,
		Code:           domain.CodeFindUpdate,
		Title:          "근처 발견",
		Body:           ev.Message,
		DeepLink:       "parkfind://map",
	})
}

func (d *Dispatcher) handleParkUpdated(ctx context.Context, e event.Event) {
	ev, ok := e.(event.ParkUpdated)
	if !ok {
		return
	}

	record, err := d.notifications.Create(ctx, domain.CreateNotificationParams{
		Code:         domain.CodeParkUpdate,
		TargetUserID: ev.UserID,
		ParkUpdateID: &ev.ParkUpdateID,
	})
	if err != nil {
		d.logger.Error("failed to create park notification",
			zap.String("park_update_id", ev.ParkUpdateID.String()),
			zap.Error(err),
		)
		return
	}

	d.fanout(ctx, push.Delivery{
		NotificationID: record.ID,
		UserID:         ev.UserID,
		Code:           domain.CodeParkUpdate,
		Title:          "공원 소식",
		Body:           "회원님이 찜한 공원에 새로운 소식이 있습니다.",
		DeepLink:       fmt.Sprintf("parkfind://parks/%s", ev.ParkUpdateID),
	})
}

// fanout invokes every channel independently. A channel returning an error
// only stops the remaining channels when the context itself is done.
func (d *Dispatcher) fanout(ctx context.Context, delivery push.Delivery) {
	for _, ch := range d.channels {
		if err := ch.Send(ctx, delivery); err != nil {
			d.logger.Error("channel delivery failed",
				zap.String("channel", ch.Name()),
				zap.String("notification_id", delivery.NotificationID.String()),
				zap.String("user_id", delivery.UserID.String()),
				zap.Error(err),
			)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
		}
	}
}

func (d *Dispatcher) attachActor(ctx context.Context, delivery *push.Delivery, actorID uuid.UUID) {
	actor, err := d.users.GetUserByID(ctx, actorID)
	if err != nil {
		d.logger.Warn("failed to resolve notification actor",
			zap.String("actor_id", actorID.String()),
			zap.Error(err),
		)
		return
	}
	delivery.ActorNickname = actor.Nickname
	if actor.PhotoURL != nil {
		delivery.ActorPhotoURL = *actor.PhotoURL
	}
}

func (d *Dispatcher) abandon(entity string, id uuid.UUID, err error) {
	d.logger.Warn("notification dispatch abandoned: entity no longer resolves",
		zap.String("entity", entity),
		zap.String("id", id.String()),
		zap.Error(err),
	)
}
