package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/parkfind/backend/internal/event"
)

type FollowService struct {
	repo FollowRepository
	tx   TxRunner
	bus  *event.Bus
}

func NewFollowService(repo FollowRepository, tx TxRunner, bus *event.Bus) *FollowService {
	return &FollowService{
		repo: repo,
		tx:   tx,
		bus:  bus,
	}
}

// Follow creates the relationship and raises FollowCreated. The event stays
// queued until the transaction commits, so a rolled-back follow never reaches
// the notification pipeline.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID uuid.UUID) (*Follow, error) {
	if followerID == followedID {
		return nil, ErrSelfFollow
	}

	var follow *Follow
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		f, err := s.repo.CreateFollow(ctx, followerID, followedID)
		if err != nil {
			return err
		}
		follow = f

		s.bus.Raise(ctx, event.FollowCreated{
			FollowID:   f.ID,
			FollowerID: f.FollowerID,
			FollowedID: f.FollowedID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return follow, nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	return s.repo.DeleteFollow(ctx, followerID, followedID)
}
