package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrFollowNotFound   = errors.New("follow not found")
)

type Follow struct {
	ID         uuid.UUID `json:"id"`
	FollowerID uuid.UUID `json:"follower_id"`
	FollowedID uuid.UUID `json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type FollowRepository interface {
	CreateFollow(ctx context.Context, followerID, followedID uuid.UUID) (*Follow, error)
	GetFollowByID(ctx context.Context, id uuid.UUID) (*Follow, error)
	DeleteFollow(ctx context.Context, followerID, followedID uuid.UUID) error
}
