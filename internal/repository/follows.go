package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/parkfind/backend/internal/domain"
)

// CreateFollow inserts a follow relationship
func (r *PostgresRepository) CreateFollow(ctx context.Context, followerID, followedID uuid.UUID) (*domain.Follow, error) {
	query := `
		INSERT INTO follows (follower_id, followed_id)
		VALUES ($1, $2)
		RETURNING id, follower_id, followed_id, created_at
	`
	row := r.conn(ctx).QueryRow(ctx, query, followerID, followedID)

	follow, err := scanFollow(row)
	if err != nil && isUniqueViolation(err) {
		return nil, domain.ErrAlreadyFollowing
	}
	return follow, err
}

// GetFollowByID retrieves a follow by ID
func (r *PostgresRepository) GetFollowByID(ctx context.Context, id uuid.UUID) (*domain.Follow, error) {
	query := `
		SELECT id, follower_id, followed_id, created_at
		FROM follows WHERE id = $1
	`
	return scanFollow(r.conn(ctx).QueryRow(ctx, query, id))
}

// DeleteFollow removes a follow relationship
func (r *PostgresRepository) DeleteFollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`
	tag, err := r.conn(ctx).Exec(ctx, query, followerID, followedID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFollowNotFound
	}
	return nil
}

func scanFollow(row pgx.Row) (*domain.Follow, error) {
	var follow domain.Follow
	err := row.Scan(
		&follow.ID,
		&follow.FollowerID,
		&follow.FollowedID,
		&follow.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFollowNotFound
		}
		return nil, err
	}
	return &follow, nil
}
