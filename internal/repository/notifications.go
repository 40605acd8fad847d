package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/parkfind/backend/internal/domain"
)

// CreateNotification inserts a new unread notification record
func (r *PostgresRepository) CreateNotification(ctx context.Context, params domain.CreateNotificationParams) (*domain.Notification, error) {
	query := `
		INSERT INTO notifications (code, follow_id, comment_id, park_update_id, message, target_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, code, follow_id, comment_id, park_update_id, message, target_user_id, checked, created_at
	`
	row := r.conn(ctx).QueryRow(ctx, query,
		params.Code,
		params.FollowID,
		params.CommentID,
		params.ParkUpdateID,
		params.Message,
		params.TargetUserID,
	)
	return scanNotification(row)
}

// GetNotificationByID retrieves a notification by ID
func (r *PostgresRepository) GetNotificationByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	query := `
		SELECT id, code, follow_id, comment_id, park_update_id, message, target_user_id, checked, created_at
		FROM notifications WHERE id = $1
	`
	return scanNotification(r.conn(ctx).QueryRow(ctx, query, id))
}

// ListNotifications returns a page of the user's notifications, newest
// first, each joined with the actor resolved from its reference.
func (r *PostgresRepository) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.NotificationRow, error) {
	query := `
		SELECT n.id, n.code, n.follow_id, n.comment_id, n.park_update_id, n.message,
		       n.target_user_id, n.checked, n.created_at,
		       actor.nickname, actor.photo_url
		FROM notifications n
		LEFT JOIN follows f ON n.follow_id = f.id
		LEFT JOIN comments c ON n.comment_id = c.id
		LEFT JOIN users actor ON actor.id = COALESCE(f.follower_id, c.author_id)
		WHERE n.target_user_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.conn(ctx).Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.NotificationRow
	for rows.Next() {
		var row domain.NotificationRow
		err := rows.Scan(
			&row.ID,
			&row.Code,
			&row.FollowID,
			&row.CommentID,
			&row.ParkUpdateID,
			&row.Message,
			&row.TargetUserID,
			&row.Checked,
			&row.CreatedAt,
			&row.ActorNickname,
			&row.ActorPhotoURL,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, &row)
	}
	return result, rows.Err()
}

// MarkNotificationsRead flips the given unread records owned by the user to
// read, as a single atomic update. Ids that are already read, unknown, or
// owned by someone else are silently unaffected.
func (r *PostgresRepository) MarkNotificationsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications SET checked = TRUE
		WHERE target_user_id = $1 AND id = ANY($2) AND checked = FALSE
	`
	tag, err := r.conn(ctx).Exec(ctx, query, userID, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// MarkAllNotificationsRead flips every unread record for the user
func (r *PostgresRepository) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications SET checked = TRUE
		WHERE target_user_id = $1 AND checked = FALSE
	`
	tag, err := r.conn(ctx).Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountUnreadNotifications returns the user's current unread total
func (r *PostgresRepository) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE target_user_id = $1 AND checked = FALSE`
	var count int64
	err := r.conn(ctx).QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID,
		&n.Code,
		&n.FollowID,
		&n.CommentID,
		&n.ParkUpdateID,
		&n.Message,
		&n.TargetUserID,
		&n.Checked,
		&n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}
