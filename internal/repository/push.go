package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/parkfind/backend/internal/domain"
)

// UpsertPushSubscription registers a browser subscription, keyed on the
// endpoint. Re-subscribing with a known endpoint refreshes the row instead of
// duplicating it.
func (r *PostgresRepository) UpsertPushSubscription(ctx context.Context, userID uuid.UUID, endpoint, p256dh, auth string) (*domain.PushSubscription, error) {
	query := `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (endpoint) DO UPDATE
		SET user_id = EXCLUDED.user_id, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth, updated_at = NOW()
		RETURNING id, user_id, endpoint, p256dh, auth, created_at, updated_at
	`
	row := r.conn(ctx).QueryRow(ctx, query, userID, endpoint, p256dh, auth)

	var sub domain.PushSubscription
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Endpoint,
		&sub.P256dh,
		&sub.Auth,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeletePushSubscription removes a subscription owned by the user
func (r *PostgresRepository) DeletePushSubscription(ctx context.Context, userID uuid.UUID, endpoint string) error {
	query := `DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2`
	_, err := r.conn(ctx).Exec(ctx, query, userID, endpoint)
	return err
}

// GetPushSubscriptions returns every subscription of the user
func (r *PostgresRepository) GetPushSubscriptions(ctx context.Context, userID uuid.UUID) ([]*domain.PushSubscription, error) {
	query := `
		SELECT id, user_id, endpoint, p256dh, auth, created_at, updated_at
		FROM push_subscriptions WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := r.conn(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*domain.PushSubscription
	for rows.Next() {
		var sub domain.PushSubscription
		err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.Endpoint,
			&sub.P256dh,
			&sub.Auth,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		subs = append(subs, &sub)
	}
	return subs, rows.Err()
}

// UpsertDeviceToken registers a native push token, keyed on the token itself.
// A token that moves between accounts follows the last registration.
func (r *PostgresRepository) UpsertDeviceToken(ctx context.Context, userID uuid.UUID, token, platform, appName string) (*domain.DeviceToken, error) {
	query := `
		INSERT INTO device_tokens (user_id, token, platform, app_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform, app_name = EXCLUDED.app_name, updated_at = NOW()
		RETURNING id, user_id, token, platform, app_name, created_at, updated_at
	`
	row := r.conn(ctx).QueryRow(ctx, query, userID, token, platform, appName)
	return scanDeviceToken(row)
}

// GetDeviceTokens returns every registered device token of the user
func (r *PostgresRepository) GetDeviceTokens(ctx context.Context, userID uuid.UUID) ([]*domain.DeviceToken, error) {
	query := `
		SELECT id, user_id, token, platform, app_name, created_at, updated_at
		FROM device_tokens WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := r.conn(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []*domain.DeviceToken
	for rows.Next() {
		var t domain.DeviceToken
		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Token,
			&t.Platform,
			&t.AppName,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, &t)
	}
	return tokens, rows.Err()
}

func scanDeviceToken(row pgx.Row) (*domain.DeviceToken, error) {
	var t domain.DeviceToken
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Token,
		&t.Platform,
		&t.AppName,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
