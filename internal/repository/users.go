package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/parkfind/backend/internal/domain"
)

// CreateUser creates a new user
func (r *PostgresRepository) CreateUser(ctx context.Context, params domain.CreateUserParams) (*domain.User, error) {
	query := `
		INSERT INTO users (email, password_hash, nickname)
		VALUES ($1, $2, $3)
		RETURNING id, email, nickname, photo_url, created_at, updated_at
	`
	row := r.conn(ctx).QueryRow(ctx, query, params.Email, params.PasswordHash, params.Nickname)

	user, err := scanUser(row)
	if err != nil && isUniqueViolation(err) {
		return nil, domain.ErrEmailTaken
	}
	return user, err
}

// GetUserByID retrieves a user by ID
func (r *PostgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, nickname, photo_url, created_at, updated_at
		FROM users WHERE id = $1
	`
	return scanUser(r.conn(ctx).QueryRow(ctx, query, id))
}

// GetUserByEmail retrieves a user by email
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, nickname, photo_url, created_at, updated_at
		FROM users WHERE email = $1
	`
	return scanUser(r.conn(ctx).QueryRow(ctx, query, email))
}

// GetUserWithPassword retrieves a user with password hash for verification
func (r *PostgresRepository) GetUserWithPassword(ctx context.Context, email string) (*domain.User, string, error) {
	query := `
		SELECT id, email, nickname, photo_url, created_at, updated_at, password_hash
		FROM users WHERE email = $1
	`
	row := r.conn(ctx).QueryRow(ctx, query, email)

	var user domain.User
	var passwordHash string
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Nickname,
		&user.PhotoURL,
		&user.CreatedAt,
		&user.UpdatedAt,
		&passwordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", domain.ErrUserNotFound
		}
		return nil, "", err
	}
	return &user, passwordHash, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Nickname,
		&user.PhotoURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
