package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/parkfind/backend/internal/domain"
)

// GetPostByID retrieves a post by ID
func (r *PostgresRepository) GetPostByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := `
		SELECT id, author_id, kind, title, content, created_at
		FROM posts WHERE id = $1
	`
	row := r.conn(ctx).QueryRow(ctx, query, id)

	var post domain.Post
	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Kind,
		&post.Title,
		&post.Content,
		&post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// CreateComment inserts a comment on a post
func (r *PostgresRepository) CreateComment(ctx context.Context, postID, authorID uuid.UUID, content string) (*domain.Comment, error) {
	query := `
		INSERT INTO comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, author_id, content, created_at
	`
	return scanComment(r.conn(ctx).QueryRow(ctx, query, postID, authorID, content))
}

// GetCommentByID retrieves a comment by ID
func (r *PostgresRepository) GetCommentByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := `
		SELECT id, post_id, author_id, content, created_at
		FROM comments WHERE id = $1
	`
	return scanComment(r.conn(ctx).QueryRow(ctx, query, id))
}

// CreateParkUpdate inserts a park update for a watching user
func (r *PostgresRepository) CreateParkUpdate(ctx context.Context, parkName string, userID uuid.UUID) (*domain.ParkUpdate, error) {
	query := `
		INSERT INTO park_updates (park_name, user_id)
		VALUES ($1, $2)
		RETURNING id, park_name, user_id, created_at
	`
	row := r.conn(ctx).QueryRow(ctx, query, parkName, userID)

	var update domain.ParkUpdate
	err := row.Scan(
		&update.ID,
		&update.ParkName,
		&update.UserID,
		&update.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &update, nil
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var comment domain.Comment
	err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.Content,
		&comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}
