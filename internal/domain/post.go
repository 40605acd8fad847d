package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// PostKind distinguishes forum posts from ephemeral find posts.
type PostKind string

const (
	PostKindForum PostKind = "forum"
	PostKindFind  PostKind = "find"
)

type Post struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Kind      PostKind  `json:"kind"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ParkUpdate records fresh activity at a park a user may be watching.
type ParkUpdate struct {
	ID        uuid.UUID `json:"id"`
	ParkName  string    `json:"park_name"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type PostRepository interface {
	GetPostByID(ctx context.Context, id uuid.UUID) (*Post, error)
	CreateComment(ctx context.Context, postID, authorID uuid.UUID, content string) (*Comment, error)
	GetCommentByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	CreateParkUpdate(ctx context.Context, parkName string, userID uuid.UUID) (*ParkUpdate, error)
}
