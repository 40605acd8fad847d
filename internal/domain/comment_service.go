package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/parkfind/backend/internal/event"
)

var ErrEmptyComment = errors.New("comment content is empty")

type CommentService struct {
	repo PostRepository
	tx   TxRunner
	bus  *event.Bus
}

func NewCommentService(repo PostRepository, tx TxRunner, bus *event.Bus) *CommentService {
	return &CommentService{
		repo: repo,
		tx:   tx,
		bus:  bus,
	}
}

// AddComment inserts the comment and raises CommentCreated post-commit.
func (s *CommentService) AddComment(ctx context.Context, postID, authorID uuid.UUID, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}

	var comment *Comment
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetPostByID(ctx, postID); err != nil {
			return err
		}

		c, err := s.repo.CreateComment(ctx, postID, authorID, content)
		if err != nil {
			return err
		}
		comment = c

		s.bus.Raise(ctx, event.CommentCreated{
			CommentID: c.ID,
			PostID:    c.PostID,
			AuthorID:  c.AuthorID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}
