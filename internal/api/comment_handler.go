package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/domain"
	"github.com/parkfind/backend/internal/middleware"
	"github.com/parkfind/backend/pkg/response"
)

type CommentHandler struct {
	comments *domain.CommentService
	logger   *zap.Logger
}

func NewCommentHandler(comments *domain.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		logger:   logger,
	}
}

// AddComment handles POST /posts/{postID}/comments
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		response.BadRequest(w, "invalid post id")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	comment, err := h.comments.AddComment(r.Context(), postID, userID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyComment):
			response.BadRequest(w, "comment content is empty")
		case errors.Is(err, domain.ErrPostNotFound):
			response.NotFound(w, "post not found")
		default:
			h.logger.Error("failed to add comment", zap.Error(err))
			response.InternalError(w, "failed to add comment")
		}
		return
	}

	response.Created(w, comment)
}
