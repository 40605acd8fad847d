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

type FollowHandler struct {
	follows *domain.FollowService
	logger  *zap.Logger
}

func NewFollowHandler(follows *domain.FollowService, logger *zap.Logger) *FollowHandler {
	return &FollowHandler{
		follows: follows,
		logger:  logger,
	}
}

// Follow handles POST /follows
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		TargetUserID string `json:"target_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	targetID, err := uuid.Parse(req.TargetUserID)
	if err != nil {
		response.BadRequest(w, "invalid target user id")
		return
	}

	follow, err := h.follows.Follow(r.Context(), userID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfFollow):
			response.BadRequest(w, "cannot follow yourself")
		case errors.Is(err, domain.ErrAlreadyFollowing):
			response.Conflict(w, "already following this user")
		default:
			h.logger.Error("failed to create follow", zap.Error(err))
			response.InternalError(w, "failed to follow")
		}
		return
	}

	response.Created(w, follow)
}

// Unfollow handles DELETE /follows/{userID}
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	if err := h.follows.Unfollow(r.Context(), userID, targetID); err != nil {
		if errors.Is(err, domain.ErrFollowNotFound) {
			response.NotFound(w, "not following this user")
			return
		}
		h.logger.Error("failed to delete follow", zap.Error(err))
		response.InternalError(w, "failed to unfollow")
		return
	}

	response.NoContent(w)
}
