package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/domain"
	"github.com/parkfind/backend/internal/middleware"
	"github.com/parkfind/backend/pkg/response"
)

type NotificationHandler struct {
	service *domain.NotificationService
	logger  *zap.Logger
}

func NewNotificationHandler(service *domain.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger,
	}
}

// List handles POST /notifications/list
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		Page int `json:"page"`
		Size int `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	items, err := h.service.List(r.Context(), userID, req.Page, req.Size)
	if err != nil {
		h.logger.Error("failed to list notifications", zap.Error(err))
		response.InternalError(w, "failed to fetch notifications")
		return
	}

	response.OK(w, items)
}

// MarkRead handles POST /notifications/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "invalid notification id")
			return
		}
		ids = append(ids, id)
	}

	changed, err := h.service.MarkRead(r.Context(), userID, ids)
	if err != nil {
		h.logger.Error("failed to mark notifications read", zap.Error(err))
		response.InternalError(w, "failed to update notifications")
		return
	}

	response.OK(w, map[string]int64{"changed": changed})
}

// MarkAllRead handles POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	changed, err := h.service.MarkAllRead(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to mark all notifications read", zap.Error(err))
		response.InternalError(w, "failed to update notifications")
		return
	}

	response.OK(w, map[string]int64{"changed": changed})
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to count unread notifications", zap.Error(err))
		response.InternalError(w, "failed to fetch unread count")
		return
	}

	response.OK(w, map[string]int64{"count": count})
}
