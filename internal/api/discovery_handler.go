package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/domain"
	"github.com/parkfind/backend/internal/middleware"
	"github.com/parkfind/backend/pkg/response"
)

// DiscoveryHandler receives proximity-discovery reports and park updates
// from the scanning collaborator.
type DiscoveryHandler struct {
	discoveries *domain.DiscoveryService
	logger      *zap.Logger
}

func NewDiscoveryHandler(discoveries *domain.DiscoveryService, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveries: discoveries,
		logger:      logger,
	}
}

// ReportFind handles POST /discoveries
func (h *DiscoveryHandler) ReportFind(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		UserID  string `json:"user_id"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	if err := h.discoveries.ReportFindDiscovery(r.Context(), targetID, req.Message); err != nil {
		if errors.Is(err, domain.ErrEmptyDiscovery) {
			response.BadRequest(w, "message is required")
			return
		}
		h.logger.Error("failed to report discovery", zap.Error(err))
		response.InternalError(w, "failed to report discovery")
		return
	}

	response.OK(w, map[string]string{"status": "accepted"})
}

// RecordParkUpdate handles POST /parks/updates
func (h *DiscoveryHandler) RecordParkUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		ParkName string `json:"park_name"`
		UserID   string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	watcherID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}
	if strings.TrimSpace(req.ParkName) == "" {
		response.BadRequest(w, "park name is required")
		return
	}

	update, err := h.discoveries.RecordParkUpdate(r.Context(), req.ParkName, watcherID)
	if err != nil {
		h.logger.Error("failed to record park update", zap.Error(err))
		response.InternalError(w, "failed to record park update")
		return
	}

	response.Created(w, update)
}
