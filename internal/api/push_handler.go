package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/config"
	"github.com/parkfind/backend/internal/domain"
	"github.com/parkfind/backend/internal/middleware"
	"github.com/parkfind/backend/pkg/response"
)

// PushHandler owns the subscription/token registry endpoints.
type PushHandler struct {
	registry domain.PushRegistry
	vapid    config.VAPIDConfig
	logger   *zap.Logger
}

func NewPushHandler(registry domain.PushRegistry, vapid config.VAPIDConfig, logger *zap.Logger) *PushHandler {
	return &PushHandler{
		registry: registry,
		vapid:    vapid,
		logger:   logger,
	}
}

// Subscribe handles POST /push/subscriptions. The body mirrors the browser's
// PushSubscription.toJSON() shape.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		response.BadRequest(w, "endpoint and keys are required")
		return
	}

	sub, err := h.registry.UpsertPushSubscription(r.Context(), userID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		h.logger.Error("failed to save push subscription", zap.Error(err))
		response.InternalError(w, "failed to save subscription")
		return
	}

	response.Created(w, sub)
}

// Unsubscribe handles DELETE /push/subscriptions
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Endpoint == "" {
		response.BadRequest(w, "endpoint is required")
		return
	}

	if err := h.registry.DeletePushSubscription(r.Context(), userID, req.Endpoint); err != nil {
		h.logger.Error("failed to delete push subscription", zap.Error(err))
		response.InternalError(w, "failed to delete subscription")
		return
	}

	response.NoContent(w)
}

// VAPIDKey handles GET /push/vapid-key. Browsers need the public key to
// create a subscription.
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	if !h.vapid.Configured() {
		response.NotFound(w, "web push is not configured")
		return
	}
	response.OK(w, map[string]string{"public_key": h.vapid.PublicKey})
}

// RegisterToken handles POST /push/tokens
func (h *PushHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
		AppName  string `json:"appName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}
	if req.Token == "" {
		response.BadRequest(w, "token is required")
		return
	}

	token, err := h.registry.UpsertDeviceToken(r.Context(), userID, req.Token, req.Platform, req.AppName)
	if err != nil {
		h.logger.Error("failed to save device token", zap.Error(err))
		response.InternalError(w, "failed to save token")
		return
	}

	response.Created(w, token)
}
