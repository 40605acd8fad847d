package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/auth"
	"github.com/parkfind/backend/internal/domain"
	"github.com/parkfind/backend/pkg/response"
)

// AuthHandler issues tokens for the minimal identity surface. Full account
// management lives outside this service; the notification endpoints only need
// a resolvable user id.
type AuthHandler struct {
	users      domain.UserRepository
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

func NewAuthHandler(users domain.UserRepository, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:      users,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

type authResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Nickname = strings.TrimSpace(req.Nickname)
	if req.Email == "" || req.Nickname == "" {
		response.BadRequest(w, "email and nickname are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.users.CreateUser(r.Context(), domain.CreateUserParams{
		Email:        req.Email,
		PasswordHash: hash,
		Nickname:     req.Nickname,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			response.Conflict(w, "email already registered")
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		response.InternalError(w, "failed to register")
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		h.logger.Error("failed to sign token", zap.Error(err))
		response.InternalError(w, "failed to register")
		return
	}

	response.Created(w, authResponse{User: user, AccessToken: token})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	user, hash, err := h.users.GetUserWithPassword(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		response.Unauthorized(w, "invalid email or password")
		return
	}
	if err := auth.VerifyPassword(req.Password, hash); err != nil {
		response.Unauthorized(w, "invalid email or password")
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		h.logger.Error("failed to sign token", zap.Error(err))
		response.InternalError(w, "failed to log in")
		return
	}

	response.OK(w, authResponse{User: user, AccessToken: token})
}
