package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/middleware"
	"github.com/parkfind/backend/internal/ws"
	"github.com/parkfind/backend/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades authenticated clients onto the live notification feed.
type WSHandler struct {
	manager *ws.Manager
	logger  *zap.Logger
}

func NewWSHandler(manager *ws.Manager, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		manager: manager,
		logger:  logger,
	}
}

// Connect handles GET /ws
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &ws.Client{
		Conn:   conn,
		Send:   make(chan []byte, 16),
		UserID: userID,
	}
	h.manager.Register(client)

	go client.WritePump()
	go client.ReadPump(h.manager)
}
