// Package ws keeps per-user websocket connections so signed-in clients see
// new notifications without polling. It is wired as one more push channel;
// disconnected users simply miss the live copy and read the record store
// later.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/parkfind/backend/internal/push"
)

type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	UserID uuid.UUID
}

type Manager struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	// userID to active clients, for multi-device support
	userClients map[uuid.UUID]map[*Client]bool
	mu          sync.RWMutex
	logger      *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		userClients: make(map[uuid.UUID]map[*Client]bool),
		logger:      logger,
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = true
			if _, ok := m.userClients[client.UserID]; !ok {
				m.userClients[client.UserID] = make(map[*Client]bool)
			}
			m.userClients[client.UserID][client] = true
			m.mu.Unlock()
			m.logger.Debug("ws client registered", zap.String("user_id", client.UserID.String()))

		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				if userMap, ok := m.userClients[client.UserID]; ok {
					delete(userMap, client)
					if len(userMap) == 0 {
						delete(m.userClients, client.UserID)
					}
				}
				close(client.Send)
				m.logger.Debug("ws client unregistered", zap.String("user_id", client.UserID.String()))
			}
			m.mu.Unlock()
		}
	}
}

func (m *Manager) Register(c *Client)   { m.register <- c }
func (m *Manager) Unregister(c *Client) { m.unregister <- c }

// Name implements push.Channel.
func (m *Manager) Name() string { return "websocket" }

type wsNotification struct {
	Type    string            `json:"type"`
	Payload map[string]string `json:"payload"`
}

// Send implements push.Channel. It never fails: users without an open
// connection are skipped, slow clients drop the frame.
func (m *Manager) Send(ctx context.Context, d push.Delivery) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clients, ok := m.userClients[d.UserID]
	if !ok {
		return nil
	}

	payload := d.Data()
	payload["title"] = d.Title
	payload["body"] = d.Body

	msg, err := json.Marshal(wsNotification{
		Type:    "notification",
		Payload: payload,
	})
	if err != nil {
		m.logger.Error("failed to marshal ws notification", zap.Error(err))
		return nil
	}

	for client := range clients {
		select {
		case client.Send <- msg:
		default:
			// Buffer full: the client is dead or too slow, drop the frame.
		}
	}
	return nil
}

func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister(c)
		c.Conn.Close()
	}()

	for {
		// Server-to-client only; reads just detect the close.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
