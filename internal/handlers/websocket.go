package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"pointplay-backend/internal/logger"
	"pointplay-backend/internal/models"
	"pointplay-backend/internal/services"
)

const (
	MessageStateUpdate = "STATE_UPDATE"
	MessagePing        = "PING"
	MessagePong        = "PONG"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

type Client struct {
	SessionID string
	Conn      *websocket.Conn
	send      chan *Message
}

// WebSocketHub fans session snapshots out to the connections of that session.
// It implements services.Broadcaster.
type WebSocketHub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	direct     chan directMessage
	closeAll   chan string
	done       chan struct{}
}

type directMessage struct {
	client  *Client
	message *Message
}

var _ services.Broadcaster = (*WebSocketHub)(nil)

func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		direct:     make(chan directMessage, 64),
		closeAll:   make(chan string, 16),
		done:       make(chan struct{}),
	}
}

func (hub *WebSocketHub) Run() {
	for {
		select {
		case client := <-hub.register:
			conns, ok := hub.clients[client.SessionID]
			if !ok {
				conns = make(map[*Client]struct{})
				hub.clients[client.SessionID] = conns
			}
			conns[client] = struct{}{}
			logger.Debug("ws client registered for session %s", client.SessionID)

		case client := <-hub.unregister:
			hub.remove(client)

		case message := <-hub.broadcast:
			for client := range hub.clients[message.SessionID] {
				select {
				case client.send <- message:
				default:
					logger.Warn("ws client for session %s is not draining, dropping it", client.SessionID)
					hub.remove(client)
				}
			}

		case dm := <-hub.direct:
			if _, ok := hub.clients[dm.client.SessionID][dm.client]; ok {
				select {
				case dm.client.send <- dm.message:
				default:
				}
			}

		case sessionID := <-hub.closeAll:
			for client := range hub.clients[sessionID] {
				hub.remove(client)
			}

		case <-hub.done:
			for _, conns := range hub.clients {
				for client := range conns {
					hub.remove(client)
				}
			}
			return
		}
	}
}

func (hub *WebSocketHub) remove(client *Client) {
	conns, ok := hub.clients[client.SessionID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(hub.clients, client.SessionID)
	}
	logger.Debug("ws client unregistered for session %s", client.SessionID)
}

func (hub *WebSocketHub) Stop() {
	close(hub.done)
}

func (hub *WebSocketHub) BroadcastState(snapshot models.SessionSnapshot) {
	msg := &Message{
		Type:      MessageStateUpdate,
		SessionID: snapshot.SessionID,
		Data:      snapshot,
	}

	select {
	case hub.broadcast <- msg:
	default:
		logger.Warn("ws broadcast queue full, dropping update for session %s", snapshot.SessionID)
	}
}

// sendTo delivers a message to one client. Sends go through the hub so a
// client's channel is never written after the hub closed it.
func (hub *WebSocketHub) sendTo(client *Client, msg *Message) {
	select {
	case hub.direct <- directMessage{client: client, message: msg}:
	case <-hub.done:
	}
}

func (hub *WebSocketHub) CloseSession(sessionID string) {
	select {
	case hub.closeAll <- sessionID:
	case <-hub.done:
	}
}

type WebSocketHandler struct {
	sessions *services.SessionManager
	hub      *WebSocketHub
}

func NewWebSocketHandler(sessions *services.SessionManager, hub *WebSocketHub) *WebSocketHandler {
	return &WebSocketHandler{
		sessions: sessions,
		hub:      hub,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	session, ok := currentSession(c, h.sessions)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("failed to upgrade to websocket: %v", err)
		return
	}

	client := &Client{
		SessionID: session.ID(),
		Conn:      conn,
		send:      make(chan *Message, clientSendSize),
	}
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	// initial render
	h.hub.sendTo(client, &Message{
		Type:      MessageStateUpdate,
		SessionID: session.ID(),
		Data:      session.Snapshot(),
	})

	go client.writePump()
	client.readPump(h.hub)
}

func (c *Client) readPump(hub *WebSocketHub) {
	defer func() {
		select {
		case hub.unregister <- c:
		case <-hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket error: %v", err)
			}
			return
		}

		if msg.Type == MessagePing {
			hub.sendTo(c, &Message{
				Type: MessagePong,
				Data: gin.H{"timestamp": time.Now().Unix()},
			})
		}
	}
}

// writePump is the only goroutine that writes to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
