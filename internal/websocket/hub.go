package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"invoicer/internal/auth"
	"invoicer/internal/events"
	"invoicer/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 256
)

// ErrHubStopped is returned by Publish once Run has returned.
var ErrHubStopped = errors.New("websocket hub stopped")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS allow-list on the HTTP routes.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one WebSocket connection of an authenticated owner.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

type message struct {
	userID  string
	payload []byte
}

// Hub keeps one room of clients per owner and forwards each owner's invoice
// events to that room only.
type Hub struct {
	rooms      map[string]map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub initializes a new WS Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run dispatches registrations and events until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	log := logger.WithComponent(logger.ComponentWebsocket)
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for userID, room := range h.rooms {
				for client := range room {
					close(client.Send)
				}
				delete(h.rooms, userID)
			}
			h.mu.Unlock()
			log.Info().Msg("websocket hub stopped")
			return nil
		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.UserID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[client.UserID] = room
			}
			room[client] = true
			h.mu.Unlock()
			log.Debug().Str("user_id", client.UserID).Msg("client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			log.Debug().Str("user_id", client.UserID).Msg("client disconnected")
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.rooms[msg.userID] {
				select {
				case client.Send <- msg.payload:
				default:
					log.Warn().Str("user_id", client.UserID).Msg("dropping slow client")
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	room, ok := h.rooms[client.UserID]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}
	delete(room, client)
	close(client.Send)
	if len(room) == 0 {
		delete(h.rooms, client.UserID)
	}
}

// Publish sends the event to the owner's connected clients.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	select {
	case h.broadcast <- message{userID: event.UserID, payload: payload}:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientCount returns the number of connections open for userID.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	defer func() {
		_ = c.Conn.Close()
	}()
	for payload := range c.Send {
		_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		w, err := c.Conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		_, _ = w.Write(payload)

		n := len(c.Send)
		for i := 0; i < n; i++ {
			_, _ = w.Write([]byte{'\n'})
			_, _ = w.Write(<-c.Send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump drains the connection until the peer goes away.
func (c *Client) readPump() {
	log := logger.WithComponent(logger.ComponentWebsocket)
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		_ = c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("user_id", c.UserID).Msg("unexpected close")
			}
			return
		}
	}
}

// ServeWs upgrades an authenticated request. Browsers cannot set headers on
// WebSocket requests, so the token travels as ?token=.
func ServeWs(hub *Hub, c *gin.Context, authenticator auth.Authenticator) {
	log := logger.WithComponent(logger.ComponentWebsocket)

	tokenString := c.Query("token")
	if tokenString == "" {
		log.Debug().Msg("connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	identity, err := authenticator.Authenticate(c.Request.Context(), tokenString)
	if err != nil {
		log.Debug().Err(err).Msg("connection rejected: invalid token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("upgrade failed")
		return
	}
	client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, sendBufferSize), UserID: identity.UserID}

	select {
	case hub.register <- client:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
