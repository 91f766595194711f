// Package websocket serves request/response chat sessions over WebSockets.
// Each session reads one question at a time and writes back one answer; the
// hub tracks open sessions so the server can close them on shutdown.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	maxMessageBytes = 4096
	readTimeout     = 2 * time.Minute
	writeTimeout    = 10 * time.Second
)

// Question is an inbound chat frame.
type Question struct {
	Message string `json:"message"`
}

// Answer is an outbound chat frame.
type Answer struct {
	Response string `json:"response"`
}

// Responder produces the answer to one question.
type Responder func(ctx context.Context, message string) string

// SessionObserver is notified when sessions open and close.
type SessionObserver interface {
	ChatOpened()
	ChatClosed()
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one open chat session.
type Client struct {
	ID   string
	conn Conn
}

// Hub tracks open sessions. All operations are safe for concurrent use.
type Hub struct {
	mu       sync.RWMutex
	all      map[*Client]struct{}
	observer SessionObserver
}

// NewHub creates a Hub. obs may be nil.
func NewHub(obs SessionObserver) *Hub {
	return &Hub{
		all:      make(map[*Client]struct{}),
		observer: obs,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; ok {
		return
	}
	h.all[client] = struct{}{}
	if h.observer != nil {
		h.observer.ChatOpened()
	}
}

// Unregister removes a client and closes its connection.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}
	delete(h.all, client)
	if client.conn != nil {
		client.conn.Close()
	}
	if h.observer != nil {
		h.observer.ChatClosed()
	}
}

// ClientCount returns the number of open sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// CloseAll closes every open connection. Their serve loops then unregister.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.all {
		if client.conn != nil {
			client.conn.Close()
		}
	}
}

// Serve answers questions on client until the peer goes away or ctx ends.
// Malformed frames are ignored. The loop runs on the caller's goroutine.
func (h *Hub) Serve(ctx context.Context, client *Client, respond Responder, logger zerolog.Logger) {
	h.Register(client)
	defer h.Unregister(client)

	for {
		if ctx.Err() != nil {
			return
		}
		msgType, data, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != gorillawebsocket.TextMessage {
			continue
		}

		var q Question
		if err := json.Unmarshal(data, &q); err != nil {
			logger.Debug().Str("client_id", client.ID).Msg("ignoring malformed chat frame")
			continue
		}

		out, err := json.Marshal(Answer{Response: respond(ctx, q.Message)})
		if err != nil {
			return
		}
		if err := client.conn.WriteMessage(gorillawebsocket.TextMessage, out); err != nil {
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Handler: Echo endpoint for chat sessions
// ---------------------------------------------------------------------------

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin header and those whose origin
// host matches the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// Handler upgrades HTTP requests into chat sessions.
type Handler struct {
	hub     *Hub
	respond Responder
	logger  zerolog.Logger
}

// NewHandler creates a handler answering with respond.
func NewHandler(hub *Hub, respond Responder, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, respond: respond, logger: logger}
}

// HandleConnect upgrades the connection and serves it until it closes.
func (wsh *Handler) HandleConnect(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return nil
	}
	ws.SetReadLimit(maxMessageBytes)

	client := &Client{
		ID:   uuid.New().String(),
		conn: &gorillaConnAdapter{conn: ws},
	}
	wsh.logger.Debug().Str("client_id", client.ID).Msg("chat session opened")
	wsh.hub.Serve(c.Request().Context(), client, wsh.respond, wsh.logger)
	wsh.logger.Debug().Str("client_id", client.ID).Msg("chat session closed")
	return nil
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy the Conn
// interface and applies per-frame deadlines.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	a.conn.SetReadDeadline(time.Now().Add(readTimeout))
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	a.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
