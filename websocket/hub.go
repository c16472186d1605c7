package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/HSouheill/couplecanvas_backend/events"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	NotificationTypeConnected = "connected"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// ErrHubClosed is returned by Publish after the hub stopped
var ErrHubClosed = errors.New("websocket hub closed")

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Client is one connected admin session
type Client struct {
	UserID string
	Conn   *websocket.Conn
	send   chan Notification
}

// Hub keeps the connected admin sessions and broadcasts vendor lifecycle
// events to them. It implements events.Publisher.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Notification
	done       chan struct{}
	logger     *zap.Logger

	mu    sync.RWMutex
	count int
}

// NewHub creates a new Hub instance
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Notification, sendBuffer),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's event loop and returns when ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			h.drop(client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = true
			h.setCount(len(h.clients))
		case client := <-h.unregister:
			if h.clients[client] {
				h.drop(client)
			}
		case n := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- n:
				default:
					// slow consumer, disconnect it
					h.logger.Warn("dropping slow websocket client", zap.String("userId", client.UserID))
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setCount(len(h.clients))
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// Clients returns the number of connected sessions
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Broadcast queues a notification for every connected session
func (h *Hub) Broadcast(ctx context.Context, n Notification) error {
	select {
	case h.broadcast <- n:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish forwards a lifecycle event to the admin feed
func (h *Hub) Publish(ctx context.Context, e events.Event) error {
	return h.Broadcast(ctx, Notification{
		Type:    e.Type,
		Message: messageFor(e),
		Data:    e,
	})
}

func messageFor(e events.Event) string {
	switch e.Type {
	case events.VendorRegistered:
		return "New vendor registered"
	case events.SubscriptionSubmitted:
		return "Subscription submitted for review"
	case events.SubscriptionDecided:
		return "Subscription status changed to " + e.Status
	case events.ProfileDecided:
		return "Vendor profile status changed to " + e.Status
	case events.VendorDeleted:
		return "Vendor deleted"
	case events.WorkflowPartial:
		return "Workflow left partially applied"
	default:
		return e.Type
	}
}
