// internal/ws/hub.go
package ws

import (
	"context"
	"encoding/json"
	"sync"

	domain "compliancehub-service/internal/domain/identity"

	"go.uber.org/zap"
)

// Hub fans session events out to connected admin dashboards. It
// satisfies auth.SessionEventPublisher; a dropped event only means a
// stale admin view, never a failed sign-in.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client
	events     chan domain.SessionEvent

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan domain.SessionEvent, 256),
		logger:     logger,
	}
}

// Publish enqueues a session event for broadcast. Non-blocking: if the
// hub is saturated the event is dropped and logged.
func (h *Hub) Publish(event domain.SessionEvent) {
	select {
	case h.events <- event:
	default:
		h.logger.Warn("session event dropped, hub saturated",
			zap.String("type", event.Type),
			zap.String("user_id", event.UserID),
		)
	}
}

// Run drives registration and broadcast until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.events:
			h.broadcast(event)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("admin stream connected",
		zap.String("user_id", client.userID),
		zap.Int("total", total),
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.Close()
	}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("admin stream disconnected",
		zap.String("user_id", client.userID),
		zap.Int("total", total),
	)
}

func (h *Hub) broadcast(event domain.SessionEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal session event", zap.Error(err))
		return
	}

	// Slow consumers are dropped inline. Sending to unregister here
	// would deadlock the event loop, which is the sole receiver.
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if client.enqueue(data) {
			continue
		}
		delete(h.clients, client)
		client.Close()
		h.logger.Warn("admin stream dropped, consumer too slow",
			zap.String("user_id", client.userID),
		)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
