package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gabrielmellace1/portfolioManager-sub000/internal/domain"
	"github.com/gabrielmellace1/portfolioManager-sub000/internal/infra"
)

// Conn is the hub's view of one live connection. The concrete websocket
// client implements it; tests use fakes.
type Conn interface {
	ID() string
	Send(b []byte)
	Close()
}

// Hub fans broadcasts out to live connections. Price-update batches go only
// to connections that joined the price-updates group; system messages go to
// everyone. There is no persistence or replay: a connection that arrives
// after a broadcast has simply missed it.
type Hub struct {
	mu         sync.RWMutex
	clients    map[Conn]bool
	priceGroup map[Conn]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[Conn]bool),
		priceGroup: make(map[Conn]bool),
	}
}

// Register tracks a new connection. It is not yet in the price-updates
// group; the client must subscribe explicitly.
func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c] {
		return
	}
	h.clients[c] = true
	infra.GlobalMetrics.IncrementConnections()
	slog.Debug("Client connected", slog.String("client", c.ID()))
}

// Unregister drops a connection and any group membership it had
func (h *Hub) Unregister(c Conn) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	delete(h.priceGroup, c)
	h.mu.Unlock()

	infra.GlobalMetrics.DecrementConnections()
	slog.Debug("Client disconnected", slog.String("client", c.ID()))
	c.Close()
}

// Subscribe joins a connection to the price-updates group. Idempotent.
func (h *Hub) Subscribe(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return
	}
	h.priceGroup[c] = true
}

// Unsubscribe leaves the price-updates group. Idempotent.
func (h *Hub) Unsubscribe(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.priceGroup, c)
}

// PublishPriceUpdates delivers one batch to the price-updates group.
// Empty batches are dropped. Delivery is fire-and-forget.
func (h *Hub) PublishPriceUpdates(updates []domain.PriceUpdate) {
	if len(updates) == 0 {
		return
	}

	msg, err := json.Marshal(priceUpdateMessage{
		Type:      TypePriceUpdate,
		Timestamp: time.Now(),
		Data:      updates,
	})
	if err != nil {
		slog.Error("Failed to encode price update batch", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.priceGroup {
		c.Send(msg)
	}
	infra.GlobalMetrics.RecordBroadcast(len(updates))
}

// BroadcastSystemMessage delivers a notice to every connected client
// regardless of group membership.
func (h *Hub) BroadcastSystemMessage(message string, severity domain.Severity) {
	msg, err := json.Marshal(systemMessage{
		Type:      string(severity),
		Message:   message,
		Timestamp: time.Now(),
	})
	if err != nil {
		slog.Error("Failed to encode system message", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		c.Send(msg)
	}
}

// ConnectedCount returns the number of tracked connections
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// SubscriberCount returns the size of the price-updates group
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.priceGroup)
}
