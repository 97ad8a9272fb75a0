package socket

import (
	"sync"

	"github.com/carousell/ct-go/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/homeinv/barcode-router/internal/models"
	"github.com/homeinv/barcode-router/internal/usecase"
)

// Ensure the hub satisfies the dispatcher's notifier contract.
var _ usecase.Notifier = (*Hub)(nil)

type batchUpdatedEvent struct {
	Type  string               `json:"type"`
	Batch models.BatchSnapshot `json:"batch"`
}

// Hub fans batch-updated events out to connected websocket observers.
type Hub struct {
	log *logger.Logger

	mu sync.Mutex
	// One write lock per connection: gorilla/websocket permits a single
	// writer at a time, and broadcasts race the initial snapshot push.
	conns map[*websocket.Conn]*sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		log:   logger.MustNamed("socket"),
		conns: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Register adds a connection and holds it until the peer goes away.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = &sync.Mutex{}
	h.mu.Unlock()

	go h.readLoop(conn)
}

// readLoop drains (and discards) inbound frames so pings and close frames
// are handled, removing the connection once reading fails.
func (h *Hub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) writeEvent(conn *websocket.Conn, wmu *sync.Mutex, event batchUpdatedEvent) error {
	wmu.Lock()
	defer wmu.Unlock()
	return conn.WriteJSON(event)
}

// SendSnapshot pushes the snapshot to a single observer, used to bring a new
// connection in sync.
func (h *Hub) SendSnapshot(conn *websocket.Conn, snapshot models.BatchSnapshot) error {
	h.mu.Lock()
	wmu, ok := h.conns[conn]
	h.mu.Unlock()
	if !ok {
		// Peer disconnected before the initial sync.
		return nil
	}
	return h.writeEvent(conn, wmu, batchUpdatedEvent{
		Type:  "batch_updated",
		Batch: snapshot,
	})
}

// NotifyBatchUpdated broadcasts the snapshot to every observer. A failed
// write drops that observer but never fails the triggering operation.
func (h *Hub) NotifyBatchUpdated(snapshot models.BatchSnapshot) {
	event := batchUpdatedEvent{
		Type:  "batch_updated",
		Batch: snapshot,
	}

	type target struct {
		conn *websocket.Conn
		wmu  *sync.Mutex
	}
	h.mu.Lock()
	targets := make([]target, 0, len(h.conns))
	for conn, wmu := range h.conns {
		targets = append(targets, target{conn: conn, wmu: wmu})
	}
	h.mu.Unlock()

	for _, t := range targets {
		if err := h.writeEvent(t.conn, t.wmu, event); err != nil {
			h.log.Warnw("Dropping observer after failed write", "error", err)
			h.remove(t.conn)
		}
	}
}

// Count reports the number of connected observers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
