package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chat-insights/internal/models"
	"chat-insights/internal/observability"
)

const (
	wsKind       = "insights"
	wsRoutingKey = "ws_events.insights"
	writeTimeout = 5 * time.Second
)

// Event is pushed to dashboards when the served snapshot changes or a reload fails.
type Event struct {
	Type     string               `json:"type"`
	Snapshot *models.SnapshotInfo `json:"snapshot,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// Hub tracks connected dashboards.
type Hub struct {
	clients map[*websocket.Conn]ConnInfo
	mu      sync.RWMutex
	writeMu sync.Mutex
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]ConnInfo),
		logger:  logger.Named("ws"),
	}
}

// AddClient registers a dashboard connection.
func (h *Hub) AddClient(conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = info
}

// RemoveClient removes a dashboard connection.
func (h *Hub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// Len returns the number of connected dashboards.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SnapshotLoaded tells every dashboard to refetch.
func (h *Hub) SnapshotLoaded(ctx context.Context, info models.SnapshotInfo) {
	h.Broadcast(ctx, Event{Type: "snapshot_loaded", Snapshot: &info})
}

// SnapshotFailed tells dashboards that the data they show may be stale.
func (h *Hub) SnapshotFailed(ctx context.Context, err error) {
	h.Broadcast(ctx, Event{Type: "snapshot_failed", Error: err.Error()})
}

// Broadcast sends event to all dashboards, dropping connections that fail.
func (h *Hub) Broadcast(ctx context.Context, event Event) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("websocket write error", zap.Error(err))
			h.publishWSError(ctx, conn, err)
			conn.Close()
			h.RemoveClient(conn)
		}
	}
	observability.IncWSEvent(wsKind, event.Type)
}

func (h *Hub) publishWSError(ctx context.Context, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(conn)
	if !ok {
		return
	}

	publishWSEvent(ctx, info, "ws_error", err.Error())
	observability.IncWSEvent(wsKind, "ws_error")
}

func (h *Hub) getConnInfo(conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	info, ok := h.clients[conn]
	return info, ok
}

func publishWSEvent(ctx context.Context, info ConnInfo, event, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        wsKind,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"ip": info.IP,
		},
	}
	_ = observability.PublishEvent(ctx, wsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
