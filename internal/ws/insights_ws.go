package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-insights/internal/middleware"
	"chat-insights/internal/observability"
)

// InsightsWebSocketHandler accepts dashboard connections.
type InsightsWebSocketHandler struct {
	hub   *Hub
	token string
}

// NewInsightsWebSocketHandler constructs an InsightsWebSocketHandler. An empty
// token disables authentication.
func NewInsightsWebSocketHandler(hub *Hub, token string) *InsightsWebSocketHandler {
	return &InsightsWebSocketHandler{hub: hub, token: token}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the dashboard.
func (h *InsightsWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := observability.Tracer("ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.Query("token")
	if token == "" {
		token = middleware.BearerToken(c.GetHeader("Authorization"))
	}
	if !middleware.TokenMatches(h.token, token) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := ConnInfo{
		ConnID:      uuid.NewString(),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(conn, info)
	ctx = context.WithoutCancel(ctx)

	observability.IncWSActive(wsKind)
	observability.IncWSEvent(wsKind, "ws_connect")
	publishWSEvent(ctx, info, "ws_connect", "")

	// Dashboards only listen; reads detect the close.
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(conn)
			observability.DecWSActive(wsKind)
			observability.IncWSEvent(wsKind, "ws_disconnect")
			publishWSEvent(ctx, info, "ws_disconnect", closeReason)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent(wsKind, "ws_error")
					publishWSEvent(ctx, info, "ws_error", closeReason)
				}
				return
			}
		}
	}()
}
