package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chat-insights/internal/models"
)

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub(zap.NewNop())

	hub.AddClient(nil, ConnInfo{ConnID: "c1"})
	if hub.Len() != 1 {
		t.Fatalf("expected client to be registered")
	}

	hub.RemoveClient(nil)
	if hub.Len() != 0 {
		t.Fatalf("expected client to be removed")
	}
}

func dial(t *testing.T, srv *httptest.Server, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/insights" + query
	return websocket.DefaultDialer.Dial(url, nil)
}

func newServer(t *testing.T, hub *Hub, token string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/insights", NewInsightsWebSocketHandler(hub, token).Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Len() == n }, time.Second, 5*time.Millisecond)
}

func TestBroadcastReachesDashboards(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newServer(t, hub, "s3cret")

	conn, _, err := dial(t, srv, "?token=s3cret")
	require.NoError(t, err)
	defer conn.Close()
	waitForClients(t, hub, 1)

	hub.SnapshotLoaded(context.Background(), models.SnapshotInfo{Version: "v2"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	require.Equal(t, "snapshot_loaded", event.Type)
	require.Equal(t, "v2", event.Snapshot.Version)

	hub.SnapshotFailed(context.Background(), errors.New("schema error"))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &event))
	require.Equal(t, "snapshot_failed", event.Type)
	require.Equal(t, "schema error", event.Error)
}

func TestHandshakeRejectsBadToken(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newServer(t, hub, "s3cret")

	_, resp, err := dial(t, srv, "?token=wrong")
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 0, hub.Len())
}

func TestDisconnectRemovesClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	srv := newServer(t, hub, "")

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, hub, 0)
}
