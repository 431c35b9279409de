package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPublisher struct {
	err   error
	calls int
}

func (p *stubPublisher) Publish(context.Context, string, any, map[string]string) error {
	p.calls++
	return p.err
}

func TestPublishEventCountsErrors(t *testing.T) {
	t.Cleanup(func() { SetPublisher(nil) })

	require.NoError(t, PublishEvent(context.Background(), "ws_events.insights", EventEnvelope{}, nil))

	pub := &stubPublisher{err: errors.New("closed")}
	SetPublisher(pub)
	before := testutil.ToFloat64(amqpPublishErrorsTotal)
	require.Error(t, PublishEvent(context.Background(), "ws_events.insights", EventEnvelope{}, nil))
	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, before+1, testutil.ToFloat64(amqpPublishErrorsTotal))
}

func TestBuildHeaders(t *testing.T) {
	assert.Empty(t, BuildHeaders("", ""))
	assert.Equal(t, map[string]string{"x-request-id": "r1", "trace_id": "t1"}, BuildHeaders("r1", "t1"))
}

func TestIPFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", IPFromRequest(r))

	r.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	assert.Equal(t, "1.2.3.4", IPFromRequest(r))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTPMetricsMiddleware())
	r.GET("/api/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/ping", "204"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/ping", "204")))
}

func TestSnapshotMetrics(t *testing.T) {
	before := testutil.ToFloat64(snapshotLoadsTotal.WithLabelValues("ok"))
	ObserveSnapshotLoad("ok", 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(snapshotLoadsTotal.WithLabelValues("ok")))

	SetSnapshotRows(map[string]int{"groups": 4})
	assert.Equal(t, 4.0, testutil.ToFloat64(snapshotRows.WithLabelValues("groups")))

	AddMalformedRows("chats", "chat_name", "error marker", 3)
	assert.GreaterOrEqual(t, testutil.ToFloat64(malformedRowsTotal.WithLabelValues("chats", "chat_name", "error marker")), 3.0)
}

func TestSetupTracingWithoutExporter(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "", "chat-insights", "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	ctx, span := Tracer("test").Start(context.Background(), "op")
	defer span.End()
	assert.NotEmpty(t, TraceID(ctx))
	assert.Empty(t, TraceID(context.Background()))
}
