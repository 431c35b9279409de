package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chat-insights/internal/filter"
	"chat-insights/internal/mocks"
	"chat-insights/internal/models"
	"chat-insights/internal/telemetry"
)

func setupInsightsRouter(handler *InsightsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r.Group("/api"))
	return r
}

func TestGetFiltersSuccess(t *testing.T) {
	svc := new(mocks.InsightsServiceMock)
	router := setupInsightsRouter(NewInsightsHandler(svc, nil))

	svc.On("FilterOptions").Return(models.FilterOptions{
		Dates:          models.DateBounds{Min: "2024-01-01", Max: "2024-01-31", Valid: true},
		GroupNames:     []string{filter.AllGroups, "Alpha"},
		SubIdentifiers: []string{"2", "10", filter.AllBooths},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/filters", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.FilterOptions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, []string{"2", "10", filter.AllBooths}, got.SubIdentifiers)
	svc.AssertExpectations(t)
}

func TestGetFiltersBeforeFirstLoad(t *testing.T) {
	svc := new(mocks.InsightsServiceMock)
	router := setupInsightsRouter(NewInsightsHandler(svc, nil))

	svc.On("FilterOptions").Return(nil, models.ErrSnapshotNotLoaded).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/filters", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetInsightsPassesFilter(t *testing.T) {
	svc := new(mocks.InsightsServiceMock)
	router := setupInsightsRouter(NewInsightsHandler(svc, nil))

	matches := mock.MatchedBy(func(p filter.Params) bool {
		return p.Dates.Start.Format(models.DateLayout) == "2024-01-05" &&
			p.Dates.End.Format(models.DateLayout) == "2024-01-07" &&
			p.Group == "Alpha" && p.SubIdentifier == "12"
	})
	svc.On("Query", mock.Anything, matches).Return(models.AggregateResult{
		Overview: models.Overview{GroupCount: 1, ActiveGroupRatio: 1},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/insights?start=2024-01-05&end=2024-01-07&group=Alpha&booth=12", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.AggregateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 1, got.Overview.GroupCount)
	svc.AssertExpectations(t)
}

func TestGetInsightsUnboundedWithoutDates(t *testing.T) {
	svc := new(mocks.InsightsServiceMock)
	router := setupInsightsRouter(NewInsightsHandler(svc, nil))

	svc.On("Query", mock.Anything, mock.MatchedBy(func(p filter.Params) bool {
		return p.Dates.Unbounded() && p.Group == "" && p.SubIdentifier == ""
	})).Return(models.AggregateResult{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/insights", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetInsightsInvalidDates(t *testing.T) {
	cases := []string{
		"/api/insights?start=05/01/2024",
		"/api/insights?end=yesterday",
		"/api/insights?start=2024-02-01&end=2024-01-01",
	}
	for _, url := range cases {
		t.Run(url, func(t *testing.T) {
			svc := new(mocks.InsightsServiceMock)
			router := setupInsightsRouter(NewInsightsHandler(svc, nil))

			req := httptest.NewRequest(http.MethodGet, url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
		})
	}
}

func TestReloadSuccessEmitsAudit(t *testing.T) {
	svc := new(mocks.InsightsServiceMock)
	pub := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(pub, "audit.chat-insights", "chat-insights", "test", zap.NewNop())
	router := setupInsightsRouter(NewInsightsHandler(svc, emitter))

	pub.On("Publish", mock.Anything, "audit.chat-insights", mock.MatchedBy(func(e telemetry.AuditEnvelope) bool {
		return e.RequestID == "req-1" && e.Actor != nil && *e.Actor == "ops"
	}), mock.Anything).Return(nil).Once()
	svc.On("Reload", mock.MatchedBy(func(ctx context.Context) bool {
		return telemetry.RequestIDFromContext(ctx) == "req-1"
	})).Return(nil).Once()
	svc.On("SnapshotInfo").Return(models.SnapshotInfo{Version: "csv:abc"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/snapshot/reload", nil)
	req.Header.Set("X-Request-ID", "req-1")
	req.Header.Set("X-Actor", "ops")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.SnapshotInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "csv:abc", got.Version)
	svc.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestReloadErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&models.SchemaError{Table: "chats", Missing: []string{"chat_id"}}, http.StatusUnprocessableEntity},
		{fmt.Errorf("fetch: %w", models.ErrSourceUnavailable), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			svc := new(mocks.InsightsServiceMock)
			router := setupInsightsRouter(NewInsightsHandler(svc, nil))
			svc.On("Reload", mock.Anything).Return(tc.err).Once()

			req := httptest.NewRequest(http.MethodPost, "/api/snapshot/reload", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tc.want, rec.Code)
			svc.AssertNotCalled(t, "SnapshotInfo")
		})
	}
}

func TestGetSnapshot(t *testing.T) {
	svc := new(mocks.InsightsServiceMock)
	router := setupInsightsRouter(NewInsightsHandler(svc, nil))

	svc.On("SnapshotInfo").Return(models.SnapshotInfo{
		Version: "pg:batch:3",
		Rows:    map[string]int{"chats": 2},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "pg:batch:3")
}

func TestDebugAuditRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pub := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(pub, "audit.chat-insights", "chat-insights", "test", zap.NewNop())
	pub.On("Publish", mock.Anything, "audit.chat-insights", mock.Anything, mock.Anything).Return(nil).Once()

	r := gin.New()
	RegisterDebugRoutes(r, emitter, true)

	req := httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	pub.AssertExpectations(t)

	disabled := gin.New()
	RegisterDebugRoutes(disabled, emitter, false)
	rec = httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
