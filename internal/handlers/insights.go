package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chat-insights/internal/filter"
	"chat-insights/internal/models"
	"chat-insights/internal/telemetry"
)

type insightsService interface {
	FilterOptions() (models.FilterOptions, error)
	Query(ctx context.Context, params filter.Params) (models.AggregateResult, error)
	Reload(ctx context.Context) error
	SnapshotInfo() (models.SnapshotInfo, error)
}

// InsightsHandler serves the read API of the dashboard.
type InsightsHandler struct {
	service insightsService
	audit   *telemetry.AuditEmitter
}

// NewInsightsHandler constructs an InsightsHandler.
func NewInsightsHandler(service insightsService, audit *telemetry.AuditEmitter) *InsightsHandler {
	return &InsightsHandler{service: service, audit: audit}
}

// Register mounts the API routes on group.
func (h *InsightsHandler) Register(group gin.IRoutes) {
	group.GET("/filters", h.GetFilters)
	group.GET("/insights", h.GetInsights)
	group.GET("/snapshot", h.GetSnapshot)
	group.POST("/snapshot/reload", h.Reload)
}

// GetFilters handles GET /api/filters.
func (h *InsightsHandler) GetFilters(c *gin.Context) {
	opts, err := h.service.FilterOptions()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, opts)
}

// GetInsights handles GET /api/insights?start=&end=&group=&booth=.
// Dates are YYYY-MM-DD and inclusive. A range whose end precedes its start is
// rejected with 400 here, although the filter itself would just match nothing.
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	params, err := parseParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Query(c.Request.Context(), params)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSnapshot handles GET /api/snapshot.
func (h *InsightsHandler) GetSnapshot(c *gin.Context) {
	info, err := h.service.SnapshotInfo()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// Reload handles POST /api/snapshot/reload.
func (h *InsightsHandler) Reload(c *gin.Context) {
	requestID := requestIDFromContext(c)
	h.emitAudit(c, "INFO", "snapshot reload requested")

	ctx := telemetry.WithRequestID(c.Request.Context(), requestID)
	if err := h.service.Reload(ctx); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	info, err := h.service.SnapshotInfo()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *InsightsHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), actorFromContext(c), nil)
}

func parseParams(c *gin.Context) (filter.Params, error) {
	start, err := parseDate(c.Query("start"))
	if err != nil {
		return filter.Params{}, errors.New("invalid start date, want YYYY-MM-DD")
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		return filter.Params{}, errors.New("invalid end date, want YYYY-MM-DD")
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return filter.Params{}, errors.New("end date before start date")
	}

	return filter.Params{
		Dates:         filter.DateRange{Start: start, End: end},
		Group:         c.Query("group"),
		SubIdentifier: c.Query("booth"),
	}, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(models.DateLayout, value)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrSnapshotNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrSchema):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrSourceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
