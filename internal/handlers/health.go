package handlers

import (
	"net/http"
	"os"
	"runtime"

	"github.com/gin-gonic/gin"
)

// PingResponse describes the running instance.
type PingResponse struct {
	Status          string `json:"status"`
	Service         string `json:"service"`
	Environment     string `json:"environment"`
	GoVersion       string `json:"go_version"`
	Hostname        string `json:"hostname"`
	AuditPublisher  string `json:"audit_publisher"`
	AuditNoopReason string `json:"audit_noop_reason,omitempty"`
}

// HealthHandler serves liveness and ping endpoints.
type HealthHandler struct {
	info PingResponse
}

// NewHealthHandler builds a HealthHandler. publisherMode and noopReason come
// from the audit publisher.
func NewHealthHandler(service, environment, publisherMode, noopReason string) *HealthHandler {
	return &HealthHandler{info: PingResponse{
		Status:          "ok",
		Service:         service,
		Environment:     environment,
		GoVersion:       runtime.Version(),
		AuditPublisher:  publisherMode,
		AuditNoopReason: noopReason,
	}}
}

// Register mounts /health and /ping.
func (h *HealthHandler) Register(router gin.IRoutes) {
	router.GET("/health", h.Health)
	router.GET("/ping", h.Ping)
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ping handles GET /ping.
func (h *HealthHandler) Ping(c *gin.Context) {
	hostname, err := os.Hostname()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get hostname"})
		return
	}
	resp := h.info
	resp.Hostname = hostname
	c.JSON(http.StatusOK, resp)
}
