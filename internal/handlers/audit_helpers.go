package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDContextKey = "request_id"
	actorHeader         = "X-Actor"
)

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

// actorFromContext returns the caller named in X-Actor. The API token is
// shared, so this is informational only.
func actorFromContext(c *gin.Context) *string {
	if actor := c.GetHeader(actorHeader); actor != "" {
		return &actor
	}
	return nil
}
