package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat-insights/internal/models"
	"chat-insights/internal/observability"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error
	Close() error
}

type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
	logger      *zap.Logger
}

type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	Actor         *string      `json:"actor,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

type AuditPayload struct {
	Level   string         `json:"level"`
	Text    string         `json:"text"`
	Details map[string]any `json:"details,omitempty"`
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string, logger *zap.Logger) *AuditEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
		logger:      logger.Named("audit"),
	}
}

type requestIDKey struct{}

// WithRequestID attaches the id of the request that caused later audit events.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the attached request id, or a new one.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

func (e *AuditEmitter) Emit(ctx context.Context, level, text, requestID string, actor *string, details map[string]any) {
	if e == nil || e.publisher == nil {
		return
	}

	e.logger.Debug("audit emit", zap.String("level", level), zap.String("request_id", requestID), zap.String("text", text))
	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     "audit_log",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		Actor:         actor,
		Payload: AuditPayload{
			Level:   level,
			Text:    text,
			Details: details,
		},
	}

	headers := observability.BuildHeaders(requestID, observability.TraceID(ctx))
	if err := e.publisher.Publish(ctx, e.routingKey, envelope, headers); err != nil {
		e.logger.Warn("audit publish failed", zap.Error(err))
	}
}

// SnapshotLoaded records a successful snapshot swap.
func (e *AuditEmitter) SnapshotLoaded(ctx context.Context, info models.SnapshotInfo) {
	malformed := 0
	for _, m := range info.Malformed {
		malformed += m.Rows
	}
	e.Emit(ctx, "INFO", "snapshot loaded", RequestIDFromContext(ctx), nil, map[string]any{
		"version":        info.Version,
		"rows":           info.Rows,
		"malformed_rows": malformed,
	})
}

// SnapshotFailed records a failed load. Schema errors are reported as errors
// since they need a fix to the export; other failures as warnings.
func (e *AuditEmitter) SnapshotFailed(ctx context.Context, err error) {
	level := "WARN"
	if errors.Is(err, models.ErrSchema) {
		level = "ERROR"
	}
	e.Emit(ctx, level, "snapshot load failed", RequestIDFromContext(ctx), nil, map[string]any{
		"error": err.Error(),
	})
}
