package telemetry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chat-insights/internal/mocks"
	"chat-insights/internal/models"
	"chat-insights/internal/telemetry"
)

func TestEmitBuildsEnvelope(t *testing.T) {
	pub := new(mocks.PublisherMock)
	var got telemetry.AuditEnvelope
	pub.On("Publish", mock.Anything, "audit.chat-insights", mock.Anything, map[string]string{"x-request-id": "req-1"}).
		Run(func(args mock.Arguments) { got = args.Get(2).(telemetry.AuditEnvelope) }).
		Return(nil).Once()

	emitter := telemetry.NewAuditEmitter(pub, "audit.chat-insights", "chat-insights", "test", zap.NewNop())
	emitter.Emit(context.Background(), "INFO", "audit test", "req-1", nil, nil)

	pub.AssertExpectations(t)
	assert.Equal(t, "audit_log", got.EventType)
	assert.Equal(t, "chat-insights", got.Service)
	assert.Equal(t, "test", got.Environment)
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "audit test", got.Payload.Text)
}

func TestEmitNilEmitterIsSafe(t *testing.T) {
	var emitter *telemetry.AuditEmitter
	emitter.Emit(context.Background(), "INFO", "x", "r", nil, nil)
}

func TestSnapshotLoaded(t *testing.T) {
	pub := new(mocks.PublisherMock)
	var got telemetry.AuditEnvelope
	pub.On("Publish", mock.Anything, "audit", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(2).(telemetry.AuditEnvelope) }).
		Return(nil).Once()

	emitter := telemetry.NewAuditEmitter(pub, "audit", "chat-insights", "test", nil)
	ctx := telemetry.WithRequestID(context.Background(), "reload-1")
	emitter.SnapshotLoaded(ctx, models.SnapshotInfo{
		Version:   "v9",
		Malformed: []models.MalformedRows{{Rows: 2}, {Rows: 3}},
	})

	assert.Equal(t, "reload-1", got.RequestID)
	assert.Equal(t, "INFO", got.Payload.Level)
	assert.Equal(t, "v9", got.Payload.Details["version"])
	assert.Equal(t, 5, got.Payload.Details["malformed_rows"])
}

func TestSnapshotFailedLevels(t *testing.T) {
	pub := new(mocks.PublisherMock)
	var levels []string
	pub.On("Publish", mock.Anything, "audit", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			levels = append(levels, args.Get(2).(telemetry.AuditEnvelope).Payload.Level)
		}).
		Return(errors.New("broker down"))

	emitter := telemetry.NewAuditEmitter(pub, "audit", "chat-insights", "test", zap.NewNop())
	emitter.SnapshotFailed(context.Background(), fmt.Errorf("normalize: %w", &models.SchemaError{Table: "chats", Missing: []string{"chat_id"}}))
	emitter.SnapshotFailed(context.Background(), models.ErrSourceUnavailable)

	require.Equal(t, []string{"ERROR", "WARN"}, levels)
}

func TestRequestIDFromContextGeneratesOne(t *testing.T) {
	assert.NotEmpty(t, telemetry.RequestIDFromContext(context.Background()))
	assert.Equal(t, "abc", telemetry.RequestIDFromContext(telemetry.WithRequestID(context.Background(), "abc")))
}
