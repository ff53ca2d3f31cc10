// Package telemetry emits audit records for security-relevant account and
// thread actions.
package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"chat-api/internal/observability"
	"chat-api/internal/tracing"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error
	Close() error
}

const (
	LevelInfo = "INFO"
	LevelWarn = "WARN"
)

// Audited actions.
const (
	ActionRegister     = "user.register"
	ActionLogin        = "user.login"
	ActionLogout       = "user.logout"
	ActionThreadDelete = "thread.delete"
)

const auditSchemaVersion = 1

type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
	logger      *zap.Logger
	now         func() time.Time
}

type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	UserID        *string      `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

// EventKind names the envelope for transports that log what they carry.
func (e AuditEnvelope) EventKind() string {
	return e.EventType + ":" + e.Payload.Action
}

type AuditPayload struct {
	Level  string `json:"level"`
	Action string `json:"action"`
	Text   string `json:"text"`
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
		now:         time.Now,
	}
}

// Emit publishes one audit record. The request id and trace id are taken
// from ctx; userID 0 means the actor is unknown. Delivery failures are logged
// and dropped.
func (e *AuditEmitter) Emit(ctx context.Context, level, action, text string, userID int64) {
	if e == nil || e.publisher == nil {
		return
	}

	requestID := observability.RequestIDFromContext(ctx)
	envelope := AuditEnvelope{
		SchemaVersion: auditSchemaVersion,
		EventType:     "audit_log",
		OccurredAt:    e.now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        actor(userID),
		Payload:       AuditPayload{Level: level, Action: action, Text: text},
	}

	headers := observability.BuildHeaders(requestID, tracing.TraceID(ctx))
	if err := e.publisher.Publish(ctx, e.routingKey, envelope, headers); err != nil {
		observability.IncAMQPPublishError()
		e.logger.Warn("audit publish failed", zap.String("action", action), zap.String("request_id", requestID), zap.Error(err))
	}
}

func actor(userID int64) *string {
	if userID == 0 {
		return nil
	}
	id := strconv.FormatInt(userID, 10)
	return &id
}
