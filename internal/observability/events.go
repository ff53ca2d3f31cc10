package observability

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chat-api/internal/tracing"
)

// Domain event names.
const (
	EventThreadCreated  = "thread.created"
	EventThreadDeleted  = "thread.deleted"
	EventMessagePosted  = "message.posted"
	EventMessageDeleted = "message.deleted"
)

// Publisher is the transport events are handed to.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error
}

type EventEnvelope struct {
	EventType  string `json:"event_type"`
	EventName  string `json:"event_name"`
	OccurredAt string `json:"occurred_at"`
	Payload    any    `json:"payload"`
}

func (e EventEnvelope) EventKind() string {
	return e.EventType + ":" + e.EventName
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}

// EventPublisher publishes domain events. Failures are counted and logged and
// never returned: an event that cannot be delivered does not fail the request.
type EventPublisher struct {
	publisher Publisher
	logger    *zap.Logger
}

func NewEventPublisher(publisher Publisher, logger *zap.Logger) *EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventPublisher{publisher: publisher, logger: logger}
}

// Publish sends the event with the event name as routing key.
func (p *EventPublisher) Publish(ctx context.Context, eventName string, payload any) {
	if p == nil || p.publisher == nil {
		return
	}

	envelope := EventEnvelope{
		EventType:  "domain_event",
		EventName:  eventName,
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:    payload,
	}
	headers := BuildHeaders(RequestIDFromContext(ctx), tracing.TraceID(ctx))
	if err := p.publisher.Publish(ctx, eventName, envelope, headers); err != nil {
		IncAMQPPublishError()
		p.logger.Warn("event publish failed", zap.String("event", eventName), zap.Error(err))
	}
}
