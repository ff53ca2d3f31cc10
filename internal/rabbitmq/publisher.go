// Package rabbitmq delivers domain events and audit records to a topic
// exchange. Without a reachable broker it degrades to a logging noop so the
// API keeps serving.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("rabbitmq: publisher closed")

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error
	Close() error
}

// kinded is implemented by envelopes that can name themselves in logs.
type kinded interface {
	EventKind() string
}

// NewPublisher dials the broker and declares a durable topic exchange. Any
// failure along the way yields a noop publisher carrying the reason.
func NewPublisher(amqpURL, exchange string, logger *zap.Logger) Publisher {
	logger = logger.Named("rabbitmq")
	if amqpURL == "" {
		return newNoop("empty amqp url", logger)
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return newNoop(err.Error(), logger)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return newNoop(err.Error(), logger)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return newNoop(err.Error(), logger)
	}

	logger.Info("rabbitmq connected", zap.String("exchange", exchange))
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange, logger: logger, now: time.Now}
}

type amqpPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	closed   bool
	logger   *zap.Logger
	now      func() time.Time
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now(),
		Headers:      toTable(headers),
		Body:         body,
	}
	if id, ok := headers["x-request-id"]; ok {
		msg.CorrelationId = id
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		p.logger.Warn("rabbitmq publish failed",
			zap.String("routing_key", routingKey),
			zap.String("kind", kindOf(event)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	chErr := p.ch.Close()
	return errors.Join(chErr, p.conn.Close())
}

func toTable(headers map[string]string) amqp.Table {
	if len(headers) == 0 {
		return nil
	}
	table := make(amqp.Table, len(headers))
	for key, value := range headers {
		table[key] = value
	}
	return table
}

func kindOf(event any) string {
	if k, ok := event.(kinded); ok {
		return k.EventKind()
	}
	return ""
}

type noopPublisher struct {
	reason string
	logger *zap.Logger
}

func newNoop(reason string, logger *zap.Logger) *noopPublisher {
	logger.Warn("rabbitmq disabled, using noop", zap.String("reason", reason))
	return &noopPublisher{reason: reason, logger: logger}
}

func (p *noopPublisher) Publish(_ context.Context, routingKey string, event any, headers map[string]string) error {
	p.logger.Debug("rabbitmq noop publish",
		zap.String("routing_key", routingKey),
		zap.String("kind", kindOf(event)),
		zap.String("request_id", headers["x-request-id"]),
	)
	return nil
}

func (*noopPublisher) Close() error {
	return nil
}

// Describe reports the publisher mode ("amqp" or "noop") and, for noop, why
// the broker was not used.
func Describe(p Publisher) (mode, reason string) {
	switch pub := p.(type) {
	case *amqpPublisher:
		return "amqp", ""
	case *noopPublisher:
		return "noop", pub.reason
	default:
		return "unknown", ""
	}
}
