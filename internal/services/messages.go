package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"chat-api/internal/apperrors"
	"chat-api/internal/auth"
	"chat-api/internal/models"
	"chat-api/internal/observability"
	"chat-api/internal/repositories"
)

// MessageLedger stores and queries messages inside threads.
type MessageLedger struct {
	messages repositories.MessageRepository
	threads  repositories.ThreadRepository
	events   *observability.EventPublisher
	logger   *zap.Logger
}

func NewMessageLedger(messages repositories.MessageRepository, threads repositories.ThreadRepository, events *observability.EventPublisher, logger *zap.Logger) *MessageLedger {
	return &MessageLedger{messages: messages, threads: threads, events: events, logger: logger}
}

type messageEvent struct {
	MessageID int64 `json:"message_id"`
	ThreadID  int64 `json:"thread_id"`
	SenderID  int64 `json:"sender_id"`
	ActorID   int64 `json:"actor_id"`
}

// PostMessage appends an unread message to the thread between sender and
// counterpart. The thread must already exist.
func (l *MessageLedger) PostMessage(ctx context.Context, sender, counterpart int64, text string) (models.Message, error) {
	ctx, span := tracer.Start(ctx, "messages.post")
	defer span.End()
	span.SetAttributes(attribute.Int64("chat.sender_id", sender), attribute.Int64("chat.counterpart_id", counterpart))

	if strings.TrimSpace(text) == "" {
		return models.Message{}, apperrors.InvalidField("text", "This field may not be blank.")
	}
	if sender == counterpart {
		return models.Message{}, repositories.ErrThreadNotFound
	}

	thread, err := l.threads.FindForPair(ctx, sender, counterpart)
	if err != nil {
		return models.Message{}, err
	}

	msg, err := l.messages.CreateMessage(ctx, thread.ID, sender, text)
	if err != nil {
		return models.Message{}, err
	}

	observability.IncMessageEvent("posted")
	l.logger.Info("message posted", zap.Int64("message_id", msg.ID), zap.Int64("thread_id", thread.ID))
	l.events.Publish(ctx, observability.EventMessagePosted, messageEvent{
		MessageID: msg.ID,
		ThreadID:  msg.ThreadID,
		SenderID:  msg.SenderID,
		ActorID:   sender,
	})
	return msg, nil
}

// ListMessages returns the thread's messages, newest first.
func (l *MessageLedger) ListMessages(ctx context.Context, threadID int64, page models.Page) ([]models.Message, int, error) {
	return l.messages.ListByThread(ctx, threadID, page)
}

// UpdateMessage changes the text or read flag of a message in one of the
// requester's threads.
func (l *MessageLedger) UpdateMessage(ctx context.Context, requester, messageID int64, update models.MessageUpdate) (models.Message, error) {
	if update.Text != nil && strings.TrimSpace(*update.Text) == "" {
		return models.Message{}, apperrors.InvalidField("text", "This field may not be blank.")
	}

	updated, err := l.messages.UpdateMessage(ctx, messageID, update, participantsOnly(requester))
	if err != nil {
		return models.Message{}, err
	}
	if !update.Empty() {
		observability.IncMessageEvent("updated")
	}
	return updated, nil
}

// DeleteMessage removes a message from one of the requester's threads.
func (l *MessageLedger) DeleteMessage(ctx context.Context, requester, messageID int64) error {
	msg, err := l.messages.DeleteMessage(ctx, messageID, participantsOnly(requester))
	if err != nil {
		return err
	}

	observability.IncMessageEvent("deleted")
	l.logger.Info("message deleted", zap.Int64("message_id", messageID), zap.Int64("requester", requester))
	l.events.Publish(ctx, observability.EventMessageDeleted, messageEvent{
		MessageID: msg.ID,
		ThreadID:  msg.ThreadID,
		SenderID:  msg.SenderID,
		ActorID:   requester,
	})
	return nil
}

// ListUnreadForUser returns unread messages from the user's counterparts,
// newest first.
func (l *MessageLedger) ListUnreadForUser(ctx context.Context, userID int64, page models.Page) ([]models.Message, int, error) {
	return l.messages.ListUnreadForUser(ctx, userID, page)
}

// participantsOnly approves changes to messages in threads the requester
// belongs to.
func participantsOnly(requester int64) func(models.Message, models.Thread) error {
	return func(_ models.Message, thread models.Thread) error {
		if !auth.CanAccessThread(requester, thread) {
			return apperrors.Forbidden("only thread participants can change messages")
		}
		return nil
	}
}
