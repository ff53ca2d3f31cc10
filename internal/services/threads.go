package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"chat-api/internal/apperrors"
	"chat-api/internal/auth"
	"chat-api/internal/models"
	"chat-api/internal/observability"
	"chat-api/internal/repositories"
)

// ThreadRegistry keeps at most one two-participant thread per user pair.
type ThreadRegistry struct {
	threads repositories.ThreadRepository
	events  *observability.EventPublisher
	logger  *zap.Logger
}

func NewThreadRegistry(threads repositories.ThreadRepository, events *observability.EventPublisher, logger *zap.Logger) *ThreadRegistry {
	return &ThreadRegistry{threads: threads, events: events, logger: logger}
}

type threadEvent struct {
	ThreadID     int64   `json:"thread_id"`
	Participants []int64 `json:"participants"`
	ActorID      int64   `json:"actor_id"`
}

// GetThreadForPair finds the pair's thread regardless of argument order.
func (r *ThreadRegistry) GetThreadForPair(ctx context.Context, userA, userB int64) (models.Thread, error) {
	if userA == userB {
		return models.Thread{}, repositories.ErrThreadNotFound
	}
	return r.threads.FindForPair(ctx, userA, userB)
}

// CreateOrGetThread returns the pair's thread, creating it when absent. The
// bool reports whether a new thread was created.
func (r *ThreadRegistry) CreateOrGetThread(ctx context.Context, requester, other int64) (models.Thread, bool, error) {
	ctx, span := tracer.Start(ctx, "threads.create_or_get")
	defer span.End()
	span.SetAttributes(attribute.Int64("chat.requester_id", requester), attribute.Int64("chat.other_id", other))

	if requester == other {
		return models.Thread{}, false, apperrors.SelfThread()
	}

	thread, created, err := r.threads.CreateOrGet(ctx, requester, other)
	if err != nil {
		span.RecordError(err)
		return models.Thread{}, false, err
	}
	span.SetAttributes(attribute.Int64("chat.thread_id", thread.ID), attribute.Bool("chat.created", created))
	if created {
		observability.IncThreadEvent("created")
		r.logger.Info("thread created", zap.Int64("thread_id", thread.ID), zap.Int64("requester", requester))
		r.events.Publish(ctx, observability.EventThreadCreated, threadEvent{
			ThreadID:     thread.ID,
			Participants: thread.Participants,
			ActorID:      requester,
		})
	}
	return thread, created, nil
}

// AddParticipants attaches users to a thread, rejecting any change that would
// leave it with more than two participants.
func (r *ThreadRegistry) AddParticipants(ctx context.Context, threadID int64, userIDs []int64) (models.Thread, error) {
	thread, err := r.threads.AddParticipants(ctx, threadID, userIDs)
	if err != nil {
		return models.Thread{}, err
	}
	return thread, nil
}

// ListThreadsForUser returns the user's threads, most recently updated first.
func (r *ThreadRegistry) ListThreadsForUser(ctx context.Context, userID int64, page models.Page) ([]models.Thread, int, error) {
	return r.threads.ListForUser(ctx, userID, page)
}

// GetThread fetches a thread by id. A missing thread yields
// repositories.ErrThreadNotFound.
func (r *ThreadRegistry) GetThread(ctx context.Context, threadID int64) (models.Thread, error) {
	return r.threads.GetThread(ctx, threadID)
}

// DeleteThread removes a thread and its messages. Only participants may
// delete.
func (r *ThreadRegistry) DeleteThread(ctx context.Context, threadID, requester int64) error {
	ctx, span := tracer.Start(ctx, "threads.delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("chat.thread_id", threadID))

	thread, err := r.threads.Delete(ctx, threadID, func(t models.Thread) error {
		if !auth.CanAccessThread(requester, t) {
			return apperrors.Forbidden("only thread participants can delete a thread")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	observability.IncThreadEvent("deleted")
	r.logger.Info("thread deleted", zap.Int64("thread_id", threadID), zap.Int64("requester", requester))
	r.events.Publish(ctx, observability.EventThreadDeleted, threadEvent{
		ThreadID:     thread.ID,
		Participants: thread.Participants,
		ActorID:      requester,
	})
	return nil
}
