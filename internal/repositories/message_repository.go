package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"chat-api/internal/apperrors"
	"chat-api/internal/db"
	"chat-api/internal/models"
)

// ErrMessageNotFound is returned when no message matches the lookup.
var ErrMessageNotFound = fmt.Errorf("message: %w", apperrors.ErrNotFound)

const messageColumns = `id, thread_id, sender_id, text, is_read, created_at`

// MessageRepository defines interactions for thread messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, threadID int64, senderID int64, text string) (models.Message, error)
	ListByThread(ctx context.Context, threadID int64, page models.Page) ([]models.Message, int, error)
	UpdateMessage(ctx context.Context, messageID int64, update models.MessageUpdate, authorize func(models.Message, models.Thread) error) (models.Message, error)
	DeleteMessage(ctx context.Context, messageID int64, authorize func(models.Message, models.Thread) error) (models.Message, error)
	ListUnreadForUser(ctx context.Context, userID int64, page models.Page) ([]models.Message, int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores an unread message in a thread.
func (r *MessageRepo) CreateMessage(ctx context.Context, threadID int64, senderID int64, text string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (thread_id, sender_id, text) VALUES ($1, $2, $3) RETURNING `+messageColumns, threadID, senderID, text).
		StructScan(&msg)
	if err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// ListByThread returns the thread's messages newest first, and the total count.
func (r *MessageRepo) ListByThread(ctx context.Context, threadID int64, page models.Page) ([]models.Message, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM messages WHERE thread_id=$1`, threadID); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	msgs := []models.Message{}
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE thread_id=$1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &msgs, query, threadID, page.Limit, page.Offset); err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	return msgs, total, nil
}

// UpdateMessage applies the non-nil fields of update once authorize approves
// the locked message and its thread.
func (r *MessageRepo) UpdateMessage(ctx context.Context, messageID int64, update models.MessageUpdate, authorize func(models.Message, models.Thread) error) (models.Message, error) {
	var msg models.Message
	err := db.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		var err error
		msg, err = lockAuthorizedMessage(ctx, tx, messageID, authorize)
		if err != nil {
			return err
		}
		if update.Empty() {
			return nil
		}
		err = tx.QueryRowxContext(ctx, `UPDATE messages SET text = COALESCE($2, text), is_read = COALESCE($3, is_read)
        WHERE id=$1 RETURNING `+messageColumns, messageID, update.Text, update.IsRead).
			StructScan(&msg)
		if err != nil {
			return fmt.Errorf("update message: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// DeleteMessage removes a message once authorize approves the locked message
// and its thread. The removed message is returned.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID int64, authorize func(models.Message, models.Thread) error) (models.Message, error) {
	var msg models.Message
	err := db.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		var err error
		msg, err = lockAuthorizedMessage(ctx, tx, messageID, authorize)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, messageID); err != nil {
			return fmt.Errorf("delete message: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// lockAuthorizedMessage holds the message row until the transaction ends, so
// the authorize decision covers the write that follows it.
func lockAuthorizedMessage(ctx context.Context, tx *sqlx.Tx, messageID int64, authorize func(models.Message, models.Thread) error) (models.Message, error) {
	var msg models.Message
	err := tx.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1 FOR UPDATE`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	if err != nil {
		return models.Message{}, fmt.Errorf("lock message: %w", err)
	}

	thread, err := getThread(ctx, tx, msg.ThreadID)
	if errors.Is(err, ErrThreadNotFound) {
		return models.Message{}, ErrMessageNotFound
	}
	if err != nil {
		return models.Message{}, err
	}
	if authorize != nil {
		if err := authorize(msg, thread); err != nil {
			return models.Message{}, err
		}
	}
	return msg, nil
}

// ListUnreadForUser returns unread messages addressed to the user: messages in
// the user's threads that someone else sent.
func (r *MessageRepo) ListUnreadForUser(ctx context.Context, userID int64, page models.Page) ([]models.Message, int, error) {
	const from = ` FROM messages m
        JOIN thread_participants tp ON tp.thread_id = m.thread_id AND tp.user_id = $1
        WHERE m.is_read = FALSE AND m.sender_id <> $1`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+from, userID); err != nil {
		return nil, 0, fmt.Errorf("count unread: %w", err)
	}

	msgs := []models.Message{}
	query := `SELECT m.id, m.thread_id, m.sender_id, m.text, m.is_read, m.created_at` + from + `
        ORDER BY m.created_at DESC, m.id DESC
        LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &msgs, query, userID, page.Limit, page.Offset); err != nil {
		return nil, 0, fmt.Errorf("list unread: %w", err)
	}
	return msgs, total, nil
}
