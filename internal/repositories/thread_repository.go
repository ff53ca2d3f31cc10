package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chat-api/internal/apperrors"
	"chat-api/internal/db"
	"chat-api/internal/models"
)

// ErrThreadNotFound is returned when no thread matches the lookup.
var ErrThreadNotFound = fmt.Errorf("thread: %w", apperrors.ErrNotFound)

const threadSelect = `SELECT t.id, t.created_at, t.updated_at,
        ARRAY(SELECT p.user_id FROM thread_participants p WHERE p.thread_id = t.id ORDER BY p.user_id) AS participants
        FROM threads t`

// ThreadRepository abstracts thread persistence.
type ThreadRepository interface {
	FindForPair(ctx context.Context, userA int64, userB int64) (models.Thread, error)
	CreateOrGet(ctx context.Context, userA int64, userB int64) (models.Thread, bool, error)
	AddParticipants(ctx context.Context, threadID int64, userIDs []int64) (models.Thread, error)
	GetThread(ctx context.Context, threadID int64) (models.Thread, error)
	ListForUser(ctx context.Context, userID int64, page models.Page) ([]models.Thread, int, error)
	Delete(ctx context.Context, threadID int64, authorize func(models.Thread) error) (models.Thread, error)
}

// ThreadRepo is a sqlx implementation of ThreadRepository.
type ThreadRepo struct {
	db *sqlx.DB
}

// NewThreadRepo constructs a ThreadRepo.
func NewThreadRepo(db *sqlx.DB) *ThreadRepo {
	return &ThreadRepo{db: db}
}

// FindForPair returns the thread whose participants are exactly userA and userB.
func (r *ThreadRepo) FindForPair(ctx context.Context, userA int64, userB int64) (models.Thread, error) {
	return findForPair(ctx, r.db, userA, userB)
}

// CreateOrGet returns the pair's thread, creating it if it does not exist yet.
// The users' rows are locked in id order for the duration of the transaction so
// two concurrent calls for the same pair cannot both miss the lookup.
func (r *ThreadRepo) CreateOrGet(ctx context.Context, userA int64, userB int64) (models.Thread, bool, error) {
	var (
		thread  models.Thread
		created bool
	)
	ids := []int64{userA, userB}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	err := db.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		var locked []int64
		if err := tx.SelectContext(ctx, &locked, `SELECT id FROM users WHERE id = ANY($1) ORDER BY id FOR NO KEY UPDATE`, pq.Int64Array(ids)); err != nil {
			return fmt.Errorf("lock users: %w", err)
		}
		if len(locked) != len(ids) {
			return ErrUserNotFound
		}

		existing, err := findForPair(ctx, tx, userA, userB)
		if err == nil {
			thread = existing
			return nil
		}
		if !errors.Is(err, ErrThreadNotFound) {
			return err
		}

		var threadID int64
		if err := tx.QueryRowxContext(ctx, `INSERT INTO threads DEFAULT VALUES RETURNING id`).Scan(&threadID); err != nil {
			return fmt.Errorf("insert thread: %w", err)
		}
		thread, err = addParticipants(ctx, tx, threadID, ids)
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return models.Thread{}, false, err
	}
	return thread, created, nil
}

// AddParticipants is the only way participants are attached to a thread. The
// thread row is locked and the two-participant invariant is checked before
// anything is written.
func (r *ThreadRepo) AddParticipants(ctx context.Context, threadID int64, userIDs []int64) (models.Thread, error) {
	var thread models.Thread
	err := db.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		var err error
		thread, err = addParticipants(ctx, tx, threadID, userIDs)
		return err
	})
	if err != nil {
		return models.Thread{}, err
	}
	return thread, nil
}

// GetThread fetches a thread by id.
func (r *ThreadRepo) GetThread(ctx context.Context, threadID int64) (models.Thread, error) {
	return getThread(ctx, r.db, threadID)
}

// ListForUser returns the user's threads, most recently updated first, and the total count.
func (r *ThreadRepo) ListForUser(ctx context.Context, userID int64, page models.Page) ([]models.Thread, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM thread_participants WHERE user_id=$1`, userID); err != nil {
		return nil, 0, fmt.Errorf("count threads: %w", err)
	}

	threads := []models.Thread{}
	query := threadSelect + `
        JOIN thread_participants me ON me.thread_id = t.id AND me.user_id = $1
        ORDER BY t.updated_at DESC, t.id DESC
        LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &threads, query, userID, page.Limit, page.Offset); err != nil {
		return nil, 0, fmt.Errorf("list threads: %w", err)
	}
	return threads, total, nil
}

// Delete removes the thread after authorize approves it. Messages go with it
// through the foreign key cascade.
func (r *ThreadRepo) Delete(ctx context.Context, threadID int64, authorize func(models.Thread) error) (models.Thread, error) {
	var thread models.Thread
	err := db.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		if err := lockThread(ctx, tx, threadID); err != nil {
			return err
		}
		var err error
		thread, err = getThread(ctx, tx, threadID)
		if err != nil {
			return err
		}
		if authorize != nil {
			if err := authorize(thread); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM threads WHERE id=$1`, threadID); err != nil {
			return fmt.Errorf("delete thread: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Thread{}, err
	}
	return thread, nil
}

func addParticipants(ctx context.Context, tx *sqlx.Tx, threadID int64, userIDs []int64) (models.Thread, error) {
	if err := lockThread(ctx, tx, threadID); err != nil {
		return models.Thread{}, err
	}

	var current []int64
	if err := tx.SelectContext(ctx, &current, `SELECT user_id FROM thread_participants WHERE thread_id=$1`, threadID); err != nil {
		return models.Thread{}, fmt.Errorf("load participants: %w", err)
	}
	if err := models.EnforceParticipantInvariant(current, userIDs); err != nil {
		return models.Thread{}, err
	}

	additions := models.NewParticipants(current, userIDs)
	for _, userID := range additions {
		if _, err := tx.ExecContext(ctx, `INSERT INTO thread_participants (thread_id, user_id) VALUES ($1, $2)`, threadID, userID); err != nil {
			return models.Thread{}, fmt.Errorf("insert participant: %w", err)
		}
	}
	if len(additions) > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE threads SET updated_at = NOW() WHERE id=$1`, threadID); err != nil {
			return models.Thread{}, fmt.Errorf("touch thread: %w", err)
		}
	}

	return getThread(ctx, tx, threadID)
}

func lockThread(ctx context.Context, tx *sqlx.Tx, threadID int64) error {
	var id int64
	err := tx.GetContext(ctx, &id, `SELECT id FROM threads WHERE id=$1 FOR UPDATE`, threadID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrThreadNotFound
	}
	if err != nil {
		return fmt.Errorf("lock thread: %w", err)
	}
	return nil
}

func getThread(ctx context.Context, q sqlx.QueryerContext, threadID int64) (models.Thread, error) {
	var thread models.Thread
	err := sqlx.GetContext(ctx, q, &thread, threadSelect+` WHERE t.id=$1`, threadID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Thread{}, ErrThreadNotFound
	}
	if err != nil {
		return models.Thread{}, fmt.Errorf("get thread: %w", err)
	}
	return thread, nil
}

func findForPair(ctx context.Context, q sqlx.QueryerContext, userA int64, userB int64) (models.Thread, error) {
	var thread models.Thread
	query := threadSelect + `
        WHERE EXISTS (SELECT 1 FROM thread_participants a WHERE a.thread_id = t.id AND a.user_id = $1)
        AND EXISTS (SELECT 1 FROM thread_participants b WHERE b.thread_id = t.id AND b.user_id = $2)
        ORDER BY t.id ASC
        LIMIT 1`
	err := sqlx.GetContext(ctx, q, &thread, query, userA, userB)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Thread{}, ErrThreadNotFound
	}
	if err != nil {
		return models.Thread{}, fmt.Errorf("find thread for pair: %w", err)
	}
	return thread, nil
}
