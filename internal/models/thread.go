package models

import (
	"time"

	"github.com/lib/pq"

	"chat-api/internal/apperrors"
)

// MaxParticipants is the fixed membership size of a thread.
const MaxParticipants = 2

// Thread is a two-party conversation container.
type Thread struct {
	ID           int64         `db:"id" json:"id"`
	Participants pq.Int64Array `db:"participants" json:"participants"`
	CreatedAt    time.Time     `db:"created_at" json:"created"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated"`
}

// HasParticipant reports whether userID is a member of the thread.
func (t Thread) HasParticipant(userID int64) bool {
	for _, id := range t.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// Counterpart returns the other participant, or 0 if userID is not a member.
func (t Thread) Counterpart(userID int64) int64 {
	if !t.HasParticipant(userID) {
		return 0
	}
	for _, id := range t.Participants {
		if id != userID {
			return id
		}
	}
	return 0
}

// EnforceParticipantInvariant fails when adding incoming to current would leave
// the thread with more than MaxParticipants members. Ids already present are
// not counted twice.
func EnforceParticipantInvariant(current, incoming []int64) error {
	members := make(map[int64]struct{}, len(current)+len(incoming))
	for _, id := range current {
		members[id] = struct{}{}
	}
	for _, id := range incoming {
		members[id] = struct{}{}
	}
	if len(members) > MaxParticipants {
		return apperrors.InvariantViolation(len(members))
	}
	return nil
}

// NewParticipants returns the ids from incoming that are not in current, deduplicated.
func NewParticipants(current, incoming []int64) []int64 {
	seen := make(map[int64]struct{}, len(current))
	for _, id := range current {
		seen[id] = struct{}{}
	}
	var out []int64
	for _, id := range incoming {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
