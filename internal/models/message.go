package models

import "time"

// Message is a text message owned by a thread.
type Message struct {
	ID        int64     `db:"id" json:"id"`
	ThreadID  int64     `db:"thread_id" json:"thread"`
	SenderID  int64     `db:"sender_id" json:"sender"`
	Text      string    `db:"text" json:"text"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created"`
}

// MessageUpdate holds the client-writable message fields. Nil means unchanged.
type MessageUpdate struct {
	Text   *string
	IsRead *bool
}

// Empty reports whether the update changes nothing.
func (u MessageUpdate) Empty() bool {
	return u.Text == nil && u.IsRead == nil
}
