package models

import "time"

// User is a registered account. Email is the identity key.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	IsStaff      bool      `db:"is_staff" json:"is_staff"`
	DateJoined   time.Time `db:"date_joined" json:"date_joined"`
}

// Identity is the snapshot of a user embedded into session tokens.
type Identity struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Identity returns the token-bound snapshot of the user.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}
