package models

import "time"

// TokenPair is the access/refresh pair issued at login.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// BlacklistedToken records a revoked refresh token by its jti.
type BlacklistedToken struct {
	JTI           string    `db:"jti"`
	UserID        int64     `db:"user_id"`
	ExpiresAt     time.Time `db:"expires_at"`
	BlacklistedAt time.Time `db:"blacklisted_at"`
}

// Page selects a limit/offset window of a list.
type Page struct {
	Limit  int
	Offset int
}
