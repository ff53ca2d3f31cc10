package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"chat-api/internal/models"
)

// TokenBlacklistRepository stores revoked refresh tokens.
type TokenBlacklistRepository interface {
	Blacklist(ctx context.Context, token models.BlacklistedToken) (bool, error)
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// TokenBlacklistRepo is a sqlx implementation of TokenBlacklistRepository.
type TokenBlacklistRepo struct {
	db *sqlx.DB
}

// NewTokenBlacklistRepo constructs a TokenBlacklistRepo.
func NewTokenBlacklistRepo(db *sqlx.DB) *TokenBlacklistRepo {
	return &TokenBlacklistRepo{db: db}
}

// Blacklist records the token and reports whether it was newly blacklisted.
// A token that was already blacklisted yields false.
func (r *TokenBlacklistRepo) Blacklist(ctx context.Context, token models.BlacklistedToken) (bool, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO token_blacklist (jti, user_id, expires_at) VALUES ($1, $2, $3)
        ON CONFLICT (jti) DO NOTHING`, token.JTI, token.UserID, token.ExpiresAt)
	if err != nil {
		return false, fmt.Errorf("blacklist token: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return count == 1, nil
}

// IsBlacklisted reports whether the jti has been revoked.
func (r *TokenBlacklistRepo) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM token_blacklist WHERE jti=$1)`, jti); err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return exists, nil
}
