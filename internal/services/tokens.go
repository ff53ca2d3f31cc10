package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"chat-api/internal/apperrors"
	"chat-api/internal/auth"
	"chat-api/internal/models"
	"chat-api/internal/observability"
	"chat-api/internal/repositories"
)

// TokenService issues and checks session tokens. Refresh tokens move from
// issued to blacklisted exactly once; access tokens cannot be revoked and
// live until they expire.
type TokenService struct {
	jwt       *auth.JWTManager
	blacklist repositories.TokenBlacklistRepository
	users     repositories.UserRepository
	logger    *zap.Logger
}

func NewTokenService(jwt *auth.JWTManager, blacklist repositories.TokenBlacklistRepository, users repositories.UserRepository, logger *zap.Logger) *TokenService {
	return &TokenService{jwt: jwt, blacklist: blacklist, users: users, logger: logger}
}

// IssueTokenPair signs a fresh access/refresh pair for identity.
func (s *TokenService) IssueTokenPair(identity models.Identity) (models.TokenPair, error) {
	access, err := s.jwt.GenerateAccessToken(identity)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, _, err := s.jwt.GenerateRefreshToken(identity)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshAccessToken returns a new access token carrying the refresh token's
// identity snapshot. The refresh token itself is not rotated.
func (s *TokenService) RefreshAccessToken(ctx context.Context, refresh string) (string, error) {
	claims, err := s.jwt.ValidateRefreshToken(refresh)
	if err != nil {
		s.logger.Debug("refresh token rejected", zap.Error(err))
		observability.IncAuthEvent("refresh", "failure")
		return "", apperrors.TokenInvalid()
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		observability.IncAuthEvent("refresh", "failure")
		return "", apperrors.TokenInvalid()
	}

	access, err := s.jwt.GenerateAccessToken(claims.Identity())
	if err != nil {
		return "", err
	}
	observability.IncAuthEvent("refresh", "success")
	return access, nil
}

// Revoke blacklists a refresh token. Revoking an already blacklisted token
// fails.
func (s *TokenService) Revoke(ctx context.Context, refresh string) error {
	if refresh == "" {
		return apperrors.TokenInvalid()
	}
	claims, err := s.jwt.ValidateRefreshToken(refresh)
	if err != nil {
		s.logger.Debug("revoke rejected", zap.Error(err))
		return apperrors.TokenInvalid()
	}

	inserted, err := s.blacklist.Blacklist(ctx, models.BlacklistedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	if err != nil {
		return err
	}
	if !inserted {
		return apperrors.TokenInvalid()
	}

	observability.IncAuthEvent("logout", "success")
	s.logger.Info("refresh token revoked", zap.Int64("user_id", claims.UserID), zap.String("jti", claims.ID))
	return nil
}

// Authenticate resolves an access token to the current identity of an
// active user.
func (s *TokenService) Authenticate(ctx context.Context, access string) (models.Identity, error) {
	claims, err := s.jwt.ValidateAccessToken(access)
	if err != nil {
		return models.Identity{}, apperrors.TokenInvalid()
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return models.Identity{}, apperrors.TokenInvalid()
	}
	if err != nil {
		return models.Identity{}, err
	}
	if !auth.CanAuthenticate(user) {
		return models.Identity{}, apperrors.TokenInvalid()
	}
	return user.Identity(), nil
}
