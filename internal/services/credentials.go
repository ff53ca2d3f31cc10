package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"chat-api/internal/apperrors"
	"chat-api/internal/auth"
	"chat-api/internal/models"
	"chat-api/internal/observability"
	"chat-api/internal/repositories"
	"chat-api/internal/validation"
)

// NewUser is the registration input.
type NewUser struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,max=72"`
	FirstName string `json:"first_name" validate:"required,max=64"`
	LastName  string `json:"last_name" validate:"required,max=64"`
}

// CredentialStore owns user records and password checks.
type CredentialStore struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

func NewCredentialStore(users repositories.UserRepository, logger *zap.Logger) *CredentialStore {
	return &CredentialStore{users: users, logger: logger}
}

// NormalizeEmail trims the address and lower-cases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// CreateUser registers an active, non-staff user. Only the bcrypt hash of the
// password is stored.
func (s *CredentialStore) CreateUser(ctx context.Context, in NewUser) (models.User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return models.User{}, apperrors.DuplicateIdentity(in.Email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		// max=72 counts runes; bcrypt counts bytes.
		return models.User{}, apperrors.InvalidField("password", "Ensure this field has no more than 72 bytes.")
	}
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}

	observability.IncAuthEvent("register", "success")
	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// VerifyCredentials returns the user for a matching email and password.
// Unknown email, wrong password and inactive account are indistinguishable.
func (s *CredentialStore) VerifyCredentials(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, apperrors.ErrNotFound) {
		auth.BurnPasswordCheck(password)
		observability.IncAuthEvent("login", "failure")
		return models.User{}, apperrors.InvalidCredentials()
	}
	if err != nil {
		return models.User{}, err
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil || !auth.CanAuthenticate(user) {
		observability.IncAuthEvent("login", "failure")
		return models.User{}, apperrors.InvalidCredentials()
	}

	observability.IncAuthEvent("login", "success")
	return user, nil
}

// GetUser fetches a user by id.
func (s *CredentialStore) GetUser(ctx context.Context, userID int64) (models.User, error) {
	return s.users.GetByID(ctx, userID)
}
