package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by repositories, services and handlers.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateIdentity  = errors.New("duplicate identity")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrSelfThread         = errors.New("self thread not allowed")
	ErrInvariantViolation = errors.New("thread participant invariant violated")
	ErrForbidden          = errors.New("forbidden")
)

// AppError carries a client-facing message and the HTTP status it maps to.
// Field is set for field-level validation failures.
type AppError struct {
	Code    string
	Message string
	Field   string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error for a missing resource.
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %d not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InvalidField creates a 400 error bound to a request field.
func InvalidField(field, message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Field:   field,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// DuplicateIdentity reports an already registered email.
func DuplicateIdentity(email string) *AppError {
	return &AppError{
		Code:    "DUPLICATE_IDENTITY",
		Message: "user with this email already exists",
		Field:   "email",
		Status:  http.StatusBadRequest,
		Err:     fmt.Errorf("%w: %s", ErrDuplicateIdentity, email),
	}
}

// InvalidCredentials never says which half of the pair was wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:    "INVALID_CREDENTIALS",
		Message: "no active account found with the given credentials",
		Status:  http.StatusUnauthorized,
		Err:     ErrInvalidCredentials,
	}
}

// TokenInvalid creates a 401 error for a bad, expired or blacklisted token.
func TokenInvalid() *AppError {
	return &AppError{
		Code:    "TOKEN_INVALID",
		Message: "token is invalid or expired",
		Status:  http.StatusUnauthorized,
		Err:     ErrTokenInvalid,
	}
}

// SelfThread rejects a thread between a user and themselves.
func SelfThread() *AppError {
	return &AppError{
		Code:    "SELF_THREAD",
		Message: "user cannot start a thread with themselves",
		Status:  http.StatusBadRequest,
		Err:     ErrSelfThread,
	}
}

// InvariantViolation reports an attempt to grow a thread past two participants.
func InvariantViolation(count int) *AppError {
	return &AppError{
		Code:    "INVARIANT_VIOLATION",
		Message: fmt.Sprintf("thread can not have more than 2 participants, got %d", count),
		Status:  http.StatusBadRequest,
		Err:     ErrInvariantViolation,
	}
}

// Forbidden creates a 400 error; the API does not distinguish authorization
// failures from validation failures.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrForbidden,
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrDuplicateIdentity),
		errors.Is(err, ErrSelfThread),
		errors.Is(err, ErrInvariantViolation),
		errors.Is(err, ErrForbidden):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
