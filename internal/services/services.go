// Package services holds the domain operations behind the HTTP API: the
// credential store, the token service, the thread registry and the message
// ledger.
package services

import (
	"context"

	"go.opentelemetry.io/otel"

	"chat-api/internal/models"
)

var tracer = otel.Tracer("chat-api/services")

// Credentials manages user identity records.
type Credentials interface {
	CreateUser(ctx context.Context, in NewUser) (models.User, error)
	VerifyCredentials(ctx context.Context, email, password string) (models.User, error)
	GetUser(ctx context.Context, userID int64) (models.User, error)
}

// Tokens issues, refreshes, revokes and checks session tokens.
type Tokens interface {
	IssueTokenPair(identity models.Identity) (models.TokenPair, error)
	RefreshAccessToken(ctx context.Context, refresh string) (string, error)
	Revoke(ctx context.Context, refresh string) error
	Authenticate(ctx context.Context, access string) (models.Identity, error)
}

// Threads is the two-party thread registry.
type Threads interface {
	GetThreadForPair(ctx context.Context, userA, userB int64) (models.Thread, error)
	CreateOrGetThread(ctx context.Context, requester, other int64) (models.Thread, bool, error)
	AddParticipants(ctx context.Context, threadID int64, userIDs []int64) (models.Thread, error)
	ListThreadsForUser(ctx context.Context, userID int64, page models.Page) ([]models.Thread, int, error)
	GetThread(ctx context.Context, threadID int64) (models.Thread, error)
	DeleteThread(ctx context.Context, threadID, requester int64) error
}

// Messages is the message ledger.
type Messages interface {
	PostMessage(ctx context.Context, sender, counterpart int64, text string) (models.Message, error)
	ListMessages(ctx context.Context, threadID int64, page models.Page) ([]models.Message, int, error)
	UpdateMessage(ctx context.Context, requester, messageID int64, update models.MessageUpdate) (models.Message, error)
	DeleteMessage(ctx context.Context, requester, messageID int64) error
	ListUnreadForUser(ctx context.Context, userID int64, page models.Page) ([]models.Message, int, error)
}

var (
	_ Credentials = (*CredentialStore)(nil)
	_ Tokens      = (*TokenService)(nil)
	_ Threads     = (*ThreadRegistry)(nil)
	_ Messages    = (*MessageLedger)(nil)
)
