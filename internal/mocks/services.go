package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chat-api/internal/models"
	"chat-api/internal/services"
)

type CredentialsMock struct {
	mock.Mock
}

func (m *CredentialsMock) CreateUser(ctx context.Context, in services.NewUser) (models.User, error) {
	args := m.Called(ctx, in)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *CredentialsMock) VerifyCredentials(ctx context.Context, email, password string) (models.User, error) {
	args := m.Called(ctx, email, password)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *CredentialsMock) GetUser(ctx context.Context, userID int64) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

type TokensMock struct {
	mock.Mock
}

func (m *TokensMock) IssueTokenPair(identity models.Identity) (models.TokenPair, error) {
	args := m.Called(identity)
	var pair models.TokenPair
	if val := args.Get(0); val != nil {
		pair = val.(models.TokenPair)
	}
	return pair, args.Error(1)
}

func (m *TokensMock) RefreshAccessToken(ctx context.Context, refresh string) (string, error) {
	args := m.Called(ctx, refresh)
	return args.String(0), args.Error(1)
}

func (m *TokensMock) Revoke(ctx context.Context, refresh string) error {
	args := m.Called(ctx, refresh)
	return args.Error(0)
}

func (m *TokensMock) Authenticate(ctx context.Context, access string) (models.Identity, error) {
	args := m.Called(ctx, access)
	var identity models.Identity
	if val := args.Get(0); val != nil {
		identity = val.(models.Identity)
	}
	return identity, args.Error(1)
}

type ThreadsMock struct {
	mock.Mock
}

func (m *ThreadsMock) GetThreadForPair(ctx context.Context, userA, userB int64) (models.Thread, error) {
	args := m.Called(ctx, userA, userB)
	var thread models.Thread
	if val := args.Get(0); val != nil {
		thread = val.(models.Thread)
	}
	return thread, args.Error(1)
}

func (m *ThreadsMock) CreateOrGetThread(ctx context.Context, requester, other int64) (models.Thread, bool, error) {
	args := m.Called(ctx, requester, other)
	var thread models.Thread
	if val := args.Get(0); val != nil {
		thread = val.(models.Thread)
	}
	return thread, args.Bool(1), args.Error(2)
}

func (m *ThreadsMock) AddParticipants(ctx context.Context, threadID int64, userIDs []int64) (models.Thread, error) {
	args := m.Called(ctx, threadID, userIDs)
	var thread models.Thread
	if val := args.Get(0); val != nil {
		thread = val.(models.Thread)
	}
	return thread, args.Error(1)
}

func (m *ThreadsMock) ListThreadsForUser(ctx context.Context, userID int64, page models.Page) ([]models.Thread, int, error) {
	args := m.Called(ctx, userID, page)
	var threads []models.Thread
	if val := args.Get(0); val != nil {
		threads = val.([]models.Thread)
	}
	return threads, args.Int(1), args.Error(2)
}

func (m *ThreadsMock) GetThread(ctx context.Context, threadID int64) (models.Thread, error) {
	args := m.Called(ctx, threadID)
	var thread models.Thread
	if val := args.Get(0); val != nil {
		thread = val.(models.Thread)
	}
	return thread, args.Error(1)
}

func (m *ThreadsMock) DeleteThread(ctx context.Context, threadID, requester int64) error {
	args := m.Called(ctx, threadID, requester)
	return args.Error(0)
}

type MessagesMock struct {
	mock.Mock
}

func (m *MessagesMock) PostMessage(ctx context.Context, sender, counterpart int64, text string) (models.Message, error) {
	args := m.Called(ctx, sender, counterpart, text)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessagesMock) ListMessages(ctx context.Context, threadID int64, page models.Page) ([]models.Message, int, error) {
	args := m.Called(ctx, threadID, page)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Int(1), args.Error(2)
}

func (m *MessagesMock) UpdateMessage(ctx context.Context, requester, messageID int64, update models.MessageUpdate) (models.Message, error) {
	args := m.Called(ctx, requester, messageID, update)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessagesMock) DeleteMessage(ctx context.Context, requester, messageID int64) error {
	args := m.Called(ctx, requester, messageID)
	return args.Error(0)
}

func (m *MessagesMock) ListUnreadForUser(ctx context.Context, userID int64, page models.Page) ([]models.Message, int, error) {
	args := m.Called(ctx, userID, page)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Int(1), args.Error(2)
}

var (
	_ services.Credentials = (*CredentialsMock)(nil)
	_ services.Tokens      = (*TokensMock)(nil)
	_ services.Threads     = (*ThreadsMock)(nil)
	_ services.Messages    = (*MessagesMock)(nil)
)
