package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chat-api/internal/models"
	"chat-api/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int64) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

type ThreadRepositoryMock struct {
	mock.Mock
}

func (m *ThreadRepositoryMock) FindForPair(ctx context.Context, userA int64, userB int64) (models.Thread, error) {
	args := m.Called(ctx, userA, userB)
	var thread models.Thread
	if val := args.Get(0); val != nil {
		thread = val.(models.Thread)
	}
	return thread, args.Error(1)
}

func (m *ThreadRepositoryMock) CreateOrGet(ctx context.Context, userA int64, userB int64) (models.Thread, bool, error) {
	args := m.Called(ctx, userA, userB)
	var thread models.Thread
	if val := args.Get(0); val != nil {
		thread = val.(models.Thread)
	}
	return thread, args.Bool(1), args.Error(2)
}

func (m *ThreadRepositoryMock) AddParticipants(ctx context.Context, threadID int64, userIDs []int64) (models.Thread, error) {
	args := m.Called(ctx, threadID, userIDs)
	var thread models.Thread
	if val := args.Get(0); val != nil {
		thread = val.(models.Thread)
	}
	return thread, args.Error(1)
}

func (m *ThreadRepositoryMock) GetThread(ctx context.Context, threadID int64) (models.Thread, error) {
	args := m.Called(ctx, threadID)
	var thread models.Thread
	if val := args.Get(0); val != nil {
		thread = val.(models.Thread)
	}
	return thread, args.Error(1)
}

func (m *ThreadRepositoryMock) ListForUser(ctx context.Context, userID int64, page models.Page) ([]models.Thread, int, error) {
	args := m.Called(ctx, userID, page)
	var threads []models.Thread
	if val := args.Get(0); val != nil {
		threads = val.([]models.Thread)
	}
	return threads, args.Int(1), args.Error(2)
}

// Delete runs authorize against the configured thread so callers' policy
// checks are exercised.
func (m *ThreadRepositoryMock) Delete(ctx context.Context, threadID int64, authorize func(models.Thread) error) (models.Thread, error) {
	args := m.Called(ctx, threadID)
	var thread models.Thread
	if val := args.Get(0); val != nil {
		thread = val.(models.Thread)
	}
	if err := args.Error(1); err != nil {
		return models.Thread{}, err
	}
	if authorize != nil {
		if err := authorize(thread); err != nil {
			return models.Thread{}, err
		}
	}
	return thread, nil
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, threadID int64, senderID int64, text string) (models.Message, error) {
	args := m.Called(ctx, threadID, senderID, text)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListByThread(ctx context.Context, threadID int64, page models.Page) ([]models.Message, int, error) {
	args := m.Called(ctx, threadID, page)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Int(1), args.Error(2)
}

// UpdateMessage returns (message, thread, error) as configured. The thread is
// what authorize sees alongside the message.
func (m *MessageRepositoryMock) UpdateMessage(ctx context.Context, messageID int64, update models.MessageUpdate, authorize func(models.Message, models.Thread) error) (models.Message, error) {
	return m.authorized(m.Called(ctx, messageID, update), authorize)
}

// DeleteMessage returns (message, thread, error) as configured, like UpdateMessage.
func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID int64, authorize func(models.Message, models.Thread) error) (models.Message, error) {
	return m.authorized(m.Called(ctx, messageID), authorize)
}

func (m *MessageRepositoryMock) authorized(args mock.Arguments, authorize func(models.Message, models.Thread) error) (models.Message, error) {
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	var thread models.Thread
	if val := args.Get(1); val != nil {
		thread = val.(models.Thread)
	}
	if err := args.Error(2); err != nil {
		return models.Message{}, err
	}
	if authorize != nil {
		if err := authorize(msg, thread); err != nil {
			return models.Message{}, err
		}
	}
	return msg, nil
}

func (m *MessageRepositoryMock) ListUnreadForUser(ctx context.Context, userID int64, page models.Page) ([]models.Message, int, error) {
	args := m.Called(ctx, userID, page)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Int(1), args.Error(2)
}

type TokenBlacklistRepositoryMock struct {
	mock.Mock
}

func (m *TokenBlacklistRepositoryMock) Blacklist(ctx context.Context, token models.BlacklistedToken) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *TokenBlacklistRepositoryMock) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

var (
	_ repositories.UserRepository           = (*UserRepositoryMock)(nil)
	_ repositories.ThreadRepository         = (*ThreadRepositoryMock)(nil)
	_ repositories.MessageRepository        = (*MessageRepositoryMock)(nil)
	_ repositories.TokenBlacklistRepository = (*TokenBlacklistRepositoryMock)(nil)
)
