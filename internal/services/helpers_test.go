package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"chat-api/internal/apperrors"
	"chat-api/internal/models"
	"chat-api/internal/observability"
	"chat-api/internal/repositories"
)

var ctx = context.Background()

var nopEvents = observability.NewEventPublisher(nil, zap.NewNop())

// memStore is an in-memory stand-in for the four repositories, used by the
// end-to-end scenarios.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	users     map[int64]models.User
	threads   map[int64]models.Thread
	messages  map[int64]models.Message
	blacklist map[string]models.BlacklistedToken
	clock     time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[int64]models.User{},
		threads:   map[int64]models.Thread{},
		messages:  map[int64]models.Message{},
		blacklist: map[string]models.BlacklistedToken{},
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return apperrors.DuplicateIdentity(user.Email)
		}
	}
	user.ID = s.id()
	user.DateJoined = s.tick()
	s.users[user.ID] = *user
	return nil
}

func (s *memStore) GetByID(_ context.Context, userID int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.User{}, repositories.ErrUserNotFound
	}
	return u, nil
}

func (s *memStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repositories.ErrUserNotFound
}

func (s *memStore) findForPair(a, b int64) (models.Thread, bool) {
	for _, t := range s.threads {
		if t.HasParticipant(a) && t.HasParticipant(b) {
			return t, true
		}
	}
	return models.Thread{}, false
}

func (s *memStore) addParticipants(threadID int64, userIDs []int64) (models.Thread, error) {
	t, ok := s.threads[threadID]
	if !ok {
		return models.Thread{}, repositories.ErrThreadNotFound
	}
	if err := models.EnforceParticipantInvariant(t.Participants, userIDs); err != nil {
		return models.Thread{}, err
	}
	additions := models.NewParticipants(t.Participants, userIDs)
	if len(additions) > 0 {
		t.Participants = append(append([]int64{}, t.Participants...), additions...)
		sort.Slice(t.Participants, func(i, j int) bool { return t.Participants[i] < t.Participants[j] })
		t.UpdatedAt = s.tick()
		s.threads[threadID] = t
	}
	return t, nil
}

func (s *memStore) FindForPair(_ context.Context, a, b int64) (models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.findForPair(a, b); ok {
		return t, nil
	}
	return models.Thread{}, repositories.ErrThreadNotFound
}

func (s *memStore) CreateOrGet(_ context.Context, a, b int64) (models.Thread, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[a]; !ok {
		return models.Thread{}, false, repositories.ErrUserNotFound
	}
	if _, ok := s.users[b]; !ok {
		return models.Thread{}, false, repositories.ErrUserNotFound
	}
	if t, ok := s.findForPair(a, b); ok {
		return t, false, nil
	}
	now := s.tick()
	id := s.id()
	s.threads[id] = models.Thread{ID: id, CreatedAt: now, UpdatedAt: now}
	t, err := s.addParticipants(id, []int64{a, b})
	return t, err == nil, err
}

func (s *memStore) AddParticipants(_ context.Context, threadID int64, userIDs []int64) (models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addParticipants(threadID, userIDs)
}

func (s *memStore) GetThread(_ context.Context, threadID int64) (models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[threadID]
	if !ok {
		return models.Thread{}, repositories.ErrThreadNotFound
	}
	return t, nil
}

func (s *memStore) ListForUser(_ context.Context, userID int64, page models.Page) ([]models.Thread, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Thread
	for _, t := range s.threads {
		if t.HasParticipant(userID) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return window(out, page), len(out), nil
}

func (s *memStore) Delete(_ context.Context, threadID int64, authorize func(models.Thread) error) (models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[threadID]
	if !ok {
		return models.Thread{}, repositories.ErrThreadNotFound
	}
	if authorize != nil {
		if err := authorize(t); err != nil {
			return models.Thread{}, err
		}
	}
	delete(s.threads, threadID)
	for id, m := range s.messages {
		if m.ThreadID == threadID {
			delete(s.messages, id)
		}
	}
	return t, nil
}

func (s *memStore) CreateMessage(_ context.Context, threadID, senderID int64, text string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := models.Message{ID: s.id(), ThreadID: threadID, SenderID: senderID, Text: text, CreatedAt: s.tick()}
	s.messages[m.ID] = m
	return m, nil
}

func (s *memStore) sortedMessages(keep func(models.Message) bool) []models.Message {
	var out []models.Message
	for _, m := range s.messages {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *memStore) ListByThread(_ context.Context, threadID int64, page models.Page) ([]models.Message, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sortedMessages(func(m models.Message) bool { return m.ThreadID == threadID })
	return window(out, page), len(out), nil
}

func (s *memStore) GetMessage(_ context.Context, messageID int64) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok {
		return models.Message{}, repositories.ErrMessageNotFound
	}
	return m, nil
}

func (s *memStore) authorizedMessage(messageID int64, authorize func(models.Message, models.Thread) error) (models.Message, error) {
	m, ok := s.messages[messageID]
	if !ok {
		return models.Message{}, repositories.ErrMessageNotFound
	}
	t, ok := s.threads[m.ThreadID]
	if !ok {
		return models.Message{}, repositories.ErrMessageNotFound
	}
	if authorize != nil {
		if err := authorize(m, t); err != nil {
			return models.Message{}, err
		}
	}
	return m, nil
}

func (s *memStore) UpdateMessage(_ context.Context, messageID int64, update models.MessageUpdate, authorize func(models.Message, models.Thread) error) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.authorizedMessage(messageID, authorize)
	if err != nil {
		return models.Message{}, err
	}
	if update.Text != nil {
		m.Text = *update.Text
	}
	if update.IsRead != nil {
		m.IsRead = *update.IsRead
	}
	s.messages[messageID] = m
	return m, nil
}

func (s *memStore) DeleteMessage(_ context.Context, messageID int64, authorize func(models.Message, models.Thread) error) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.authorizedMessage(messageID, authorize)
	if err != nil {
		return models.Message{}, err
	}
	delete(s.messages, messageID)
	return m, nil
}

func (s *memStore) ListUnreadForUser(_ context.Context, userID int64, page models.Page) ([]models.Message, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sortedMessages(func(m models.Message) bool {
		t, ok := s.threads[m.ThreadID]
		return ok && !m.IsRead && m.SenderID != userID && t.HasParticipant(userID)
	})
	return window(out, page), len(out), nil
}

func (s *memStore) Blacklist(_ context.Context, token models.BlacklistedToken) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blacklist[token.JTI]; ok {
		return false, nil
	}
	s.blacklist[token.JTI] = token
	return true, nil
}

func (s *memStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blacklist[jti]
	return ok, nil
}

func window[T any](items []T, page models.Page) []T {
	if page.Offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return items[page.Offset:end]
}

var (
	_ repositories.UserRepository           = (*memStore)(nil)
	_ repositories.ThreadRepository         = (*memStore)(nil)
	_ repositories.MessageRepository        = (*memStore)(nil)
	_ repositories.TokenBlacklistRepository = (*memStore)(nil)
)
