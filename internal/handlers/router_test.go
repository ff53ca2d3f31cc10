package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chat-api/internal/apperrors"
	"chat-api/internal/middleware"
	"chat-api/internal/mocks"
	"chat-api/internal/models"
)

type routerDeps struct {
	creds    *mocks.CredentialsMock
	tokens   *mocks.TokensMock
	threads  *mocks.ThreadsMock
	messages *mocks.MessagesMock
}

func newTestRouter(t *testing.T, limiter *middleware.RateLimiter, trustedProxies ...string) (*gin.Engine, routerDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	deps := routerDeps{
		creds:    new(mocks.CredentialsMock),
		tokens:   new(mocks.TokensMock),
		threads:  new(mocks.ThreadsMock),
		messages: new(mocks.MessagesMock),
	}
	audit := auditWith(acceptingPublisher())
	logger := zap.NewNop()

	router, err := NewRouter(RouterConfig{
		ServiceName:    "chat-api",
		TrustedProxies: trustedProxies,
		Logger:         logger,
		Authenticator:  deps.tokens,
		AuthLimiter:    limiter,
		Auth:           NewAuthHandler(deps.creds, deps.tokens, audit, logger),
		Threads:        NewThreadHandler(deps.threads, deps.messages, audit, logger),
		Messages:       NewMessageHandler(deps.messages, logger),
		Health:         NewHealthHandler(pingerFunc(func(context.Context) error { return nil }), logger),
	})
	require.NoError(t, err)
	return router, deps
}

func TestRouterRequiresAuthentication(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/threads/"},
		{http.MethodPost, "/threads/"},
		{http.MethodGet, "/threads/unread/"},
		{http.MethodGet, "/threads/2/"},
		{http.MethodPatch, "/threads/message/1/"},
		{http.MethodDelete, "/threads/thread_delete/1/"},
		{http.MethodPost, "/auth/logout"},
	} {
		rec := doRequest(router, route.method, route.path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestRouterStaticSegmentsWinOverUserID(t *testing.T) {
	router, deps := newTestRouter(t, nil)

	deps.tokens.On("Authenticate", mock.Anything, "acc").Return(models.Identity{ID: 1}, nil)
	deps.messages.On("ListUnreadForUser", mock.Anything, int64(1), mock.Anything).Return(nil, 0, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/threads/unread/", nil)
	req.Header.Set("Authorization", "Bearer acc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	deps.messages.AssertExpectations(t)
	deps.threads.AssertNotCalled(t, "GetThreadForPair", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouterExpiredAccessToken(t *testing.T) {
	router, deps := newTestRouter(t, nil)

	deps.tokens.On("Authenticate", mock.Anything, "stale").Return(nil, apperrors.TokenInvalid()).Once()

	req := httptest.NewRequest(http.MethodGet, "/threads/", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	deps.threads.AssertNotCalled(t, "ListThreadsForUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouterRateLimitsAuthRoutes(t *testing.T) {
	router, deps := newTestRouter(t, middleware.NewRateLimiter(0.001, 1))

	deps.creds.On("VerifyCredentials", mock.Anything, "a@example.com", "pw").Return(nil, apperrors.InvalidCredentials())

	first := postJSON(router, "/auth/login", `{"email":"a@example.com","password":"pw"}`)
	second := postJSON(router, "/auth/login", `{"email":"a@example.com","password":"pw"}`)

	assert.Equal(t, http.StatusUnauthorized, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRouterRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	router, deps := newTestRouter(t, middleware.NewRateLimiter(0.001, 1))

	deps.creds.On("VerifyCredentials", mock.Anything, "a@example.com", "pw").Return(nil, apperrors.InvalidCredentials())

	codes := map[int]int{}
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@example.com","password":"pw"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.RemoteAddr = "203.0.113.7:4000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes[rec.Code]++
	}

	assert.Equal(t, 1, codes[http.StatusUnauthorized])
	assert.Equal(t, 49, codes[http.StatusTooManyRequests])
}

func TestRouterRejectsInvalidTrustedProxy(t *testing.T) {
	_, err := NewRouter(RouterConfig{TrustedProxies: []string{"not-a-cidr"}})
	assert.Error(t, err)
}

func TestRouterProbes(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/readyz", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/metrics", "").Code)
}
