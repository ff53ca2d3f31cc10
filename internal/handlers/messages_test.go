package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chat-api/internal/apperrors"
	"chat-api/internal/mocks"
	"chat-api/internal/models"
	"chat-api/internal/repositories"
)

func setupMessageRouter(messages *mocks.MessagesMock) *gin.Engine {
	handler := NewMessageHandler(messages, zap.NewNop())
	r := testRouter(1)
	r.PATCH("/threads/message/:message_id/", handler.UpdateMessage)
	r.DELETE("/threads/message/:message_id/", handler.DeleteMessage)
	return r
}

func TestUpdateMessageMarksRead(t *testing.T) {
	messages := new(mocks.MessagesMock)
	router := setupMessageRouter(messages)

	messages.On("UpdateMessage", mock.Anything, int64(1), int64(5), mock.MatchedBy(func(u models.MessageUpdate) bool {
		return u.Text == nil && u.IsRead != nil && *u.IsRead
	})).Return(models.Message{ID: 5, Text: "hi", IsRead: true}, nil).Once()

	rec := doRequest(router, http.MethodPatch, "/threads/message/5/", `{"is_read":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_read":true`)
	messages.AssertExpectations(t)
}

func TestUpdateMessageText(t *testing.T) {
	messages := new(mocks.MessagesMock)
	router := setupMessageRouter(messages)

	messages.On("UpdateMessage", mock.Anything, int64(1), int64(5), mock.MatchedBy(func(u models.MessageUpdate) bool {
		return u.Text != nil && *u.Text == "edited" && u.IsRead == nil
	})).Return(models.Message{ID: 5, Text: "edited"}, nil).Once()

	rec := doRequest(router, http.MethodPatch, "/threads/message/5/", `{"text":"edited"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"text":"edited"`)
}

func TestUpdateMessageRejects(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		err    error
		status int
	}{
		{name: "bad id", path: "/threads/message/x/", body: `{"is_read":true}`, status: http.StatusNotFound},
		{name: "malformed", path: "/threads/message/5/", body: `{"is_read":"yes"}`, status: http.StatusBadRequest},
		{name: "missing", path: "/threads/message/5/", body: `{"is_read":true}`, err: repositories.ErrMessageNotFound, status: http.StatusNotFound},
		{name: "outsider", path: "/threads/message/5/", body: `{"is_read":true}`, err: apperrors.Forbidden("not a participant of this thread"), status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages := new(mocks.MessagesMock)
			router := setupMessageRouter(messages)
			if tt.err != nil {
				messages.On("UpdateMessage", mock.Anything, int64(1), int64(5), mock.Anything).Return(nil, tt.err).Once()
			}

			rec := doRequest(router, http.MethodPatch, tt.path, tt.body)

			require.Equal(t, tt.status, rec.Code)
			messages.AssertExpectations(t)
		})
	}
}

func TestDeleteMessage(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "deleted", status: http.StatusNoContent},
		{name: "missing", err: repositories.ErrMessageNotFound, status: http.StatusNotFound},
		{name: "outsider", err: apperrors.Forbidden("not a participant of this thread"), status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages := new(mocks.MessagesMock)
			router := setupMessageRouter(messages)
			messages.On("DeleteMessage", mock.Anything, int64(1), int64(5)).Return(tt.err).Once()

			rec := doRequest(router, http.MethodDelete, "/threads/message/5/", "")

			require.Equal(t, tt.status, rec.Code)
			messages.AssertExpectations(t)
		})
	}
}
