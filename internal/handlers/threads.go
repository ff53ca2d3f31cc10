package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chat-api/internal/models"
	"chat-api/internal/services"
	"chat-api/internal/telemetry"
	"chat-api/internal/validation"
)

// ThreadHandler manages thread endpoints and the messages addressed through
// a counterpart's user id.
type ThreadHandler struct {
	threads  services.Threads
	messages services.Messages
	audit    *telemetry.AuditEmitter
	logger   *zap.Logger
}

// NewThreadHandler builds a ThreadHandler.
func NewThreadHandler(threads services.Threads, messages services.Messages, audit *telemetry.AuditEmitter, logger *zap.Logger) *ThreadHandler {
	return &ThreadHandler{threads: threads, messages: messages, audit: audit, logger: logger}
}

// ListThreads returns the caller's threads, most recently updated first.
func (h *ThreadHandler) ListThreads(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	threads, total, err := h.threads.ListThreadsForUser(c.Request.Context(), currentUserID(c), page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(threads, total, page))
}

type createThreadRequest struct {
	User int64 `json:"user" validate:"required,gt=0"`
}

// CreateThread returns the thread with the given user, creating it if needed.
func (h *ThreadHandler) CreateThread(c *gin.Context) {
	var req createThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(c, h.logger, err)
		return
	}

	thread, _, err := h.threads.CreateOrGetThread(c.Request.Context(), currentUserID(c), req.User)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, thread)
}

type threadMessagesResponse struct {
	Messages []models.Message `json:"messages"`
	Thread   models.Thread    `json:"thread"`
}

// GetThreadMessages returns the thread with the user in the path and its
// messages, newest first.
func (h *ThreadHandler) GetThreadMessages(c *gin.Context) {
	otherID, ok := parseIDParam(c, "user_id")
	userID := currentUserID(c)
	if !ok || otherID == userID {
		notFound(c)
		return
	}
	page, err := parsePage(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	thread, err := h.threads.GetThreadForPair(c.Request.Context(), userID, otherID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	msgs, _, err := h.messages.ListMessages(c.Request.Context(), thread.ID, page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, threadMessagesResponse{Messages: msgs, Thread: thread})
}

type postMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// PostMessage sends a message to the user in the path.
func (h *ThreadHandler) PostMessage(c *gin.Context) {
	otherID, ok := parseIDParam(c, "user_id")
	if !ok {
		notFound(c)
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(c, h.logger, err)
		return
	}

	msg, err := h.messages.PostMessage(c.Request.Context(), currentUserID(c), otherID, req.Text)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// DeleteThread removes a thread the caller participates in.
func (h *ThreadHandler) DeleteThread(c *gin.Context) {
	threadID, ok := parseIDParam(c, "thread_id")
	if !ok {
		notFound(c)
		return
	}

	userID := currentUserID(c)
	if err := h.threads.DeleteThread(c.Request.Context(), threadID, userID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.audit.Emit(c.Request.Context(), telemetry.LevelInfo, telemetry.ActionThreadDelete, "thread deleted", userID)
	c.Status(http.StatusNoContent)
}

// ListUnread returns unread messages other users sent to the caller.
func (h *ThreadHandler) ListUnread(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	msgs, total, err := h.messages.ListUnreadForUser(c.Request.Context(), currentUserID(c), page)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(msgs, total, page))
}
