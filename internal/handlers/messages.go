package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chat-api/internal/models"
	"chat-api/internal/services"
)

// MessageHandler edits and deletes individual messages.
type MessageHandler struct {
	messages services.Messages
	logger   *zap.Logger
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messages services.Messages, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger}
}

type updateMessageRequest struct {
	Text   *string `json:"text"`
	IsRead *bool   `json:"is_read"`
}

// UpdateMessage applies a partial update of text and is_read.
func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	messageID, ok := parseIDParam(c, "message_id")
	if !ok {
		notFound(c)
		return
	}

	var req updateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	msg, err := h.messages.UpdateMessage(c.Request.Context(), currentUserID(c), messageID, models.MessageUpdate{
		Text:   req.Text,
		IsRead: req.IsRead,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// DeleteMessage removes a message.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := parseIDParam(c, "message_id")
	if !ok {
		notFound(c)
		return
	}

	if err := h.messages.DeleteMessage(c.Request.Context(), currentUserID(c), messageID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
