package handlers

import (
	"github.com/gin-gonic/gin"

	"chat-api/internal/middleware"
	"chat-api/internal/observability"
)

func requestIDFromContext(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return observability.RequestIDFromContext(c.Request.Context())
}

// currentUserID returns the authenticated user, or 0 on public routes.
func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(middleware.UserIDKey)
}
