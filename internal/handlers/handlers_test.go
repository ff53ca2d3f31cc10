package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"chat-api/internal/mocks"
	"chat-api/internal/telemetry"
)

func testRouter(userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if userID != 0 {
		r.Use(func(c *gin.Context) {
			c.Set("userID", userID)
			c.Next()
		})
	}
	return r
}

func auditWith(pub *mocks.PublisherMock) *telemetry.AuditEmitter {
	return telemetry.NewAuditEmitter(pub, "audit.chat-api", "chat-api", "test", zap.NewNop())
}

func acceptingPublisher() *mocks.PublisherMock {
	pub := new(mocks.PublisherMock)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return pub
}
