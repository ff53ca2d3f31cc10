package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"chat-api/internal/middleware"
	"chat-api/internal/observability"
)

// RouterConfig carries everything the HTTP surface is built from.
type RouterConfig struct {
	ServiceName    string
	TrustedProxies []string
	Logger         *zap.Logger
	Authenticator  middleware.Authenticator
	AuthLimiter    *middleware.RateLimiter
	Auth           *AuthHandler
	Threads        *ThreadHandler
	Messages       *MessageHandler
	Health         *HealthHandler
}

// NewRouter wires middleware and routes.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.ServiceName),
		middleware.RequestID(),
		middleware.RequestLogger(cfg.Logger),
		observability.HTTPMetricsMiddleware(),
	)

	router.GET("/healthz", cfg.Health.Live)
	router.GET("/readyz", cfg.Health.Ready)
	router.GET("/metrics", observability.MetricsHandler())

	authMiddleware := middleware.AuthMiddleware(cfg.Authenticator, cfg.Logger)

	authGroup := router.Group("/auth")
	if cfg.AuthLimiter != nil {
		authGroup.Use(cfg.AuthLimiter.Middleware())
	}
	authGroup.POST("/register", cfg.Auth.Register)
	authGroup.POST("/login", cfg.Auth.Login)
	authGroup.POST("/refresh", cfg.Auth.Refresh)
	authGroup.POST("/logout", authMiddleware, cfg.Auth.Logout)

	threads := router.Group("/threads", authMiddleware)
	threads.GET("/", cfg.Threads.ListThreads)
	threads.POST("/", cfg.Threads.CreateThread)
	threads.GET("/unread/", cfg.Threads.ListUnread)
	threads.GET("/:user_id/", cfg.Threads.GetThreadMessages)
	threads.POST("/:user_id/", cfg.Threads.PostMessage)
	threads.PATCH("/message/:message_id/", cfg.Messages.UpdateMessage)
	threads.DELETE("/message/:message_id/", cfg.Messages.DeleteMessage)
	threads.DELETE("/thread_delete/:thread_id/", cfg.Threads.DeleteThread)

	return router, nil
}
