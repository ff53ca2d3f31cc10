package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chat-api/internal/auth"
	"chat-api/internal/config"
	"chat-api/internal/db"
	grpcserver "chat-api/internal/grpc"
	"chat-api/internal/handlers"
	"chat-api/internal/logger"
	"chat-api/internal/middleware"
	"chat-api/internal/observability"
	"chat-api/internal/rabbitmq"
	"chat-api/internal/repositories"
	"chat-api/internal/services"
	"chat-api/internal/telemetry"
	"chat-api/internal/tracing"
)

const serviceName = "chat-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		zlog.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTelEndpoint,
		Enabled:      cfg.OTelEnabled,
	})
	if err != nil {
		zlog.Fatal("failed to init tracing", zap.Error(err))
	}

	database, err := db.Connect(ctx, cfg.DatabaseDSN, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to db", zap.Error(err))
	}
	defer database.Close()

	userRepo := repositories.NewUserRepo(database)
	threadRepo := repositories.NewThreadRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	blacklistRepo := repositories.NewTokenBlacklistRepo(database)

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, zlog)
	defer publisher.Close()
	mode, reason := rabbitmq.Describe(publisher)
	zlog.Info("event publisher ready", zap.String("mode", mode), zap.String("reason", reason))
	events := observability.NewEventPublisher(publisher, zlog)
	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRoutingKey, serviceName, cfg.Environment, zlog)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	credentials := services.NewCredentialStore(userRepo, zlog)
	tokens := services.NewTokenService(jwtManager, blacklistRepo, userRepo, zlog)
	threads := services.NewThreadRegistry(threadRepo, events, zlog)
	messages := services.NewMessageLedger(messageRepo, threadRepo, events, zlog)

	router, err := handlers.NewRouter(handlers.RouterConfig{
		ServiceName:    serviceName,
		TrustedProxies: cfg.TrustedProxies,
		Logger:         zlog,
		Authenticator:  tokens,
		AuthLimiter:    middleware.NewRateLimiter(cfg.AuthRatePerSecond, cfg.AuthRateBurst),
		Auth:           handlers.NewAuthHandler(credentials, tokens, audit, zlog),
		Threads:        handlers.NewThreadHandler(threads, messages, audit, zlog),
		Messages:       handlers.NewMessageHandler(messages, zlog),
		Health:         handlers.NewHealthHandler(database, zlog),
	})
	if err != nil {
		zlog.Fatal("failed to build router", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcServer := grpcserver.NewServer(database, zlog)

	go func() {
		zlog.Info("http server listening", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server error", zap.Error(err))
		}
	}()

	go func() {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			zlog.Fatal("failed to listen for grpc", zap.Error(err))
		}
		zlog.Info("grpc server listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			zlog.Fatal("grpc server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		zlog.Error("tracing shutdown failed", zap.Error(err))
	}
}
