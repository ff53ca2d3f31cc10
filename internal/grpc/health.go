package grpc

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"chat-api/internal/observability"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer answers grpc.health.v1 checks from database reachability.
type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	db     Pinger
	logger *zap.Logger
}

func NewHealthServer(db Pinger, logger *zap.Logger) *HealthServer {
	return &HealthServer{db: db, logger: logger.Named("grpc_health")}
}

func (s *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("health check failed", zap.String("service", req.GetService()), zap.Error(err))
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	return &grpc_health_v1.HealthCheckResponse{Status: status}, nil
}

// NewServer builds the gRPC server with tracing, metrics and the health service.
func NewServer(db Pinger, logger *zap.Logger) *gogrpc.Server {
	server := gogrpc.NewServer(
		gogrpc.StatsHandler(otelgrpc.NewServerHandler()),
		gogrpc.ChainUnaryInterceptor(observability.GRPCServerMetricsUnaryInterceptor()),
	)
	grpc_health_v1.RegisterHealthServer(server, NewHealthServer(db, logger))
	return server
}
