package genserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// NewGRPCServer returns a gRPC server carrying the generation service and
// the standard health service, with every call logged.
//
// Postcondition: The health server reports SERVING for ServiceName and for
// the server as a whole.
func NewGRPCServer(svc GeneratorServer, logger *zap.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts, grpc.ChainUnaryInterceptor(LoggingInterceptor(logger)))
	srv := grpc.NewServer(opts...)
	RegisterGeneratorServer(srv, svc)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

// LoggingInterceptor logs each unary call with its status code and latency.
// Client faults log at info, server faults at warn.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Stringer("code", code),
			zap.Duration("elapsed", time.Since(start)),
		}
		switch code {
		case codes.OK:
			logger.Debug("rpc handled", fields...)
		case codes.InvalidArgument, codes.FailedPrecondition, codes.Canceled, codes.DeadlineExceeded:
			logger.Info("rpc rejected", append(fields, zap.Error(err))...)
		default:
			logger.Warn("rpc failed", append(fields, zap.Error(err))...)
		}
		return resp, err
	}
}
