package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func LoggingInterceptor(log *zap.SugaredLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()
		resp, err := handler(ctx, req)
		log.Infow("rpc",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"elapsed", time.Since(started).String(),
		)
		return resp, err
	}
}
