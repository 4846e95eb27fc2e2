package main

import (
	"context"
	"log"
	"net"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"ray_analysis/internal/app"
	"ray_analysis/internal/bootstrap"
	analysisRPC "ray_analysis/microservices/proto"
	"ray_analysis/microservices/usecase"
)

func main() {
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		log.Fatalf("failed to setup configuration: %v", err)
	}
	logger, err := bootstrap.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close(context.Background())

	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatal("cant listen port", zap.Error(err))
	}

	server := grpc.NewServer(grpc.UnaryInterceptor(usecase.LoggingInterceptor(logger)))
	analysisRPC.RegisterAnalysisServiceServer(server, usecase.NewAnalysisUseCase(application.Dispatcher))

	go func() {
		<-ctx.Done()
		logger.Info("Received shutdown signal")
		server.GracefulStop()
	}()

	logger.Infof("starting server at %s", cfg.GrpcPort)
	if err := server.Serve(lis); err != nil {
		logger.Fatal("grpc server stopped", zap.Error(err))
	}
}
