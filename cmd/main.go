package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"ray_analysis/internal/app"
	"ray_analysis/internal/bootstrap"
	analysisDelivery "ray_analysis/internal/delivery/analysis"
	analysisRPC "ray_analysis/microservices/proto"
	analysisRepo "ray_analysis/microservices/repository"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var requests analysisDelivery.RequestHandler
	if cfg.GrpcAddr != "" {
		// шлюз: анализ выполняет сервис из microservices/cmd/analysis
		conn, err := grpc.NewClient(cfg.GrpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			logger.Fatal("Failed to dial grpc", zap.Error(err))
		}
		defer conn.Close()
		timeout := time.Duration(cfg.RPCTimeoutSecs) * time.Second
		requests = analysisRepo.NewAnalysisRepository(analysisRPC.NewAnalysisServiceClient(conn), logger.Named("remote"), timeout)
	} else {
		application, err := app.New(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize application", zap.Error(err))
		}
		defer application.Close(context.Background())
		requests = application.Dispatcher
	}

	handler := analysisDelivery.NewAnalysisHandler(*cfg, logger, requests)
	server := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: app.NewRouter(handler),
	}

	go handleShutdown(cancel, server, logger)

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
	<-ctx.Done()
}

func handleShutdown(cancelFunc context.CancelFunc, server *http.Server, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warnw("server shutdown", "error", err)
	}
	cancelFunc()
}
