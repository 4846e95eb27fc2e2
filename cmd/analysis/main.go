package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ray_analysis/internal/app"
	"ray_analysis/internal/bootstrap"
)

// Протокол анализа через stdin/stdout: одна JSON-строка на запрос.
func main() {
	cfgPath := flag.String("config", ".env", "path to the env style config file")
	flag.Parse()

	cfg, err := bootstrap.Setup(*cfgPath)
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
		logger.Errorw("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer application.Close(context.Background())

	logger.Infow("analysis loop started", "board_size", cfg.BoardSize, "warnings", cfg.WarningsEnabled)
	if err := application.Dispatcher.Serve(ctx, os.Stdin, os.Stdout, cfg.MaxLineBytes); err != nil {
		logger.Errorw("analysis loop stopped", "error", err)
		os.Exit(1)
	}
}
