package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"ray_analysis/internal/adapters"
	"ray_analysis/internal/bootstrap"
	analysisDelivery "ray_analysis/internal/delivery/analysis"
	domain "ray_analysis/internal/domain/analysis"
	repo "ray_analysis/internal/repository"
	analysisUC "ray_analysis/internal/usecase/analysis"
)

// App wires the engine, use case and dispatcher shared by every transport.
type App struct {
	Config     *bootstrap.Config
	Log        *zap.SugaredLogger
	Dispatcher *analysisDelivery.Dispatcher

	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func New(ctx context.Context, cfg *bootstrap.Config, log *zap.SugaredLogger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	archive, err := a.initArchive(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	engine := repo.NewUctEngine(repo.EngineConfig{
		Seed:            cfg.SearchSeed,
		ExpandThreshold: cfg.ExpandThreshold,
		EvalThreshold:   cfg.EvalThreshold,
		MaxNodes:        cfg.MaxNodes,
	}, repo.HeuristicEvaluator{}, log.Named("engine"))

	uc := analysisUC.NewAnalysisUseCase(engine, archive, Settings(cfg), log.Named("analysis"))
	a.Dispatcher = analysisDelivery.NewDispatcher(uc, cfg.WarningsEnabled, log.Named("dispatcher"))
	return a, nil
}

// Settings derives the use case settings from the configuration.
func Settings(cfg *bootstrap.Config) analysisUC.Settings {
	budget := domain.Budget{Mode: domain.ConstPlayoutMode, Playouts: cfg.Playouts}
	if cfg.ConstTime > 0 {
		budget.Mode = domain.ConstTimeMode
		budget.Seconds = cfg.ConstTime
	}
	return analysisUC.Settings{
		BoardSize:  cfg.BoardSize,
		Komi:       cfg.Komi,
		ValueScale: cfg.ValueScale,
		Budget:     budget,
	}
}

// initArchive connects the configured stores. With neither configured the
// archive is disabled.
func (a *App) initArchive(ctx context.Context) (analysisUC.ArchiveStore, error) {
	var redisClient *redis.Client
	var mongoDB *mongo.Database

	if a.Config.RedisUrl != "" {
		a.redisAdapter = adapters.NewAdapterRedis(a.Config, a.Log)
		if err := a.redisAdapter.Init(ctx); err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		redisClient = a.redisAdapter.GetClient()
	}
	if a.Config.MongoUri != "" {
		a.mongoAdapter = adapters.NewAdapterMongo(a.Config, a.Log)
		if err := a.mongoAdapter.Init(ctx); err != nil {
			return nil, fmt.Errorf("init mongo: %w", err)
		}
		mongoDB = a.mongoAdapter.Database
	}

	if redisClient == nil && mongoDB == nil {
		return nil, nil
	}
	ttl := time.Duration(a.Config.ArchiveTTLHours) * time.Hour
	return repo.NewArchiveRepository(a.Log.Named("archive"), redisClient, mongoDB, ttl), nil
}

func (a *App) Close(ctx context.Context) {
	if a.redisAdapter != nil {
		if err := a.redisAdapter.Close(); err != nil {
			a.Log.Warnw("failed to close redis", "error", err)
		}
	}
	if a.mongoAdapter != nil {
		if err := a.mongoAdapter.Close(ctx); err != nil {
			a.Log.Warnw("failed to close mongo", "error", err)
		}
	}
}

func NewRouter(h *analysisDelivery.AnalysisHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Post("/analyse", h.HandleAnalyse)
	r.Get("/ws", h.HandleWS)
	return r
}
