package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	domain "ray_analysis/internal/domain/analysis"
)

const analysesCollection = "analyses"

// ArchiveRepository пишет SGF в Redis (с TTL) и документ анализа в Mongo.
// Любое из хранилищ может отсутствовать.
type ArchiveRepository struct {
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
	ttl   time.Duration
}

func NewArchiveRepository(log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database, ttl time.Duration) *ArchiveRepository {
	return &ArchiveRepository{
		log:   log,
		redis: redis,
		mongo: mongo,
		ttl:   ttl,
	}
}

func SGFKey(id string) string {
	return "analysis:" + id + ":sgf"
}

func (a *ArchiveRepository) SaveSGF(ctx context.Context, id string, sgfText string) error {
	if a.redis == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.redis.Set(ctx, SGFKey(id), sgfText, a.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", SGFKey(id), err)
	}
	return nil
}

func (a *ArchiveRepository) SaveRecord(ctx context.Context, rec domain.Record) error {
	if a.mongo == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := a.mongo.Collection(analysesCollection)
	if _, err := collection.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert analysis %s: %w", rec.ID, err)
	}
	a.log.Debugw("analysis archived", "id", rec.ID, "moves", len(rec.Moves))
	return nil
}
