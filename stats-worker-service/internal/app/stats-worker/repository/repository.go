package repository

import (
	"context"
	"errors"
	"time"

	"storerating/pkg/rating"
	"storerating/stats-worker-service/internal/app/stats-worker/entity"
)

const serviceName = "stats-worker-service"

var ErrNotFound = errors.New("not found")

// StatsRepository - проекция оценок в Redis.
// Каждое изменение пишется одной транзакцией MULTI/EXEC.
type StatsRepository interface {
	// ApplyRating сохраняет активную оценку пользователя и новый агрегат магазина
	ApplyRating(ctx context.Context, summary rating.Summary, userID string, value int) error

	// ApplyRetraction удаляет оценку пользователя и сохраняет новый агрегат
	ApplyRetraction(ctx context.Context, summary rating.Summary, userID string) error

	// RegisterStore добавляет магазин в known_stores и пишет его агрегат
	RegisterStore(ctx context.Context, summary rating.Summary) error

	// LoadRatings читает все хеши store_ratings:* для восстановления агрегатора
	LoadRatings(ctx context.Context) ([]rating.Record, error)

	GetStoreStats(ctx context.Context, storeID string) (*entity.StoreStats, error)

	// SavePlatformStats пересчитывает число магазинов и пишет platform_stats
	SavePlatformStats(ctx context.Context, ratings int) (*entity.PlatformStats, error)

	GetPlatformStats(ctx context.Context) (*entity.PlatformStats, error)
}

// SnapshotRepository - история агрегатов в PostgreSQL
type SnapshotRepository interface {
	SaveBatch(ctx context.Context, snapshots []entity.RatingSnapshot) error

	// Latest возвращает последний снимок магазина
	Latest(ctx context.Context, storeID string) (*entity.RatingSnapshot, error)

	// Prune удаляет снимки старше before
	Prune(ctx context.Context, before time.Time) (int64, error)
}
