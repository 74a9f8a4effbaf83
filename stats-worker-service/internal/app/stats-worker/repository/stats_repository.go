package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storerating/pkg/metrics"
	"storerating/pkg/rating"
	"storerating/stats-worker-service/internal/app/stats-worker/entity"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

type statsRepository struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &statsRepository{client: client}
}

func (r *statsRepository) ApplyRating(ctx context.Context, summary rating.Summary, userID string, value int) error {
	return r.tx(ctx, func(pipe redis.Pipeliner) {
		pipe.HSet(ctx, entity.StoreRatingsKey(summary.StoreID), userID, value)
		pipe.SAdd(ctx, entity.KnownStoresKey, summary.StoreID)
		writeSummary(ctx, pipe, summary)
	})
}

func (r *statsRepository) ApplyRetraction(ctx context.Context, summary rating.Summary, userID string) error {
	return r.tx(ctx, func(pipe redis.Pipeliner) {
		pipe.HDel(ctx, entity.StoreRatingsKey(summary.StoreID), userID)
		writeSummary(ctx, pipe, summary)
	})
}

func (r *statsRepository) RegisterStore(ctx context.Context, summary rating.Summary) error {
	return r.tx(ctx, func(pipe redis.Pipeliner) {
		pipe.SAdd(ctx, entity.KnownStoresKey, summary.StoreID)
		writeSummary(ctx, pipe, summary)
	})
}

func (r *statsRepository) LoadRatings(ctx context.Context) ([]rating.Record, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpScan)
	defer timer.ObserveDuration()

	var records []rating.Record
	iter := r.client.Scan(ctx, 0, entity.StoreRatingsPattern(), scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		values, err := r.client.HGetAll(ctx, key).Result()
		if err != nil {
			metrics.RecordRedisError(serviceName, metrics.RedisOpHGetAll)
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}

		storeID := entity.StoreIDFromRatingsKey(key)
		for userID, raw := range values {
			value, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid rating %q in %s for user %s", raw, key, userID)
			}
			records = append(records, rating.Record{StoreID: storeID, UserID: userID, Value: value})
		}
	}
	if err := iter.Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpScan)
		return nil, fmt.Errorf("failed to scan rating keys: %w", err)
	}
	return records, nil
}

func (r *statsRepository) GetStoreStats(ctx context.Context, storeID string) (*entity.StoreStats, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpHGetAll)
	defer timer.ObserveDuration()

	values, err := r.client.HGetAll(ctx, entity.StoreStatsKey(storeID)).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpHGetAll)
		return nil, fmt.Errorf("failed to read store stats: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrNotFound
	}

	stats := &entity.StoreStats{StoreID: storeID}
	if stats.Count, err = strconv.Atoi(values["count"]); err != nil {
		return nil, fmt.Errorf("invalid count in store stats: %w", err)
	}
	if stats.Sum, err = strconv.ParseFloat(values["sum"], 64); err != nil {
		return nil, fmt.Errorf("invalid sum in store stats: %w", err)
	}
	if raw, ok := values["mean"]; ok {
		mean, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid mean in store stats: %w", err)
		}
		stats.Mean = &mean
	}
	return stats, nil
}

func (r *statsRepository) SavePlatformStats(ctx context.Context, ratings int) (*entity.PlatformStats, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpHSet)
	defer timer.ObserveDuration()

	stores, err := r.client.SCard(ctx, entity.KnownStoresKey).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSMembers)
		return nil, fmt.Errorf("failed to count stores: %w", err)
	}

	stats := &entity.PlatformStats{Stores: stores, Ratings: ratings, UpdatedAt: time.Now().UTC()}
	err = r.client.HSet(ctx, entity.PlatformStatsKey,
		"stores", stats.Stores,
		"ratings", stats.Ratings,
		"updated_at", stats.UpdatedAt.Format(time.RFC3339),
	).Err()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpHSet)
		return nil, fmt.Errorf("failed to save platform stats: %w", err)
	}
	return stats, nil
}

func (r *statsRepository) GetPlatformStats(ctx context.Context) (*entity.PlatformStats, error) {
	values, err := r.client.HGetAll(ctx, entity.PlatformStatsKey).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpHGetAll)
		return nil, fmt.Errorf("failed to read platform stats: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrNotFound
	}

	stats := &entity.PlatformStats{}
	if stats.Stores, err = strconv.ParseInt(values["stores"], 10, 64); err != nil {
		return nil, fmt.Errorf("invalid stores in platform stats: %w", err)
	}
	if stats.Ratings, err = strconv.Atoi(values["ratings"]); err != nil {
		return nil, fmt.Errorf("invalid ratings in platform stats: %w", err)
	}
	if stats.UpdatedAt, err = time.Parse(time.RFC3339, values["updated_at"]); err != nil {
		return nil, fmt.Errorf("invalid updated_at in platform stats: %w", err)
	}
	return stats, nil
}

func (r *statsRepository) tx(ctx context.Context, fn func(pipe redis.Pipeliner)) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpPipeline)
	defer timer.ObserveDuration()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fn(pipe)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		metrics.RecordRedisError(serviceName, metrics.RedisOpPipeline)
		return fmt.Errorf("redis transaction failed: %w", err)
	}
	return nil
}

// writeSummary пишет count и sum. Поле mean удаляется, пока оценок нет.
func writeSummary(ctx context.Context, pipe redis.Pipeliner, summary rating.Summary) {
	key := entity.StoreStatsKey(summary.StoreID)
	pipe.HSet(ctx, key,
		"count", summary.Count,
		"sum", strconv.FormatFloat(summary.Sum, 'f', -1, 64),
	)
	if mean, ok := summary.Mean(); ok {
		pipe.HSet(ctx, key, "mean", strconv.FormatFloat(mean, 'f', -1, 64))
	} else {
		pipe.HDel(ctx, key, "mean")
	}
}
