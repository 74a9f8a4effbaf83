package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storerating/pkg/metrics"
	"storerating/store-service/internal/app/store/entity"

	"github.com/redis/go-redis/v9"
)

const (
	serviceName   = "store-service"
	storesKey     = "stores:all"
	storesKeyPref = "stores"
)

// RedisStoreCache хранит список магазинов одним JSON значением
type RedisStoreCache struct {
	client *redis.Client
}

func NewRedisStoreCache(client *redis.Client) *RedisStoreCache {
	return &RedisStoreCache{client: client}
}

// SetStores кеширует список. Пустой список хранится как [], чтобы чтение отличало его от промаха.
func (r *RedisStoreCache) SetStores(ctx context.Context, stores []entity.Store, ttl time.Duration) error {
	if stores == nil {
		stores = []entity.Store{}
	}
	data, err := json.Marshal(stores)
	if err != nil {
		return fmt.Errorf("failed to marshal stores: %w", err)
	}

	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := r.client.Set(ctx, storesKey, data, ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set stores in cache: %w", err)
	}
	return nil
}

func (r *RedisStoreCache) GetStores(ctx context.Context) ([]entity.Store, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, storesKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(serviceName, storesKeyPref)
			return nil, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get stores from cache: %w", err)
	}

	stores := []entity.Store{}
	if err := json.Unmarshal(data, &stores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stores: %w", err)
	}
	if stores == nil {
		// значение null из старых записей
		stores = []entity.Store{}
	}

	metrics.RecordCacheHit(serviceName, storesKeyPref)
	return stores, nil
}

func (r *RedisStoreCache) DeleteStores(ctx context.Context) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := r.client.Del(ctx, storesKey).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete stores from cache: %w", err)
	}
	return nil
}
