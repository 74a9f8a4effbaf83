package util

import (
	"context"
	"time"

	"storerating/store-service/internal/app/store/entity"
)

// StoreCache - кеш полного списка магазинов в Redis
type StoreCache interface {
	SetStores(ctx context.Context, stores []entity.Store, ttl time.Duration) error
	// GetStores возвращает nil, nil при промахе
	GetStores(ctx context.Context) ([]entity.Store, error)
	DeleteStores(ctx context.Context) error
}

// EventPublisher отправляет события в Kafka
type EventPublisher interface {
	Publish(ctx context.Context, event entity.Event) error
	Close() error
}
