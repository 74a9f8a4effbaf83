package service

import (
	"context"
	"time"

	"storerating/stats-worker-service/internal/app/stats-worker/entity"
)

// ProjectionServiceInterface применяет события оценок к проекции
type ProjectionServiceInterface interface {
	// Handle возвращает ошибку только при сбое хранилища. Такое событие нужно прочитать повторно.
	Handle(ctx context.Context, event *entity.Event) error
}

// SnapshotServiceInterface - периодическая задача снимков статистики
type SnapshotServiceInterface interface {
	Snapshot(ctx context.Context) error
	LastSnapshot() time.Time
}
