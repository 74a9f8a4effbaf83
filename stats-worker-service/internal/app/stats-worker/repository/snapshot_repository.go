package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storerating/pkg/metrics"
	"storerating/stats-worker-service/internal/app/stats-worker/entity"

	"gorm.io/gorm"
)

const (
	snapshotsTable     = "rating_snapshots"
	snapshotsBatchSize = 100
)

// snapshotRepository реализует SnapshotRepository через GORM
type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// SaveBatch вставляет снимки пачками в одной транзакции
func (r *snapshotRepository) SaveBatch(ctx context.Context, snapshots []entity.RatingSnapshot) (err error) {
	if len(snapshots) == 0 {
		return nil
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, snapshotsTable)
	defer func() { timer.ObserveDuration(err) }()

	if err := r.db.WithContext(ctx).CreateInBatches(snapshots, snapshotsBatchSize).Error; err != nil {
		return fmt.Errorf("failed to save snapshots: %w", err)
	}
	return nil
}

func (r *snapshotRepository) Latest(ctx context.Context, storeID string) (snapshot *entity.RatingSnapshot, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, snapshotsTable)
	defer func() { timer.ObserveDuration(err) }()

	var s entity.RatingSnapshot
	result := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("taken_at DESC").
		Take(&s)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", result.Error)
	}
	return &s, nil
}

func (r *snapshotRepository) Prune(ctx context.Context, before time.Time) (n int64, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, snapshotsTable)
	defer func() { timer.ObserveDuration(err) }()

	result := r.db.WithContext(ctx).
		Where("taken_at < ?", before).
		Delete(&entity.RatingSnapshot{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", result.Error)
	}
	return result.RowsAffected, nil
}
