package mocks

import (
	"context"
	"time"

	"storerating/pkg/rating"
	"storerating/stats-worker-service/internal/app/stats-worker/entity"

	"github.com/stretchr/testify/mock"
)

// MockStatsRepository мок для StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) ApplyRating(ctx context.Context, summary rating.Summary, userID string, value int) error {
	args := m.Called(ctx, summary, userID, value)
	return args.Error(0)
}

func (m *MockStatsRepository) ApplyRetraction(ctx context.Context, summary rating.Summary, userID string) error {
	args := m.Called(ctx, summary, userID)
	return args.Error(0)
}

func (m *MockStatsRepository) RegisterStore(ctx context.Context, summary rating.Summary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockStatsRepository) LoadRatings(ctx context.Context) ([]rating.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rating.Record), args.Error(1)
}

func (m *MockStatsRepository) GetStoreStats(ctx context.Context, storeID string) (*entity.StoreStats, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.StoreStats), args.Error(1)
}

func (m *MockStatsRepository) SavePlatformStats(ctx context.Context, ratings int) (*entity.PlatformStats, error) {
	args := m.Called(ctx, ratings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PlatformStats), args.Error(1)
}

func (m *MockStatsRepository) GetPlatformStats(ctx context.Context) (*entity.PlatformStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PlatformStats), args.Error(1)
}

// MockSnapshotRepository мок для SnapshotRepository
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) SaveBatch(ctx context.Context, snapshots []entity.RatingSnapshot) error {
	args := m.Called(ctx, snapshots)
	return args.Error(0)
}

func (m *MockSnapshotRepository) Latest(ctx context.Context, storeID string) (*entity.RatingSnapshot, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RatingSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
