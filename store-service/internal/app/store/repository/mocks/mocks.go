package mocks

import (
	"context"
	"time"

	"storerating/pkg/rating"
	"storerating/store-service/internal/app/store/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStoreRepository мок для StoreRepository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) Create(ctx context.Context, store *entity.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

func (m *MockStoreRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Store), args.Error(1)
}

func (m *MockStoreRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.Store, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Store), args.Error(1)
}

func (m *MockStoreRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Store, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Store), args.Error(1)
}

func (m *MockStoreRepository) List(ctx context.Context, search string) ([]entity.Store, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Store), args.Error(1)
}

func (m *MockStoreRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockRatingRepository мок для RatingRepository
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRatingRepository) Upsert(ctx context.Context, record *entity.RatingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRatingRepository) Delete(ctx context.Context, storeID, userID string) error {
	args := m.Called(ctx, storeID, userID)
	return args.Error(0)
}

func (m *MockRatingRepository) ListByStore(ctx context.Context, storeID string) ([]entity.RatingRecord, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.RatingRecord), args.Error(1)
}

func (m *MockRatingRepository) ListByUser(ctx context.Context, userID string) ([]entity.RatingRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.RatingRecord), args.Error(1)
}

func (m *MockRatingRepository) All(ctx context.Context) ([]rating.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rating.Record), args.Error(1)
}

// MockStoreCache мок для util.StoreCache
type MockStoreCache struct {
	mock.Mock
}

func (m *MockStoreCache) SetStores(ctx context.Context, stores []entity.Store, ttl time.Duration) error {
	args := m.Called(ctx, stores, ttl)
	return args.Error(0)
}

func (m *MockStoreCache) GetStores(ctx context.Context) ([]entity.Store, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Store), args.Error(1)
}

func (m *MockStoreCache) DeleteStores(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEventPublisher мок для util.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event entity.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
