package repository

import (
	"context"
	"errors"

	"storerating/pkg/rating"
	"storerating/store-service/internal/app/store/entity"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("store with this email already exists")
	ErrOwnerHasStore  = errors.New("owner already has a store")
	ErrRatingNotFound = errors.New("rating not found")
)

// StoreRepository - каталог магазинов в PostgreSQL
type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Store, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.Store, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Store, error)
	// List ищет по подстроке в имени, email и адресе без учета регистра
	List(ctx context.Context, search string) ([]entity.Store, error)
	Count(ctx context.Context) (int64, error)
}

// RatingRepository - активные оценки в MongoDB
type RatingRepository interface {
	EnsureIndexes(ctx context.Context) error
	// Upsert заменяет оценку пользователя или создает новую
	Upsert(ctx context.Context, record *entity.RatingRecord) error
	Delete(ctx context.Context, storeID, userID string) error
	ListByStore(ctx context.Context, storeID string) ([]entity.RatingRecord, error)
	ListByUser(ctx context.Context, userID string) ([]entity.RatingRecord, error)
	// All возвращает все активные оценки для восстановления агрегатора
	All(ctx context.Context) ([]rating.Record, error)
}
