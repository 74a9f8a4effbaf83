package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storerating/pkg/metrics"
	"storerating/store-service/internal/app/store/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	serviceName = "store-service"
	storesTable = "stores"

	uniqueViolation = "23505"
	ownerIndex      = "idx_stores_owner"
)

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository создает репозиторий магазинов на GORM
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(ctx context.Context, store *entity.Store) (err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, storesTable)
	defer func() { timer.ObserveDuration(err) }()

	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == ownerIndex {
				return ErrOwnerHasStore
			}
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create store: %w", err)
	}
	return nil
}

func (r *storeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *storeRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.Store, error) {
	return r.first(ctx, "owner_id = ?", ownerID)
}

func (r *storeRepository) first(ctx context.Context, query string, arg interface{}) (store *entity.Store, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, storesTable)
	defer func() {
		if errors.Is(err, ErrNotFound) {
			timer.ObserveDuration(nil)
			return
		}
		timer.ObserveDuration(err)
	}()

	var s entity.Store
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return &s, nil
}

func (r *storeRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (stores []entity.Store, err error) {
	if len(ids) == 0 {
		return []entity.Store{}, nil
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, storesTable)
	defer func() { timer.ObserveDuration(err) }()

	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to get stores: %w", err)
	}
	return stores, nil
}

func (r *storeRepository) List(ctx context.Context, search string) (stores []entity.Store, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, storesTable)
	defer func() { timer.ObserveDuration(err) }()

	query := r.db.WithContext(ctx)
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR address ILIKE ?", pattern, pattern, pattern)
	}

	if err := query.Order("name ASC").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

func (r *storeRepository) Count(ctx context.Context) (n int64, err error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, storesTable)
	defer func() { timer.ObserveDuration(err) }()

	if err := r.db.WithContext(ctx).Model(&entity.Store{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count stores: %w", err)
	}
	return n, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
