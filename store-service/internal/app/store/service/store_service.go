package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storerating/pkg/logger"
	"storerating/pkg/metrics"
	"storerating/pkg/rating"
	"storerating/pkg/validation"
	"storerating/store-service/internal/app/store/entity"
	"storerating/store-service/internal/app/store/repository"
	"storerating/store-service/internal/app/store/util"

	"github.com/google/uuid"
)

// StoreService - каталог магазинов. Средние берутся из агрегатора, список кешируется в Redis.
type StoreService struct {
	stores     repository.StoreRepository
	cache      util.StoreCache
	aggregator *rating.Aggregator
	publisher  util.EventPublisher
	cacheTTL   time.Duration
}

func NewStoreService(
	stores repository.StoreRepository,
	cache util.StoreCache,
	aggregator *rating.Aggregator,
	publisher util.EventPublisher,
	cacheTTL time.Duration,
) *StoreService {
	return &StoreService{
		stores:     stores,
		cache:      cache,
		aggregator: aggregator,
		publisher:  publisher,
		cacheTTL:   cacheTTL,
	}
}

// CreateStore проверяет форму, сохраняет магазин и сбрасывает кеш списка
func (s *StoreService) CreateStore(ctx context.Context, req *entity.CreateStoreRequest) (*entity.Store, error) {
	form := req.Form()
	if errs := validation.ValidateForm(form); !validation.Submittable(errs) {
		metrics.RecordValidationFailures("create_store", errs)
		return nil, fmt.Errorf("%w: %w", ErrValidation, errs)
	}

	store := &entity.Store{
		ID:        uuid.New(),
		Name:      form.Name,
		Email:     strings.ToLower(form.Email),
		Address:   form.Address,
		OwnerID:   req.OwnerID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.stores.Create(ctx, store); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrStoreExists
		case errors.Is(err, repository.ErrOwnerHasStore):
			return nil, ErrOwnerHasStore
		}
		return nil, err
	}

	if err := s.cache.DeleteStores(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate stores cache")
	}

	metrics.StoresCreated.Inc()

	event := entity.Event{
		EventType: entity.EventStoreCreated,
		StoreID:   store.ID.String(),
		StoreName: store.Name,
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error().Err(err).Str("store_id", event.StoreID).Msg("Failed to publish store event")
	}

	logger.Info().Str("store_id", event.StoreID).Str("name", store.Name).Msg("Store created")
	return store, nil
}

// GetStore возвращает магазин со средней оценкой и оценкой viewer
func (s *StoreService) GetStore(ctx context.Context, id uuid.UUID, viewer uuid.UUID) (*entity.StoreView, error) {
	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	view := s.view(*store, viewer)
	return &view, nil
}

// ListStores возвращает магазины по алфавиту. Без поиска список берется из кеша.
func (s *StoreService) ListStores(ctx context.Context, search string, viewer uuid.UUID) ([]entity.StoreView, error) {
	stores, err := s.loadStores(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}

	views := make([]entity.StoreView, 0, len(stores))
	for _, st := range stores {
		views = append(views, s.view(st, viewer))
	}
	return views, nil
}

// Stats - число магазинов и активных оценок
func (s *StoreService) Stats(ctx context.Context) (*entity.PlatformStats, error) {
	total, err := s.stores.Count(ctx)
	if err != nil {
		return nil, err
	}

	_, ratings := s.aggregator.Totals()
	return &entity.PlatformStats{TotalStores: total, TotalRatings: ratings}, nil
}

func (s *StoreService) loadStores(ctx context.Context, search string) ([]entity.Store, error) {
	if search != "" {
		return s.stores.List(ctx, search)
	}

	cached, err := s.cache.GetStores(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Stores cache unavailable, reading from database")
	}
	if cached != nil {
		return cached, nil
	}

	stores, err := s.stores.List(ctx, "")
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetStores(ctx, stores, s.cacheTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache stores")
	}
	return stores, nil
}

func (s *StoreService) view(store entity.Store, viewer uuid.UUID) entity.StoreView {
	storeKey := store.ID.String()
	summary := s.aggregator.Summary(storeKey)

	view := entity.StoreView{
		Store:         store,
		AverageRating: summary.RoundedMean(),
		AverageText:   summary.Display(),
		TotalRatings:  summary.Count,
	}
	if viewer != uuid.Nil {
		if value, ok := s.aggregator.Active(storeKey, viewer.String()); ok {
			view.MyRating = &value
		}
	}
	return view
}
