package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storerating/pkg/logger"
	"storerating/pkg/metrics"
	"storerating/pkg/rating"
	"storerating/store-service/internal/app/store/entity"
	"storerating/store-service/internal/app/store/repository"
	"storerating/store-service/internal/app/store/util"

	"github.com/google/uuid"
)

// RatingService связывает хранилище оценок с агрегатором.
// Запись в MongoDB и изменение агрегатора выполняются под одним мьютексом,
// поэтому порядок изменений в хранилище и в памяти совпадает.
type RatingService struct {
	mu         sync.Mutex
	stores     repository.StoreRepository
	ratings    repository.RatingRepository
	aggregator *rating.Aggregator
	publisher  util.EventPublisher
}

func NewRatingService(
	stores repository.StoreRepository,
	ratings repository.RatingRepository,
	aggregator *rating.Aggregator,
	publisher util.EventPublisher,
) *RatingService {
	return &RatingService{
		stores:     stores,
		ratings:    ratings,
		aggregator: aggregator,
		publisher:  publisher,
	}
}

// Restore загружает сохраненные оценки в агрегатор при старте
func (s *RatingService) Restore(ctx context.Context) error {
	records, err := s.ratings.All(ctx)
	if err != nil {
		return err
	}
	if err := s.aggregator.Restore(records); err != nil {
		return fmt.Errorf("failed to restore aggregator: %w", err)
	}

	stores, total := s.aggregator.Totals()
	logger.Info().Int("stores", stores).Int("ratings", total).Msg("Rating aggregator restored")
	return nil
}

// Rate сохраняет оценку пользователя. Повторная оценка заменяет прежнюю.
func (s *RatingService) Rate(ctx context.Context, principal entity.Principal, storeID uuid.UUID, value int) (*entity.RatingSummary, error) {
	if err := rating.ValidateValue(value); err != nil {
		metrics.RecordRatingRejected("invalid_rating")
		return nil, err
	}

	if _, err := s.getStore(ctx, storeID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := &entity.RatingRecord{
		StoreID:   storeID.String(),
		UserID:    principal.UserID.String(),
		UserName:  principal.Name,
		UserEmail: principal.Email,
		Rating:    value,
	}
	if err := s.ratings.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	update, err := s.aggregator.Rate(record.StoreID, record.UserID, value)
	if err != nil {
		return nil, err
	}
	metrics.RecordRatingSubmitted(value, update.Replaced)

	s.publish(ctx, entity.Event{
		EventType:      entity.EventRatingSubmitted,
		StoreID:        record.StoreID,
		UserID:         record.UserID,
		Rating:         value,
		PreviousRating: update.Previous,
		RatingCount:    update.Summary.Count,
		RatingSum:      update.Summary.Sum,
	})

	logger.Info().
		Str("store_id", record.StoreID).
		Str("user_id", record.UserID).
		Int("rating", value).
		Bool("replaced", update.Replaced).
		Msg("Rating submitted")

	summary := entity.NewRatingSummary(update.Summary, &value)
	return &summary, nil
}

// Retract снимает оценку пользователя. rating.ErrNotFound, если оценки нет.
func (s *RatingService) Retract(ctx context.Context, principal entity.Principal, storeID uuid.UUID) (*entity.RatingSummary, error) {
	storeKey, userKey := storeID.String(), principal.UserID.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.aggregator.Active(storeKey, userKey); !ok {
		metrics.RecordRatingRejected("not_found")
		return nil, &rating.AggregationError{Kind: rating.NotFound, StoreID: storeKey, UserID: userKey}
	}

	if err := s.ratings.Delete(ctx, storeKey, userKey); err != nil && !errors.Is(err, repository.ErrRatingNotFound) {
		return nil, fmt.Errorf("failed to delete rating: %w", err)
	}

	update, err := s.aggregator.Remove(storeKey, userKey)
	if err != nil {
		return nil, err
	}
	metrics.RecordRatingRetracted()

	s.publish(ctx, entity.Event{
		EventType:      entity.EventRatingRetracted,
		StoreID:        storeKey,
		UserID:         userKey,
		PreviousRating: update.Previous,
		RatingCount:    update.Summary.Count,
		RatingSum:      update.Summary.Sum,
	})

	logger.Info().Str("store_id", storeKey).Str("user_id", userKey).Msg("Rating retracted")

	summary := entity.NewRatingSummary(update.Summary, nil)
	return &summary, nil
}

// MyRatings возвращает оценки пользователя с названиями магазинов
func (s *RatingService) MyRatings(ctx context.Context, userID uuid.UUID) ([]entity.MyRating, error) {
	records, err := s.ratings.ListByUser(ctx, userID.String())
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		if id, err := uuid.Parse(r.StoreID); err == nil {
			ids = append(ids, id)
		}
	}

	stores, err := s.stores.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entity.Store, len(stores))
	for _, st := range stores {
		byID[st.ID.String()] = st
	}

	out := make([]entity.MyRating, 0, len(records))
	for _, r := range records {
		st, ok := byID[r.StoreID]
		if !ok {
			continue
		}
		out = append(out, entity.MyRating{
			StoreID:      r.StoreID,
			StoreName:    st.Name,
			StoreAddress: st.Address,
			Rating:       r.Rating,
			UpdatedAt:    r.UpdatedAt,
		})
	}
	return out, nil
}

// OwnerDashboard собирает среднюю оценку, распределение и список оценок магазина владельца
func (s *RatingService) OwnerDashboard(ctx context.Context, ownerID uuid.UUID) (*entity.OwnerDashboard, error) {
	store, err := s.stores.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoStoreOwned
		}
		return nil, err
	}

	storeKey := store.ID.String()
	records, err := s.ratings.ListByStore(ctx, storeKey)
	if err != nil {
		return nil, err
	}

	summary := s.aggregator.Summary(storeKey)
	return &entity.OwnerDashboard{
		Store:         *store,
		AverageRating: summary.RoundedMean(),
		Display:       summary.Display(),
		TotalRatings:  summary.Count,
		Distribution:  s.aggregator.Distribution(storeKey).Descending(),
		Ratings:       records,
	}, nil
}

func (s *RatingService) getStore(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

// publish отправляет событие. Ошибка Kafka не отменяет уже сохраненную оценку.
func (s *RatingService) publish(ctx context.Context, event entity.Event) {
	event.Timestamp = time.Now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error().
			Err(err).
			Str("event_type", event.EventType).
			Str("store_id", event.StoreID).
			Msg("Failed to publish rating event")
	}
}
