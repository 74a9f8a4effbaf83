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
	"storerating/stats-worker-service/internal/app/stats-worker/entity"
	"storerating/stats-worker-service/internal/app/stats-worker/repository"

	"github.com/google/uuid"
)

// ProjectionService ведет собственный агрегатор по событиям Kafka и
// зеркалирует его в Redis. Если запись в Redis не удалась, изменение
// агрегатора откатывается, чтобы повторная доставка события применилась заново.
type ProjectionService struct {
	mu         sync.Mutex
	aggregator *rating.Aggregator
	stats      repository.StatsRepository
	snapshots  repository.SnapshotRepository
	retention  time.Duration

	lastMu       sync.RWMutex
	lastSnapshot time.Time
}

func NewProjectionService(
	aggregator *rating.Aggregator,
	stats repository.StatsRepository,
	snapshots repository.SnapshotRepository,
	retention time.Duration,
) *ProjectionService {
	return &ProjectionService{
		aggregator: aggregator,
		stats:      stats,
		snapshots:  snapshots,
		retention:  retention,
	}
}

// Restore загружает проекцию из Redis в агрегатор
func (s *ProjectionService) Restore(ctx context.Context) error {
	records, err := s.stats.LoadRatings(ctx)
	if err != nil {
		return err
	}
	if err := s.aggregator.Restore(records); err != nil {
		return fmt.Errorf("failed to restore aggregator: %w", err)
	}

	stores, ratings := s.aggregator.Totals()
	logger.Info().Int("stores", stores).Int("ratings", ratings).Msg("Projection restored from Redis")
	return nil
}

func (s *ProjectionService) Handle(ctx context.Context, event *entity.Event) error {
	if event.StoreID == "" {
		s.skip(event, "missing store_id")
		return nil
	}
	if event.UserID == "" && (event.EventType == entity.EventRatingSubmitted || event.EventType == entity.EventRatingRetracted) {
		s.skip(event, "missing user_id")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch event.EventType {
	case entity.EventRatingSubmitted:
		err = s.applySubmitted(ctx, event)
	case entity.EventRatingRetracted:
		err = s.applyRetracted(ctx, event)
	case entity.EventStoreCreated:
		err = s.stats.RegisterStore(ctx, s.aggregator.Summary(event.StoreID))
		if err == nil {
			metrics.WorkerRatingEventsProcessed.WithLabelValues("success").Inc()
		}
	default:
		s.skip(event, "unknown event type")
		return nil
	}
	if err != nil {
		metrics.WorkerRatingEventsProcessed.WithLabelValues("failed").Inc()
		return err
	}

	_, ratings := s.aggregator.Totals()
	if _, err := s.stats.SavePlatformStats(ctx, ratings); err != nil {
		// счетчики платформы пересчитываются при следующем событии или снимке
		logger.Warn().Err(err).Msg("Failed to refresh platform stats")
	}
	return nil
}

func (s *ProjectionService) applySubmitted(ctx context.Context, event *entity.Event) error {
	if current, ok := s.aggregator.Active(event.StoreID, event.UserID); ok && current == event.Rating {
		s.skip(event, "duplicate")
		return nil
	}

	update, err := s.aggregator.Rate(event.StoreID, event.UserID, event.Rating)
	if err != nil {
		s.skip(event, err.Error())
		return nil
	}

	if err := s.stats.ApplyRating(ctx, update.Summary, event.UserID, event.Rating); err != nil {
		if update.Replaced {
			_, _ = s.aggregator.Rate(event.StoreID, event.UserID, update.Previous)
		} else {
			_, _ = s.aggregator.Remove(event.StoreID, event.UserID)
		}
		return err
	}

	s.checkDrift(event, update.Summary)
	metrics.WorkerRatingEventsProcessed.WithLabelValues("success").Inc()
	return nil
}

func (s *ProjectionService) applyRetracted(ctx context.Context, event *entity.Event) error {
	update, err := s.aggregator.Remove(event.StoreID, event.UserID)
	if err != nil {
		if errors.Is(err, rating.ErrNotFound) {
			s.skip(event, "no active rating")
			return nil
		}
		return err
	}

	if err := s.stats.ApplyRetraction(ctx, update.Summary, event.UserID); err != nil {
		_, _ = s.aggregator.Rate(event.StoreID, event.UserID, update.Previous)
		return err
	}

	s.checkDrift(event, update.Summary)
	metrics.WorkerRatingEventsProcessed.WithLabelValues("success").Inc()
	return nil
}

// checkDrift сравнивает агрегат воркера с тем, что прислал store-service
func (s *ProjectionService) checkDrift(event *entity.Event, summary rating.Summary) {
	if event.RatingCount == summary.Count && event.RatingSum == summary.Sum {
		return
	}
	logger.Warn().
		Str("store_id", event.StoreID).
		Int("event_count", event.RatingCount).
		Int("projection_count", summary.Count).
		Float64("event_sum", event.RatingSum).
		Float64("projection_sum", summary.Sum).
		Msg("Projection differs from store-service aggregate")
}

func (s *ProjectionService) skip(event *entity.Event, reason string) {
	metrics.WorkerRatingEventsProcessed.WithLabelValues("skipped").Inc()
	logger.Warn().
		Str("event_type", event.EventType).
		Str("store_id", event.StoreID).
		Str("user_id", event.UserID).
		Str("reason", reason).
		Msg("Rating event skipped")
}

// Snapshot сохраняет агрегаты всех магазинов в rating_snapshots,
// обновляет platform_stats и удаляет снимки старше retention
func (s *ProjectionService) Snapshot(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.WorkerSnapshotDuration.Observe(time.Since(start).Seconds()) }()

	takenAt := start.UTC()
	summaries := s.aggregator.Snapshot()
	snapshots := make([]entity.RatingSnapshot, 0, len(summaries))
	for _, summary := range summaries {
		snap := entity.RatingSnapshot{
			ID:      uuid.New(),
			StoreID: summary.StoreID,
			Count:   summary.Count,
			Sum:     summary.Sum,
			TakenAt: takenAt,
		}
		if mean, ok := summary.Mean(); ok {
			snap.Mean = &mean
		}
		snapshots = append(snapshots, snap)
	}

	if err := s.snapshots.SaveBatch(ctx, snapshots); err != nil {
		metrics.WorkerSnapshots.WithLabelValues("failed").Inc()
		return err
	}

	_, ratings := s.aggregator.Totals()
	if _, err := s.stats.SavePlatformStats(ctx, ratings); err != nil {
		metrics.WorkerSnapshots.WithLabelValues("failed").Inc()
		return err
	}

	if s.retention > 0 {
		pruned, err := s.snapshots.Prune(ctx, takenAt.Add(-s.retention))
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to prune old snapshots")
		} else if pruned > 0 {
			logger.Info().Int64("pruned", pruned).Msg("Old snapshots removed")
		}
	}

	s.lastMu.Lock()
	s.lastSnapshot = takenAt
	s.lastMu.Unlock()

	metrics.WorkerSnapshots.WithLabelValues("success").Inc()
	logger.Info().Int("stores", len(snapshots)).Int("ratings", ratings).Msg("Rating snapshot saved")
	return nil
}

// LastSnapshot - время последнего успешного снимка, нулевое до первого
func (s *ProjectionService) LastSnapshot() time.Time {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.lastSnapshot
}
