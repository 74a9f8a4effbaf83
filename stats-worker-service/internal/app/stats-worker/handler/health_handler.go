package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storerating/pkg/logger"
	"storerating/stats-worker-service/internal/app/stats-worker/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthCheckHandler отдает состояние воркера. PostgreSQL и Redis обязательны,
// устаревший снимок статистики считается только предупреждением.
type HealthCheckHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
	snapshotter service.SnapshotServiceInterface
	staleAfter  time.Duration
	now         func() time.Time
}

// NewHealthCheckHandler создает handler. staleAfter <= 0 отключает проверку возраста снимка.
func NewHealthCheckHandler(
	db *gorm.DB,
	redisClient *redis.Client,
	snapshotter service.SnapshotServiceInterface,
	staleAfter time.Duration,
) *HealthCheckHandler {
	return &HealthCheckHandler{
		db:          db,
		redisClient: redisClient,
		snapshotter: snapshotter,
		staleAfter:  staleAfter,
		now:         time.Now,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

func (h *HealthCheckHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := statusHealthy

	if err := h.checkDatabase(ctx); err != nil {
		checks["database"] = statusUnhealthy + ": " + err.Error()
		overallStatus = statusUnhealthy
	} else {
		checks["database"] = statusHealthy
	}

	if err := h.checkRedis(ctx); err != nil {
		checks["redis"] = statusUnhealthy + ": " + err.Error()
		overallStatus = statusUnhealthy
	} else {
		checks["redis"] = statusHealthy
	}

	if err := h.checkSnapshot(); err != nil {
		checks["snapshot"] = "warning: " + err.Error()
	} else {
		checks["snapshot"] = statusHealthy
	}

	response := HealthResponse{
		Status:    overallStatus,
		Checks:    checks,
		Timestamp: h.now(),
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus != statusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().Err(err).Msg("Failed to write health response")
	}
}

func (h *HealthCheckHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.checkDatabase(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}

	if err := h.checkRedis(ctx); err != nil {
		http.Error(w, "redis not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *HealthCheckHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}

func (h *HealthCheckHandler) checkDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (h *HealthCheckHandler) checkRedis(ctx context.Context) error {
	return h.redisClient.Ping(ctx).Err()
}

func (h *HealthCheckHandler) checkSnapshot() error {
	last := h.snapshotter.LastSnapshot()
	if last.IsZero() {
		return errors.New("no snapshot taken yet")
	}

	age := h.now().Sub(last)
	if h.staleAfter > 0 && age > h.staleAfter {
		logger.Warn().Dur("age", age).Msg("Rating snapshot is outdated")
		return fmt.Errorf("last snapshot is %s old", age.Truncate(time.Second))
	}
	return nil
}

func (h *HealthCheckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/health/readiness", h.Readiness)
	mux.HandleFunc("/health/liveness", h.Liveness)
}
