package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storerating/pkg/logger"
	"storerating/pkg/rating"
	"storerating/stats-worker-service/internal/app/stats-worker/config"
	"storerating/stats-worker-service/internal/app/stats-worker/entity"
	"storerating/stats-worker-service/internal/app/stats-worker/handler"
	"storerating/stats-worker-service/internal/app/stats-worker/processor"
	"storerating/stats-worker-service/internal/app/stats-worker/repository"
	"storerating/stats-worker-service/internal/app/stats-worker/service"
)

const serviceName = "stats-worker-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Log.Level)
	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === POSTGRESQL: снимки статистики ===
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := db.AutoMigrate(&entity.RatingSnapshot{}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate rating_snapshots table")
	}
	logger.Info().Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")

	// === REDIS: проекция оценок ===
	redisClient, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", cfg.Redis.Address()).Int("db", cfg.Redis.DB).Msg("Connected to Redis")

	statsRepo := repository.NewStatsRepository(redisClient)
	snapshotRepo := repository.NewSnapshotRepository(db)

	projection := service.NewProjectionService(rating.NewAggregator(), statsRepo, snapshotRepo, cfg.Cron.Retention)

	restoreCtx, restoreCancel := context.WithTimeout(ctx, 60*time.Second)
	if err := projection.Restore(restoreCtx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to restore projection")
	}
	restoreCancel()

	// === KAFKA CONSUMER ===
	kafkaConsumer := processor.NewKafkaConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		cfg.Kafka.GroupID,
		cfg.Kafka.MinBytes,
		cfg.Kafka.MaxBytes,
		projection,
	)
	kafkaConsumer.Start(ctx)

	// === CRON: снимки ===
	cronScheduler := processor.NewCronScheduler(projection)
	if err := cronScheduler.Start(ctx, cfg.Cron.Snapshot); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Cron.Snapshot).Msg("Failed to start cron scheduler")
	}

	// === HEALTHCHECK И МЕТРИКИ ===
	// снимок считается устаревшим после трех пропущенных запусков
	healthHandler := handler.NewHealthCheckHandler(db, redisClient, projection, 3*cronScheduler.Interval())

	mux := http.NewServeMux()
	healthHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              cfg.Health.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Health.Address()).Msg("Starting healthcheck HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Healthcheck server error")
		}
	}()

	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Str("group", cfg.Kafka.GroupID).
		Str("schedule", cfg.Cron.Snapshot).
		Msg("Stats worker is running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down stats worker...")

	// consumer дорабатывает текущее событие, затем останавливаются снимки
	kafkaConsumer.Stop()
	cronScheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Healthcheck server forced to shutdown")
	}

	logger.Info().Msg("Stats worker stopped gracefully")
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if err = sqlDB.Ping(); err == nil {
				sqlDB.SetMaxOpenConns(10)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().Int("attempt", i+1).Err(err).Msg("Failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	var err error
	for i := 0; i < 10; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		logger.Warn().Int("attempt", i+1).Err(err).Msg("Failed to connect to Redis, retrying")
		time.Sleep(3 * time.Second)
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after 10 attempts: %w", err)
}
