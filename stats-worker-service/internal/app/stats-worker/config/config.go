package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит все настройки stats-worker-service.
// Воркер читает события оценок из Kafka, держит проекцию в Redis
// и по расписанию сохраняет снимки статистики в PostgreSQL.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Cron     CronConfig
	Health   HealthConfig
	Log      LogConfig
}

// DatabaseConfig - PostgreSQL для таблицы rating_snapshots
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig - проекция store_ratings, store_stats и platform_stats
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	MinBytes int // минимум байт для fetch запроса
	MaxBytes int // максимум байт для fetch запроса
}

// CronConfig - расписание в формате с секундами, например "0 */5 * * * *".
// Retention - срок хранения снимков, 0 отключает очистку.
type CronConfig struct {
	Snapshot  string
	Retention time.Duration
}

type HealthConfig struct {
	Port string
}

type LogConfig struct {
	Level        string
	LogstashAddr string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	redisDB, err := getEnvInt("REDIS_DB", 1)
	if err != nil {
		return nil, err
	}
	minBytes, err := getEnvInt("KAFKA_MIN_BYTES", 1)
	if err != nil {
		return nil, err
	}
	maxBytes, err := getEnvInt("KAFKA_MAX_BYTES", 10e6)
	if err != nil {
		return nil, err
	}
	retention, err := getEnvDuration("SNAPSHOT_RETENTION", 720*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "stats_worker"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:  splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:    getEnv("KAFKA_TOPIC", "rating_events"),
			GroupID:  getEnv("KAFKA_GROUP_ID", "stats-worker-group"),
			MinBytes: minBytes,
			MaxBytes: maxBytes,
		},
		Cron: CronConfig{
			Snapshot:  getEnv("CRON_SNAPSHOT", "0 */5 * * * *"),
			Retention: retention,
		},
		Health: HealthConfig{
			Port: getEnv("HEALTH_PORT", "8082"),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: os.Getenv("LOGSTASH_ADDR"),
		},
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS must list at least one broker")
	}
	if cfg.Cron.Retention < 0 {
		return nil, errors.New("SNAPSHOT_RETENTION must not be negative")
	}
	if cfg.Kafka.MinBytes > cfg.Kafka.MaxBytes {
		return nil, fmt.Errorf("KAFKA_MIN_BYTES (%d) exceeds KAFKA_MAX_BYTES (%d)", cfg.Kafka.MinBytes, cfg.Kafka.MaxBytes)
	}
	return cfg, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *HealthConfig) Address() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
