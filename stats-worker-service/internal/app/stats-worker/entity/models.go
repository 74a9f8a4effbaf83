package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Типы событий топика rating_events
const (
	EventRatingSubmitted = "RATING_SUBMITTED"
	EventRatingRetracted = "RATING_RETRACTED"
	EventStoreCreated    = "STORE_CREATED"
)

// Event - сообщение store-service. Ключ сообщения Kafka - store_id.
type Event struct {
	EventType      string    `json:"event_type"`
	StoreID        string    `json:"store_id"`
	UserID         string    `json:"user_id,omitempty"`
	Rating         int       `json:"rating,omitempty"`
	PreviousRating int       `json:"previous_rating,omitempty"`
	RatingCount    int       `json:"rating_count"`
	RatingSum      float64   `json:"rating_sum"`
	StoreName      string    `json:"store_name,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// StoreStats - содержимое хеша store_stats:<id>
type StoreStats struct {
	StoreID string
	Count   int
	Sum     float64
	// Mean nil, пока оценок нет
	Mean *float64
}

// PlatformStats - содержимое хеша platform_stats
type PlatformStats struct {
	Stores    int64
	Ratings   int
	UpdatedAt time.Time
}

// RatingSnapshot - строка таблицы rating_snapshots
type RatingSnapshot struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	StoreID string    `gorm:"size:36;not null;index:idx_snapshots_store_taken,priority:1"`
	Count   int       `gorm:"not null"`
	Sum     float64   `gorm:"not null"`
	Mean    *float64
	TakenAt time.Time `gorm:"not null;index:idx_snapshots_store_taken,priority:2"`
}

func (RatingSnapshot) TableName() string {
	return "rating_snapshots"
}

// Ключи Redis
const (
	storeRatingsPrefix = "store_ratings:"
	storeStatsPrefix   = "store_stats:"
	PlatformStatsKey   = "platform_stats"
	KnownStoresKey     = "known_stores"
)

// StoreRatingsKey - хеш user_id -> активная оценка
func StoreRatingsKey(storeID string) string {
	return storeRatingsPrefix + storeID
}

// StoreRatingsPattern - шаблон SCAN для восстановления проекции
func StoreRatingsPattern() string {
	return storeRatingsPrefix + "*"
}

// StoreIDFromRatingsKey обратна StoreRatingsKey
func StoreIDFromRatingsKey(key string) string {
	return strings.TrimPrefix(key, storeRatingsPrefix)
}

func StoreStatsKey(storeID string) string {
	return storeStatsPrefix + storeID
}
