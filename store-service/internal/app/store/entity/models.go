package entity

import (
	"time"

	"github.com/google/uuid"
)

// Роли из access токена auth-service
const (
	RoleSystemAdmin = "SYSTEM_ADMIN"
	RoleNormalUser  = "NORMAL_USER"
	RoleStoreOwner  = "STORE_OWNER"
)

// Store - магазин в каталоге. У владельца не больше одного магазина.
type Store struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name" gorm:"size:60;not null"`
	Email     string     `json:"email" gorm:"size:255;not null;uniqueIndex:idx_stores_email"`
	Address   string     `json:"address" gorm:"size:400;not null"`
	OwnerID   *uuid.UUID `json:"owner_id,omitempty" gorm:"type:uuid;uniqueIndex:idx_stores_owner"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Store) TableName() string {
	return "stores"
}

// RatingRecord - активная оценка пользователя, одна на пару (store_id, user_id)
type RatingRecord struct {
	ID        string    `json:"id" bson:"_id"`
	StoreID   string    `json:"store_id" bson:"store_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	UserName  string    `json:"user_name" bson:"user_name"`
	UserEmail string    `json:"user_email" bson:"user_email"`
	Rating    int       `json:"rating" bson:"rating"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Principal - пользователь из проверенного access токена
type Principal struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   string
}

// Типы событий в топике оценок
const (
	EventRatingSubmitted = "RATING_SUBMITTED"
	EventRatingRetracted = "RATING_RETRACTED"
	EventStoreCreated    = "STORE_CREATED"
)

// Event - сообщение Kafka. Ключ сообщения - store_id, чтобы события магазина шли по порядку.
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
