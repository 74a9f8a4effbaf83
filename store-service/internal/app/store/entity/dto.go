package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"storerating/pkg/rating"
	"storerating/pkg/validation"
)

// CreateStoreRequest - создание магазина администратором
type CreateStoreRequest struct {
	Name    string     `json:"name" validate:"storename"`
	Email   string     `json:"email" validate:"storeemail"`
	Address string     `json:"address" validate:"storeaddress"`
	OwnerID *uuid.UUID `json:"owner_id"`
}

// Form возвращает поля без крайних пробелов. Проверяются и сохраняются именно они.
func (r *CreateStoreRequest) Form() validation.CreateStoreForm {
	return validation.CreateStoreForm{
		Name:    strings.TrimSpace(r.Name),
		Email:   strings.TrimSpace(r.Email),
		Address: strings.TrimSpace(r.Address),
	}
}

// RateRequest - оценка магазина. Диапазон проверяет агрегатор.
type RateRequest struct {
	Rating *int `json:"rating" validate:"required"`
}

type ListStoresQuery struct {
	Search string `json:"search" form:"search" validate:"max=100"`
}

// StoreView - магазин со средней оценкой и оценкой текущего пользователя
type StoreView struct {
	Store
	AverageRating *float64 `json:"average_rating"`
	AverageText   string   `json:"average_display"`
	TotalRatings  int      `json:"total_ratings"`
	MyRating      *int     `json:"my_rating,omitempty"`
}

// RatingSummary - ответ на изменение оценки
type RatingSummary struct {
	StoreID       string   `json:"store_id"`
	TotalRatings  int      `json:"total_ratings"`
	AverageRating *float64 `json:"average_rating"`
	Display       string   `json:"display"`
	MyRating      *int     `json:"my_rating"`
}

// NewRatingSummary собирает ответ из агрегата
func NewRatingSummary(s rating.Summary, myRating *int) RatingSummary {
	return RatingSummary{
		StoreID:       s.StoreID,
		TotalRatings:  s.Count,
		AverageRating: s.RoundedMean(),
		Display:       s.Display(),
		MyRating:      myRating,
	}
}

// MyRating - оценка пользователя с данными магазина
type MyRating struct {
	StoreID      string    `json:"store_id"`
	StoreName    string    `json:"store_name"`
	StoreAddress string    `json:"store_address"`
	Rating       int       `json:"rating"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OwnerDashboard - данные панели владельца магазина
type OwnerDashboard struct {
	Store         Store              `json:"store"`
	AverageRating *float64           `json:"average_rating"`
	Display       string             `json:"display"`
	TotalRatings  int                `json:"total_ratings"`
	Distribution  []rating.StarCount `json:"distribution"`
	Ratings       []RatingRecord     `json:"ratings"`
}

// PlatformStats - счетчики для панели администратора
type PlatformStats struct {
	TotalStores  int64 `json:"total_stores"`
	TotalRatings int   `json:"total_ratings"`
}

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}
