package service

import (
	"context"

	"storerating/store-service/internal/app/store/entity"

	"github.com/google/uuid"
)

type StoreServiceInterface interface {
	CreateStore(ctx context.Context, req *entity.CreateStoreRequest) (*entity.Store, error)
	GetStore(ctx context.Context, id uuid.UUID, viewer uuid.UUID) (*entity.StoreView, error)
	ListStores(ctx context.Context, search string, viewer uuid.UUID) ([]entity.StoreView, error)
	Stats(ctx context.Context) (*entity.PlatformStats, error)
}

type RatingServiceInterface interface {
	Rate(ctx context.Context, principal entity.Principal, storeID uuid.UUID, value int) (*entity.RatingSummary, error)
	Retract(ctx context.Context, principal entity.Principal, storeID uuid.UUID) (*entity.RatingSummary, error)
	MyRatings(ctx context.Context, userID uuid.UUID) ([]entity.MyRating, error)
	OwnerDashboard(ctx context.Context, ownerID uuid.UUID) (*entity.OwnerDashboard, error)
}
