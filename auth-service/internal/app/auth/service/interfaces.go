package service

import (
	"context"

	"storerating/auth-service/internal/app/auth/entity"
	"storerating/auth-service/internal/app/auth/util"

	"github.com/google/uuid"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.Session, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*entity.Session, error)
	Logout(ctx context.Context, userID uuid.UUID, accessToken string) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *entity.UpdatePasswordRequest) error
	ValidateToken(ctx context.Context, accessToken string) (*util.JWTClaims, error)
}

type UserServiceInterface interface {
	CreateUser(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
	ListUsers(ctx context.Context, filter entity.UserFilter) ([]entity.User, error)
	Stats(ctx context.Context) (*entity.UserStats, error)
}
