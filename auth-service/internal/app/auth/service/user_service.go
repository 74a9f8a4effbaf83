package service

import (
	"context"
	"errors"
	"fmt"

	"storerating/auth-service/internal/app/auth/config"
	"storerating/auth-service/internal/app/auth/entity"
	"storerating/auth-service/internal/app/auth/repository"
	"storerating/pkg/logger"
	"storerating/pkg/metrics"
	"storerating/pkg/validation"

	"github.com/google/uuid"
)

// UserService - управление пользователями из панели администратора
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser создает пользователя с любой ролью
func (s *UserService) CreateUser(ctx context.Context, req *entity.CreateUserRequest) (*entity.User, error) {
	errs := validation.ValidateForm(req.Form())
	if !req.Role.Valid() {
		errs["role"] = ErrInvalidRole.Error()
	}
	if !errs.Empty() {
		metrics.RecordValidationFailures("create_user", errs)
		return nil, fmt.Errorf("%w: %w", ErrValidation, errs)
	}

	user, err := createUser(ctx, s.userRepo, req.Name, req.Email, req.Address, req.Password, req.Role)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("User created by administrator")

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUsers ищет пользователей по имени, email и адресу с фильтром по роли
func (s *UserService) ListUsers(ctx context.Context, filter entity.UserFilter) ([]entity.User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, ErrInvalidRole
	}

	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Stats считает пользователей, включая роли без пользователей
func (s *UserService) Stats(ctx context.Context) (*entity.UserStats, error) {
	counts, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	stats := &entity.UserStats{UsersByRole: make(map[entity.Role]int, len(entity.Roles))}
	for _, role := range entity.Roles {
		stats.UsersByRole[role] = counts[role]
		stats.TotalUsers += counts[role]
	}
	return stats, nil
}

// EnsureAdmin создает системного администратора, если пользователя с таким email нет
func (s *UserService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	_, err := s.userRepo.GetByEmail(ctx, cfg.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	_, err = s.CreateUser(ctx, &entity.CreateUserRequest{
		Name:     cfg.Name,
		Email:    cfg.Email,
		Address:  cfg.Address,
		Password: cfg.Password,
		Role:     entity.RoleSystemAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	logger.Info().Str("email", cfg.Email).Msg("System administrator seeded")
	return nil
}
