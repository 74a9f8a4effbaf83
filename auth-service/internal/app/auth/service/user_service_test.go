package service

import (
	"context"
	"errors"
	"testing"

	"storerating/auth-service/internal/app/auth/config"
	"storerating/auth-service/internal/app/auth/entity"
	"storerating/auth-service/internal/app/auth/repository"
	"storerating/auth-service/internal/app/auth/repository/mocks"
	"storerating/pkg/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCreateUserRequest(role entity.Role) *entity.CreateUserRequest {
	return &entity.CreateUserRequest{
		Name:     "Store Owner Account Name",
		Email:    "store@example.com",
		Address:  "456 Store Avenue, City, State 67890",
		Password: "Owner!Pass1",
		Role:     role,
	}
}

func TestUserService_CreateUser_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)

	userRepo.On("GetByEmail", ctx, "store@example.com").Return(nil, repository.ErrNotFound)
	userRepo.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.Role == entity.RoleStoreOwner && u.PasswordHash != "Owner!Pass1"
	})).Return(nil)

	// Act
	user, err := svc.CreateUser(ctx, newCreateUserRequest(entity.RoleStoreOwner))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.RoleStoreOwner, user.Role)
	assert.NotEqual(t, uuid.Nil, user.ID)
	userRepo.AssertExpectations(t)
}

func TestUserService_CreateUser_InvalidRoleAndFields(t *testing.T) {
	svc := NewUserService(new(mocks.MockUserRepository))

	req := newCreateUserRequest("SUPERUSER")
	req.Address = ""

	_, err := svc.CreateUser(context.Background(), req)

	assert.ErrorIs(t, err, ErrValidation)
	var fields validation.Errors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, validation.Errors{
		validation.FieldAddress: validation.MsgAddressRequired,
		"role":                  ErrInvalidRole.Error(),
	}, fields)
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)
	filter := entity.UserFilter{Search: "lane", Role: entity.RoleNormalUser}
	users := []entity.User{*newTestUser(entity.RoleNormalUser)}

	userRepo.On("List", ctx, filter).Return(users, nil)

	got, err := svc.ListUsers(ctx, filter)

	require.NoError(t, err)
	assert.Equal(t, users, got)
}

func TestUserService_ListUsers_InvalidRole(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)

	_, err := svc.ListUsers(context.Background(), entity.UserFilter{Role: "ROOT"})

	assert.ErrorIs(t, err, ErrInvalidRole)
	userRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)
	id := uuid.New()

	userRepo.On("GetByID", ctx, id).Return(nil, repository.ErrNotFound)

	_, err := svc.GetUser(ctx, id)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_Stats(t *testing.T) {
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)

	userRepo.On("CountByRole", ctx).Return(map[entity.Role]int{
		entity.RoleNormalUser: 5,
		entity.RoleStoreOwner: 2,
	}, nil)

	stats, err := svc.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalUsers)
	assert.Equal(t, 0, stats.UsersByRole[entity.RoleSystemAdmin])
	assert.Len(t, stats.UsersByRole, 3)
}

func TestUserService_EnsureAdmin_AlreadyExists(t *testing.T) {
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)

	userRepo.On("GetByEmail", ctx, "admin@example.com").Return(newTestUser(entity.RoleSystemAdmin), nil)

	err := svc.EnsureAdmin(ctx, config.AdminConfig{
		Name:     "System Administrator Account",
		Email:    "admin@example.com",
		Address:  "123 Admin Street",
		Password: "Admin!Pass1",
	})

	require.NoError(t, err)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_EnsureAdmin_Seeds(t *testing.T) {
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	svc := NewUserService(userRepo)

	userRepo.On("GetByEmail", ctx, "admin@example.com").Return(nil, repository.ErrNotFound)
	userRepo.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.Role == entity.RoleSystemAdmin
	})).Return(nil)

	err := svc.EnsureAdmin(ctx, config.AdminConfig{
		Name:     "System Administrator Account",
		Email:    "admin@example.com",
		Address:  "123 Admin Street",
		Password: "Admin!Pass1",
	})

	require.NoError(t, err)
	userRepo.AssertExpectations(t)
}
