package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storerating/auth-service/internal/app/auth/entity"
	"storerating/auth-service/internal/app/auth/repository"
	"storerating/auth-service/internal/app/auth/util"
	"storerating/pkg/logger"
	"storerating/pkg/metrics"
	"storerating/pkg/validation"

	"github.com/google/uuid"
)

// AuthService управляет жизненным циклом сессии: открытие при входе и
// регистрации, продление через refresh, закрытие при выходе
type AuthService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	jwtManager *util.JWTManager
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *util.JWTManager,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
	}
}

// Register создает пользователя с ролью NORMAL_USER и сразу открывает сессию
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.Session, error) {
	if errs := validation.ValidateForm(req.Form()); !validation.Submittable(errs) {
		metrics.RecordValidationFailures("register", errs)
		return nil, fmt.Errorf("%w: %w", ErrValidation, errs)
	}

	user, err := createUser(ctx, s.userRepo, req.Name, req.Email, req.Address, req.Password, entity.RoleNormalUser)
	if err != nil {
		return nil, err
	}

	metrics.AuthRegistrations.Inc()
	logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("User registered")

	return s.openSession(ctx, user)
}

// Login проверяет учетные данные и открывает сессию
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.Session, error) {
	if errs := validation.ValidateForm(validation.LoginForm{Email: req.Email, Password: req.Password}); !errs.Empty() {
		return nil, fmt.Errorf("%w: %w", ErrValidation, errs)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		metrics.AuthLogins.WithLabelValues("failed").Inc()
		return nil, ErrInvalidCredentials
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	return s.openSession(ctx, user)
}

// Refresh обменивает refresh токен на новую пару. Старый токен удаляется.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*entity.Session, error) {
	stored, err := s.tokenRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	if err := s.tokenRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to delete refresh token: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.openSession(ctx, user)
}

// Logout закрывает сессию: access токен отзывается, refresh токены удаляются
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, accessToken string) error {
	claims, err := s.jwtManager.ValidateToken(accessToken)
	if err == nil {
		if err := s.tokenRepo.AddToBlacklist(ctx, accessToken, claims.ExpiresAt.Time); err != nil {
			return fmt.Errorf("failed to blacklist token: %w", err)
		}
	}

	if err := s.tokenRepo.DeleteUserRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete refresh tokens: %w", err)
	}

	metrics.AuthSessionsClosed.Inc()
	logger.Info().Str("user_id", userID.String()).Msg("Session closed")
	return nil
}

// CurrentUser возвращает пользователя открытой сессии
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ChangePassword меняет пароль после проверки текущего.
// Остальные сессии пользователя закрываются.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *entity.UpdatePasswordRequest) error {
	errs := validation.ValidateForm(req.Form())
	if req.CurrentPassword == "" {
		errs["current_password"] = validation.MsgPasswordRequired
	}
	if !errs.Empty() {
		metrics.RecordValidationFailures("password_change", errs)
		return fmt.Errorf("%w: %w", ErrValidation, errs)
	}

	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}

	if !util.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := util.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.tokenRepo.DeleteUserRefreshTokens(ctx, userID); err != nil {
		logger.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to revoke refresh tokens after password change")
	}

	logger.Info().Str("user_id", userID.String()).Msg("Password changed")
	return nil
}

// ValidateToken проверяет подпись и срок access токена и что сессия не закрыта
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*util.JWTClaims, error) {
	isBlacklisted, err := s.tokenRepo.IsBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if isBlacklisted {
		return nil, util.ErrInvalidToken
	}

	return s.jwtManager.ValidateToken(token)
}

// openSession выпускает пару токенов и сохраняет refresh токен
func (s *AuthService) openSession(ctx context.Context, user *entity.User) (*entity.Session, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Name, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.jwtManager.GetRefreshTokenDuration())
	if err := s.tokenRepo.SaveRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	metrics.AuthTokensIssued.WithLabelValues("access").Inc()
	metrics.AuthTokensIssued.WithLabelValues("refresh").Inc()

	return &entity.Session{
		User: *user,
		Tokens: entity.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int64(s.jwtManager.GetAccessTokenDuration().Seconds()),
		},
	}, nil
}

// createUser хэширует пароль и сохраняет пользователя. Общий код регистрации и
// создания пользователя администратором.
func createUser(ctx context.Context, repo repository.UserRepository, name, email, address, password string, role entity.Role) (*entity.User, error) {
	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := util.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Address:      address,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}
