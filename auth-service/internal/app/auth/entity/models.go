package entity

import (
	"time"

	"github.com/google/uuid"
)

// Role - роль пользователя
type Role string

const (
	RoleSystemAdmin Role = "SYSTEM_ADMIN"
	RoleNormalUser  Role = "NORMAL_USER"
	RoleStoreOwner  Role = "STORE_OWNER"
)

// Roles - все роли в порядке вывода статистики
var Roles = []Role{RoleSystemAdmin, RoleNormalUser, RoleStoreOwner}

// Valid проверяет, что роль известна
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User представляет пользователя в системе
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Address      string    `json:"address" db:"address"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RefreshToken - refresh токен сессии, хранится в Redis
type RefreshToken struct {
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenPair содержит access и refresh токены
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // время жизни access token в секундах
}

// Session - открытая сессия пользователя.
// Создается при входе или регистрации, продлевается через refresh,
// закрывается при выходе.
type Session struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// UserFilter - фильтр списка пользователей в панели администратора
type UserFilter struct {
	Search string
	Role   Role
}

// UserStats - статистика пользователей для панели администратора
type UserStats struct {
	TotalUsers  int          `json:"total_users"`
	UsersByRole map[Role]int `json:"users_by_role"`
}
