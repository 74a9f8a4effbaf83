package entity

import (
	"storerating/pkg/validation"
)

// RegisterRequest - запрос на регистрацию
type RegisterRequest struct {
	Name            string `json:"name" validate:"storename"`
	Email           string `json:"email" validate:"storeemail"`
	Address         string `json:"address" validate:"storeaddress"`
	Password        string `json:"password" validate:"storepassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// Form возвращает форму с правилами проверки полей
func (r *RegisterRequest) Form() validation.RegisterForm {
	return validation.RegisterForm{
		Name:            r.Name,
		Email:           r.Email,
		Address:         r.Address,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
	}
}

// LoginRequest - запрос на вход
type LoginRequest struct {
	Email    string `json:"email" validate:"storeemail"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest - запрос на обновление токена
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdatePasswordRequest - смена пароля текущего пользователя
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"storepassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

func (r *UpdatePasswordRequest) Form() validation.PasswordChangeForm {
	return validation.PasswordChangeForm{
		NewPassword:     r.NewPassword,
		ConfirmPassword: r.ConfirmPassword,
	}
}

// CreateUserRequest - создание пользователя администратором
type CreateUserRequest struct {
	Name     string `json:"name" validate:"storename"`
	Email    string `json:"email" validate:"storeemail"`
	Address  string `json:"address" validate:"storeaddress"`
	Password string `json:"password" validate:"storepassword"`
	Role     Role   `json:"role" validate:"required,oneof=SYSTEM_ADMIN NORMAL_USER STORE_OWNER"`
}

func (r *CreateUserRequest) Form() validation.CreateUserForm {
	return validation.CreateUserForm{
		Name:     r.Name,
		Email:    r.Email,
		Address:  r.Address,
		Password: r.Password,
	}
}

// ListUsersQuery - параметры поиска пользователей
type ListUsersQuery struct {
	Search string `json:"search" form:"search"`
	Role   string `json:"role" form:"role" validate:"omitempty,oneof=SYSTEM_ADMIN NORMAL_USER STORE_OWNER"`
}

// ValidationErrorResponse - ответ 400 с ошибками по полям
type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}
