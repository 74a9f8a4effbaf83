package validation

import (
	"sort"
	"strings"
)

// Errors - карта "поле -> сообщение" только для полей, не прошедших проверку
type Errors map[string]string

// Add добавляет ошибку поля, nil игнорируется
func (e Errors) Add(fe *FieldError) {
	if fe == nil {
		return
	}
	e[fe.Field] = fe.Message
}

// Empty сообщает, что все поля прошли проверку
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Error реализует error. Поля выводятся в алфавитном порядке.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// Err возвращает nil для пустой карты, иначе саму карту как error
func (e Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

// Form - форма, которая умеет проверить все свои поля
type Form interface {
	Validate() Errors
}

// ValidateForm проверяет каждое поле формы независимо и собирает ошибки
func ValidateForm(f Form) Errors {
	return f.Validate()
}

// Submittable - форму можно отправить только при пустой карте ошибок
func Submittable(errs Errors) bool {
	return errs.Empty()
}

// RegisterForm - форма регистрации
type RegisterForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (f RegisterForm) Validate() Errors {
	errs := Errors{}
	errs.Add(ValidateName(f.Name))
	errs.Add(ValidateEmail(f.Email))
	errs.Add(ValidateAddress(f.Address))
	errs.Add(ValidatePassword(f.Password))
	errs.Add(ValidateConfirmPassword(f.Password, f.ConfirmPassword))
	return errs
}

// CreateUserForm - форма создания пользователя администратором
type CreateUserForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

func (f CreateUserForm) Validate() Errors {
	errs := Errors{}
	errs.Add(ValidateName(f.Name))
	errs.Add(ValidateEmail(f.Email))
	errs.Add(ValidateAddress(f.Address))
	errs.Add(ValidatePassword(f.Password))
	return errs
}

// CreateStoreForm - форма создания магазина
type CreateStoreForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (f CreateStoreForm) Validate() Errors {
	errs := Errors{}
	errs.Add(ValidateName(f.Name))
	errs.Add(ValidateEmail(f.Email))
	errs.Add(ValidateAddress(f.Address))
	return errs
}

// PasswordChangeForm - смена пароля. Новый пароль проверяется по тем же правилам,
// что и при регистрации, но ошибка привязывается к полю new_password.
type PasswordChangeForm struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (f PasswordChangeForm) Validate() Errors {
	errs := Errors{}
	if fe := ValidatePassword(f.NewPassword); fe != nil {
		errs[FieldNewPassword] = fe.Message
	}
	errs.Add(ValidateConfirmPassword(f.NewPassword, f.ConfirmPassword))
	return errs
}

// LoginForm - форма входа: пароль только обязателен, политика не применяется
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f LoginForm) Validate() Errors {
	errs := Errors{}
	errs.Add(ValidateEmail(f.Email))
	if f.Password == "" {
		errs[FieldPassword] = MsgPasswordRequired
	}
	return errs
}
