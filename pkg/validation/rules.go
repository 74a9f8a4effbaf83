// Package validation содержит правила проверки полей форм: имени, email,
// адреса, пароля и его подтверждения.
//
// Каждое правило поля - упорядоченный список предикатов. Проверка
// останавливается на первом нарушенном предикате и возвращает его сообщение.
// Функции пакета чистые и безопасны для конкурентного использования.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Имена полей, используемые в картах ошибок форм
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldAddress         = "address"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
	FieldNewPassword     = "new_password"
)

// Ограничения длины
const (
	NameMinLength     = 20
	NameMaxLength     = 60
	AddressMaxLength  = 400
	PasswordMinLength = 8
	PasswordMaxLength = 16
)

// Сообщения об ошибках
const (
	MsgNameRequired            = "Name is required"
	MsgNameTooShort            = "Name must be at least 20 characters"
	MsgNameTooLong             = "Name must not exceed 60 characters"
	MsgEmailRequired           = "Email is required"
	MsgEmailInvalid            = "Please enter a valid email address"
	MsgAddressRequired         = "Address is required"
	MsgAddressTooLong          = "Address must not exceed 400 characters"
	MsgPasswordRequired        = "Password is required"
	MsgPasswordTooShort        = "Password must be at least 8 characters"
	MsgPasswordTooLong         = "Password must not exceed 16 characters"
	MsgPasswordNoUppercase     = "Password must contain at least one uppercase letter"
	MsgPasswordNoSpecial       = "Password must contain at least one special character"
	MsgConfirmPasswordRequired = "Please confirm your password"
	MsgPasswordsMismatch       = "Passwords do not match"
)

// SpecialCharacters - набор символов, один из которых обязателен в пароле
const SpecialCharacters = `!@#$%^&*(),.?":{}|<>`

// emailRegex: непустая часть до @, домен с точкой, без пробельных символов.
// \s в RE2 покрывает только ASCII, поэтому \v, \p{Z} и U+FEFF перечислены явно.
var emailRegex = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

var uppercaseRegex = regexp.MustCompile(`[A-Z]`)

// FieldError - ошибка валидации конкретного поля
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Rule - именованный предикат. Apply возвращает true, если значение проходит проверку.
type Rule struct {
	Message string
	Apply   func(value string) bool
}

// Check применяет правила по порядку и возвращает первое нарушение
func Check(field, value string, rules []Rule) *FieldError {
	for _, r := range rules {
		if !r.Apply(value) {
			return &FieldError{Field: field, Message: r.Message}
		}
	}
	return nil
}

func notBlank(v string) bool { return strings.TrimSpace(v) != "" }

func notEmpty(v string) bool { return v != "" }

// minLen считает длину в рунах, а не в UTF-16 единицах
func minLen(n int) func(string) bool {
	return func(v string) bool { return utf8.RuneCountInString(v) >= n }
}

// maxLen считает длину в рунах, а не в UTF-16 единицах
func maxLen(n int) func(string) bool {
	return func(v string) bool { return utf8.RuneCountInString(v) <= n }
}

func hasSpecial(v string) bool { return strings.ContainsAny(v, SpecialCharacters) }

var (
	nameRules = []Rule{
		{Message: MsgNameRequired, Apply: notBlank},
		{Message: MsgNameTooShort, Apply: minLen(NameMinLength)},
		{Message: MsgNameTooLong, Apply: maxLen(NameMaxLength)},
	}
	emailRules = []Rule{
		{Message: MsgEmailRequired, Apply: notBlank},
		{Message: MsgEmailInvalid, Apply: emailRegex.MatchString},
	}
	addressRules = []Rule{
		{Message: MsgAddressRequired, Apply: notBlank},
		{Message: MsgAddressTooLong, Apply: maxLen(AddressMaxLength)},
	}
	passwordRules = []Rule{
		{Message: MsgPasswordRequired, Apply: notEmpty},
		{Message: MsgPasswordTooShort, Apply: minLen(PasswordMinLength)},
		{Message: MsgPasswordTooLong, Apply: maxLen(PasswordMaxLength)},
		{Message: MsgPasswordNoUppercase, Apply: uppercaseRegex.MatchString},
		{Message: MsgPasswordNoSpecial, Apply: hasSpecial},
	}
)

// ValidateName проверяет имя: обязательно, от 20 до 60 символов
func ValidateName(name string) *FieldError {
	return Check(FieldName, name, nameRules)
}

// ValidateEmail проверяет email
func ValidateEmail(email string) *FieldError {
	return Check(FieldEmail, email, emailRules)
}

// ValidateAddress проверяет адрес: обязателен, не длиннее 400 символов
func ValidateAddress(address string) *FieldError {
	return Check(FieldAddress, address, addressRules)
}

// ValidatePassword проверяет пароль: 8-16 символов, заглавная буква и спецсимвол
func ValidatePassword(password string) *FieldError {
	return Check(FieldPassword, password, passwordRules)
}

// ValidateConfirmPassword проверяет, что подтверждение задано и побайтово совпадает с паролем
func ValidateConfirmPassword(password, confirmPassword string) *FieldError {
	if confirmPassword == "" {
		return &FieldError{Field: FieldConfirmPassword, Message: MsgConfirmPasswordRequired}
	}
	if password != confirmPassword {
		return &FieldError{Field: FieldConfirmPassword, Message: MsgPasswordsMismatch}
	}
	return nil
}
