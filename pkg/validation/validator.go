package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Теги для использования в DTO: `validate:"storename"`
const (
	TagName     = "storename"
	TagEmail    = "storeemail"
	TagAddress  = "storeaddress"
	TagPassword = "storepassword"
)

var tagRules = map[string]func(string) *FieldError{
	TagName:     ValidateName,
	TagEmail:    ValidateEmail,
	TagAddress:  ValidateAddress,
	TagPassword: ValidatePassword,
}

// New создает validator.Validate с зарегистрированными правилами полей
func New() *validator.Validate {
	v := validator.New()
	// на новом валидаторе регистрация не падает
	_ = RegisterValidations(v)
	return v
}

// RegisterValidations регистрирует теги правил и использует json-имена полей в ошибках
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, rule := range tagRules {
		rule := rule
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return rule(fl.Field().String()) == nil
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// Translate превращает ошибки validator в карту "поле -> сообщение".
// Для тегов правил сообщение берется из первого нарушенного предиката.
// Ошибки другого типа возвращаются под ключом "_".
func Translate(err error) Errors {
	errs := Errors{}
	if err == nil {
		return errs
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		errs["_"] = err.Error()
		return errs
	}

	for _, fe := range ve {
		field := fe.Field()
		if _, exists := errs[field]; exists {
			continue
		}
		errs[field] = message(fe)
	}
	return errs
}

func message(fe validator.FieldError) string {
	if rule, ok := tagRules[fe.Tag()]; ok {
		value, _ := fe.Value().(string)
		if ferr := rule(value); ferr != nil {
			return ferr.Message
		}
	}

	switch fe.Tag() {
	case "required":
		return requiredMessage(fe.Field())
	case "eqfield":
		return MsgPasswordsMismatch
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func requiredMessage(field string) string {
	switch field {
	case FieldName:
		return MsgNameRequired
	case FieldEmail:
		return MsgEmailRequired
	case FieldAddress:
		return MsgAddressRequired
	case FieldPassword, FieldNewPassword:
		return MsgPasswordRequired
	case FieldConfirmPassword:
		return MsgConfirmPasswordRequired
	}
	return field + " is required"
}
