package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRegisterForm() RegisterForm {
	return RegisterForm{
		Name:            "Alexander Hamilton Smith",
		Email:           "alex@example.com",
		Address:         "789 User Lane, City, State 54321",
		Password:        "Secret!Pass1",
		ConfirmPassword: "Secret!Pass1",
	}
}

func TestRegisterForm_Valid(t *testing.T) {
	errs := ValidateForm(validRegisterForm())

	assert.Empty(t, errs)
	assert.True(t, Submittable(errs))
	assert.NoError(t, errs.Err())
}

func TestRegisterForm_CollectsEveryFailedField(t *testing.T) {
	// Arrange
	form := RegisterForm{
		Name:            "Short",
		Email:           "not-an-email",
		Address:         "",
		Password:        "weakpass",
		ConfirmPassword: "other",
	}

	// Act
	errs := ValidateForm(form)

	// Assert
	assert.Equal(t, Errors{
		FieldName:            MsgNameTooShort,
		FieldEmail:           MsgEmailInvalid,
		FieldAddress:         MsgAddressRequired,
		FieldPassword:        MsgPasswordNoUppercase,
		FieldConfirmPassword: MsgPasswordsMismatch,
	}, errs)
	assert.False(t, Submittable(errs))
	assert.Error(t, errs.Err())
}

func TestRegisterForm_PassingFieldsAbsent(t *testing.T) {
	form := validRegisterForm()
	form.Address = strings.Repeat("x", AddressMaxLength+1)

	errs := form.Validate()

	assert.Len(t, errs, 1)
	assert.Equal(t, MsgAddressTooLong, errs[FieldAddress])
}

func TestCreateUserForm(t *testing.T) {
	form := CreateUserForm{
		Name:     "Alexander Hamilton Smith",
		Email:    "alex@example.com",
		Address:  "Somewhere",
		Password: "short",
	}

	errs := form.Validate()

	assert.Equal(t, Errors{FieldPassword: MsgPasswordTooShort}, errs)
}

func TestCreateStoreForm(t *testing.T) {
	form := CreateStoreForm{Name: "", Email: "shop@example.com", Address: "Main St"}

	errs := form.Validate()

	assert.Equal(t, Errors{FieldName: MsgNameRequired}, errs)
}

func TestPasswordChangeForm(t *testing.T) {
	errs := PasswordChangeForm{NewPassword: "Abcdefg!", ConfirmPassword: "Abcdefg!"}.Validate()
	assert.Empty(t, errs)

	errs = PasswordChangeForm{NewPassword: "abc", ConfirmPassword: ""}.Validate()
	assert.Equal(t, Errors{
		FieldNewPassword:     MsgPasswordTooShort,
		FieldConfirmPassword: MsgConfirmPasswordRequired,
	}, errs)
}

func TestLoginForm(t *testing.T) {
	assert.Empty(t, LoginForm{Email: "a@b.co", Password: "x"}.Validate())

	errs := LoginForm{Email: "", Password: ""}.Validate()
	assert.Equal(t, Errors{
		FieldEmail:    MsgEmailRequired,
		FieldPassword: MsgPasswordRequired,
	}, errs)
}

func TestErrors_ErrorSortedByField(t *testing.T) {
	errs := Errors{FieldPassword: "p", FieldEmail: "e"}

	assert.Equal(t, "email: e; password: p", errs.Error())
}

func TestErrors_AddIgnoresNil(t *testing.T) {
	errs := Errors{}
	errs.Add(nil)

	assert.True(t, errs.Empty())
}
