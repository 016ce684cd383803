package service

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

type credentials struct {
	Username string `validate:"required,max=64,printable_text"`
	Password string `validate:"required,bcrypt_max=72"`
}

// CredentialValidator checks presence and upper bounds only. Length limits
// on usernames count characters; passwords count bytes because bcrypt
// ignores everything past byte 72.
type CredentialValidator struct {
	v *validator.Validate
}

// NewCredentialValidator panics if a custom rule cannot be registered; that
// only happens when a tag name or function is wrong.
func NewCredentialValidator() CredentialValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "bcrypt_max", validateByteLength)
	mustRegister(v, "printable_text", validatePrintableText)
	return CredentialValidator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// validatePrintableText rejects invalid UTF-8 and control runes such as NUL,
// which Postgres TEXT columns refuse.
func validatePrintableText(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func validateByteLength(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Validate runs the full registration rules.
func (cv CredentialValidator) Validate(username, password string) error {
	err := cv.v.Struct(credentials{Username: username, Password: password})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ErrCredentialsRequired.WithCause(err)
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return ErrCredentialsRequired
		}
	}

	switch fe := fieldErrs[0]; {
	case fe.Field() == "Username" && fe.Tag() == "printable_text":
		return ErrValidationUsernameChars
	case fe.Field() == "Username":
		return ErrValidationUsernameLength
	default:
		return ErrValidationPasswordLength
	}
}

// RequirePresent checks that both fields are non-empty and that the
// username can be looked up at all.
func (cv CredentialValidator) RequirePresent(username, password string) error {
	if err := cv.v.Var(username, "required"); err != nil {
		return ErrCredentialsRequired
	}
	if err := cv.v.Var(password, "required"); err != nil {
		return ErrCredentialsRequired
	}
	if err := cv.v.Var(username, "printable_text"); err != nil {
		return ErrValidationUsernameChars
	}
	return nil
}
