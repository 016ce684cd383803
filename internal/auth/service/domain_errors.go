package service

import (
	"fmt"
	"net/http"

	"github.com/AlibekovAA/jokes-gateway/internal/common/constants"
	commonerrors "github.com/AlibekovAA/jokes-gateway/internal/common/errors"
)

var (
	ErrCredentialsRequired = commonerrors.NewDomainError(
		"CREDENTIALS_REQUIRED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"username and password required",
	)

	ErrValidationUsernameLength = commonerrors.NewDomainError(
		"VALIDATION_USERNAME_LENGTH",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		fmt.Sprintf("username is invalid: at most %d characters allowed", constants.UsernameMaxLength),
	)

	ErrValidationUsernameChars = commonerrors.NewDomainError(
		"VALIDATION_USERNAME_CHARS",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"username is invalid: control characters are not allowed",
	)

	ErrValidationPasswordLength = commonerrors.NewDomainError(
		"VALIDATION_PASSWORD_LENGTH",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		fmt.Sprintf("password is invalid: at most %d bytes allowed", constants.PasswordMaxBytes),
	)

	ErrUsernameTaken = commonerrors.NewDomainError(
		"USERNAME_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"username taken",
	)

	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid credentials",
	)

	ErrStorage = commonerrors.NewDomainError(
		"STORAGE_ERROR",
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		"internal server error",
	)

	ErrServiceUnavailable = commonerrors.NewDomainError(
		"SERVICE_UNAVAILABLE",
		commonerrors.CategoryExternal,
		http.StatusServiceUnavailable,
		"service temporarily unavailable",
	)
)
