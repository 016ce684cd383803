package service

import (
	"errors"

	commonerrors "github.com/AlibekovAA/jokes-gateway/internal/common/errors"
)

// storageError maps a failed store call to the error a client may see.
func storageError(err error) error {
	if errors.Is(err, commonerrors.ErrCircuitOpen) {
		return ErrServiceUnavailable.WithCause(err)
	}
	return ErrStorage.WithCause(err)
}
