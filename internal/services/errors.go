package services

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUnknownEmail       = errors.New("email not registered")
	ErrInvalidCredential  = errors.New("incorrect password")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrAuthRequired       = errors.New("authentication required")
	ErrInternal           = errors.New("internal failure")
)

// storageErr marks err as ErrStorageUnavailable while keeping the cause for logs.
func storageErr(op string, err error) error {
	return oops.Code("STORAGE_UNAVAILABLE").
		With("operation", op).
		Wrap(fmt.Errorf("%w: %w", ErrStorageUnavailable, err))
}

func internalErr(op string, err error) error {
	return oops.Code("INTERNAL_FAILURE").
		With("operation", op).
		Wrap(fmt.Errorf("%w: %w", ErrInternal, err))
}
