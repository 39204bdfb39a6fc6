package services

import (
	"errors"
	"fmt"

	"salonpro-retention/repository"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrPersistence  = errors.New("persistence failure")
	ErrNoHistory    = errors.New("no appointment history")
	ErrInvalidInput = errors.New("invalid input")
)

// storeErr classifies a store error for op.
func storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
