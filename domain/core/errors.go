package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)

	ErrInsufficientGroups = errors.New("need at least two groups to analyze")

	// Run coordination errors
	ErrRunSuperseded = errors.New("analysis run superseded by a newer run")
)

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsSupersededError(err error) bool {
	return errors.Is(err, ErrRunSuperseded)
}
