package dto

import "errors"

// Request validation errors.
var (
	ErrInvalidMode  = errors.New("invalid run mode")
	ErrEmptyStepSet = errors.New("explicit run requires at least one step id")
	ErrNegativeFrom = errors.New("from-step id cannot be negative")
)
