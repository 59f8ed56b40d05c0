package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound             = errors.New("entity not found")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrSubscriptionRequired = errors.New("active subscription required")
	ErrDialogNotFound       = errors.New("no dialog in progress")
	ErrOperationFailed      = errors.New("operation failed")
)
