package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound      = errors.New("domain: not found")
	ErrUnknownAction = errors.New("domain: unknown action")
	ErrMissingEntity = errors.New("domain: entity type and id required")
	ErrInvalidActor  = errors.New("domain: invalid actor type")
)
