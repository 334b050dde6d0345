package models

import "errors"

// Custom errors
var (
	ErrNotFound               = errors.New("record not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrDuplicateKey           = errors.New("duplicate key violation")
	ErrInvalidID              = errors.New("invalid ID format")
	ErrTickerRequired         = errors.New("ticker is required")
)
