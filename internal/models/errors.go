package models

import "errors"

// Custom errors
var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateKey         = errors.New("duplicate key violation")
	ErrInvalidID            = errors.New("invalid ID format")
	ErrStrategyNameRequired = errors.New("strategy name is required")
	ErrInvalidOdds          = errors.New("invalid odds value")
	ErrUnresolvedSelection  = errors.New("selection cannot be resolved to a side")
	ErrInvalidProbability   = errors.New("probability outside [0,1]")
	ErrBetAlreadySettled    = errors.New("bet already settled")
)
