package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrPlayerExists    = errors.New("player already exists")
	ErrMatchNotFound   = errors.New("match not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidDate     = errors.New("invalid session date")
)
