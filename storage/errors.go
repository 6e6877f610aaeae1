package storage

import "errors"

var (
	ErrSessionNotFound = errors.New("storage: session not found")
	ErrConfigNotFound  = errors.New("storage: scope config not found")
)
