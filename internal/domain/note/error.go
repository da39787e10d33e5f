package note

import "errors"

var (
	ErrModelNotFound = errors.New("model not found")
	ErrInvalidRule   = errors.New("invalid rule")
)
