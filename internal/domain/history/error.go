package history

import "errors"

var (
	ErrInvalidLimit = errors.New("limit must not be negative")
)
