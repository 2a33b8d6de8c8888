package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrSchemaUnavailable = errors.New("warehouse schema unavailable")
	ErrUnsafeQuery       = errors.New("query rejected by SQL safety checks")
	ErrUnsupported       = errors.New("operation not supported by this warehouse")
)
