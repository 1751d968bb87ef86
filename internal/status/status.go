package status

import "errors"

var (
	ErrUnsupportedFormat = errors.New("output: unsupported format")
	ErrUnknownField      = errors.New("record: unknown field")
	ErrPayloadTooLarge   = errors.New("payload: payload too large")
	ErrCacheMiss         = errors.New("cache: cache miss")
	ErrCircuitOpen       = errors.New("cache: circuit breaker is open")
)
