package atmos

import "errors"

var (
	// ErrUnsupportedOperation is returned when an operation type has no
	// mapping for the requested request family. It is a caller bug and must not
	// be retried.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrNotImplemented is returned for request families this driver does not
	// provide, such as plain path requests.
	ErrNotImplemented = errors.New("not implemented")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidSecret is returned when a secret is not valid base64
	ErrInvalidSecret = errors.New("invalid secret")
	// ErrUnauthorized is returned when signature verification fails
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoNodes is returned when no storage node address is configured
	ErrNoNodes = errors.New("no storage nodes configured")
)
