// Package errs contains sentinel errors and error kinds used across layers
// for stable error-to-status mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across store/gateway/handler layers.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrUnauthorized indicates a missing or invalid session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoToken indicates the user has no stored broker access token.
	ErrNoToken = errors.New("kite access token not found")

	// ErrTokenExpired indicates the stored broker access token is past its expiry.
	ErrTokenExpired = errors.New("kite access token expired")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// RemoteError wraps an upstream broker failure. Nothing is retried; the
// upstream message is surfaced as-is.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("kite %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
