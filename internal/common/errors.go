// Package common defines shared sentinel errors and error types used across
// the Cohort Tools API layers. Callers should use errors.Is to match the
// sentinel values.
package common

import "errors"

var (
	// repository-level errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// service-level errors (generic flow control)
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorRateLimited  = errors.New("rate limited")

	// auth errors (invalid, malformed or expired token)
	ErrorInvalidToken = errors.New("invalid token")
)
