package domain

import "errors"

// Sentinel errors for classifying failures across packages.
// Callers wrap these so the CLI can handle error categories uniformly.
//
//	return fmt.Errorf("tunnel section: %w", domain.ErrInvalidConfig)
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the request was rejected due to
	// invalid, expired, or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the remote API throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrConflict indicates a state or uniqueness conflict, such as
	// a DNS record that already exists.
	ErrConflict = errors.New("conflict")

	// ErrInvalidConfig indicates a missing or structurally invalid
	// deployment input. It is raised by validation before any artifact
	// is built and is never retried.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDecode indicates a malformed or incomplete tunnel token.
	ErrDecode = errors.New("decode failed")
)
