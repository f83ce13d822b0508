// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service/transport layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	// The service layer turns it into a nil result for lookups.
	ErrNotFound = errors.New("not found")

	// ErrStore indicates a storage or transport failure talking to the data store.
	ErrStore = errors.New("store error")

	// ErrInvalidArgument indicates malformed input (empty name, bad id).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownField indicates form data carrying a key outside the field schema.
	ErrUnknownField = errors.New("unknown form field")

	// ErrRateLimited indicates a temporary lock on share link lookups.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., share token taken).
	ErrAlreadyExists = errors.New("already exists")
)
