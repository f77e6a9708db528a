package errors

import "errors"

// Configuration errors.
var (
	ErrMissingCredentials = errors.New("set RELOADLY_ACCESS_TOKEN or both RELOADLY_CLIENT_ID and RELOADLY_CLIENT_SECRET")
	ErrInvalidProxy       = errors.New("invalid proxy configuration")
)

// Command errors.
var (
	ErrUnknownOutput  = errors.New("unknown output format")
	ErrUnknownService = errors.New("unknown service")
)
