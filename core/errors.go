package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors. Use errors.Is to branch on the category of a failure.
var (
	// ErrInvalidArgument is wrapped by every ValidationError. It is raised
	// before any network I/O takes place.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRequestFailed is wrapped by RequestError when the HTTP call could
	// not complete (DNS, connect, timeout, proxy authentication).
	ErrRequestFailed = errors.New("Failed to execute request")

	// ErrAPI, ErrOAuth and ErrRateLimited are wrapped by APIError according
	// to its Kind.
	ErrAPI         = errors.New("reloadly API error")
	ErrOAuth       = errors.New("reloadly OAuth error")
	ErrRateLimited = errors.New("reloadly rate limit exceeded")

	// ErrResponseTooLarge is wrapped by RequestError when a response body
	// is longer than the client reads.
	ErrResponseTooLarge = errors.New("response body exceeds limit")

	// ErrTokenExpired is returned by a session that was built from an access
	// token only, once that token is no longer usable.
	ErrTokenExpired = errors.New("access token expired and no client credentials are available to fetch a new one")
)

// ErrCredentials is the construction failure for a client that has neither a
// usable access token nor a client id and secret pair.
var ErrCredentials error = &ValidationError{
	Field:   "credentials",
	Message: "Either a valid access token or both client id & client secret must be provided",
}

// ValidationError reports an invalid argument. Message names the offending
// field, e.g. "'Operator id' must be greater than zero!".
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// RequestError wraps a transport-level failure. The original cause is kept
// for inspection with errors.As / errors.Is.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return ErrRequestFailed.Error()
	}

	return fmt.Sprintf("%s: %v", ErrRequestFailed, e.Err)
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRequestFailed}
	}

	return []error{ErrRequestFailed, e.Err}
}

// ErrorKind tags the variant of an APIError.
type ErrorKind int

const (
	// KindAPI is a generic server error.
	KindAPI ErrorKind = iota
	// KindOAuth is an error returned by the token endpoint.
	KindOAuth
	// KindRateLimit is an HTTP 429 response.
	KindRateLimit
)

func (k ErrorKind) String() string {
	switch k {
	case KindOAuth:
		return "oauth"
	case KindRateLimit:
		return "rate_limit"
	default:
		return "api"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindOAuth:
		return ErrOAuth
	case KindRateLimit:
		return ErrRateLimited
	default:
		return ErrAPI
	}
}

// RateLimit carries the X-RateLimit-* response headers of a 429 response.
// Each field is -1 when the corresponding header was missing or malformed.
type RateLimit struct {
	Limit     int64
	Remaining int64
	// ResetAt is the UNIX timestamp at which the rate-limit window resets.
	ResetAt int64
}

// ResetTime returns ResetAt as a time, or the zero time when it is unknown.
func (r RateLimit) ResetTime() time.Time {
	if r.ResetAt < 0 {
		return time.Time{}
	}

	return time.Unix(r.ResetAt, 0)
}

// APIError is a non-2xx response from a Reloadly server, or a 2xx response
// whose body could not be decoded.
//
// Kind selects the variant. RateLimit is non-nil only for KindRateLimit.
type APIError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Path       string
	ErrorCode  string
	InfoLink   string
	Timestamp  time.Time
	Details    []any
	RateLimit  *RateLimit

	// Err is the underlying cause, e.g. a JSON decode error.
	Err error
}

func (e *APIError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "reloadly %s error (%d", e.Kind, e.StatusCode)

	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}

	b.WriteString(")")

	if e.ErrorCode != "" {
		fmt.Fprintf(&b, " [%s]", e.ErrorCode)
	}

	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	return b.String()
}

func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}

	return []error{e.Kind.sentinel(), e.Err}
}

// IsExpiredToken reports whether the server rejected the token because it
// expired.
func (e *APIError) IsExpiredToken() bool {
	return e.Kind == KindOAuth && strings.EqualFold(strings.TrimSpace(e.ErrorCode), ErrorCodeTokenExpired)
}

// ErrorCodeTokenExpired is the error code the token endpoint reports for an
// expired token.
const ErrorCodeTokenExpired = "TOKEN_EXPIRED"

// AsAPIError extracts an APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsOAuthError reports whether err is an APIError of KindOAuth.
func IsOAuthError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindOAuth
}

// IsRateLimitError reports whether err is an APIError of KindRateLimit.
func IsRateLimitError(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindRateLimit
}

// IsExpiredToken reports whether err is an OAuth error signalling an
// expired token.
func IsExpiredToken(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.IsExpiredToken()
}

// IsTransportError reports whether err (or any error in its chain) is a
// RequestError.
func IsTransportError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}
