package ports

import "errors"

// Standard application-level errors.
// Adapters wrap underlying infrastructure errors with these so callers can use errors.Is.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Journal Errors
	ErrMalformedTrade = errors.New("malformed trade record")

	// Remote Source Errors (REST backend, exchange price feed)
	ErrSourceUnavailable    = errors.New("trade source is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to remote service")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed (check credentials)")
	ErrInvalidResponse      = errors.New("unexpected response from remote service")

	// Database Specific Errors
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
	ErrUpdateFailed   = errors.New("database update failed")
)
