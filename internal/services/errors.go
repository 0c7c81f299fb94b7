package services

import "errors"

// Standard service errors
var (
	// Network and connectivity errors
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrTimeout            = errors.New("operation timed out")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("access forbidden")

	// Data errors
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input provided")
	ErrInvalidFormat = errors.New("invalid format")

	// Service errors
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrRateLimited        = errors.New("rate limited")
	ErrUnsupported        = errors.New("operation not supported by backend")

	// AI errors
	ErrAIServiceDown = errors.New("AI service down")
	ErrAIDisabled    = errors.New("AI assistance not configured")

	// Mail errors
	ErrInvalidItemID     = errors.New("invalid message ID")
	ErrInvalidLabel      = errors.New("invalid label")
	ErrUnknownOperation  = errors.New("unknown mutation operation")
	ErrPreferenceStorage = errors.New("preference storage unavailable")
)

// IsRetryableError determines if an error is transient. Nothing in the
// mutation path retries; the UI uses this to phrase the status message.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrNetworkUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrRateLimited)
}

// IsPermanentError determines if an error is permanent
func IsPermanentError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidItemID) ||
		errors.Is(err, ErrInvalidLabel) ||
		errors.Is(err, ErrUnsupported)
}
