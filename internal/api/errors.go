package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ajramos/inboxtui/internal/services"
)

// StatusError is a non-2xx response from the mail API. It unwraps to the
// matching services sentinel so callers can use errors.Is.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, msg)
}

// Unwrap maps the status code to a sentinel error
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusNotFound:
		return services.ErrNotFound
	case e.Code == http.StatusUnauthorized:
		return services.ErrUnauthorized
	case e.Code == http.StatusForbidden:
		return services.ErrForbidden
	case e.Code == http.StatusTooManyRequests:
		return services.ErrRateLimited
	case e.Code == http.StatusBadRequest || e.Code == http.StatusUnprocessableEntity:
		return services.ErrInvalidInput
	case e.Code == http.StatusNotImplemented:
		return services.ErrUnsupported
	case e.Code >= 500:
		return services.ErrServiceUnavailable
	default:
		return nil
	}
}
