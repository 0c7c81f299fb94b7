package tui

import (
	"errors"
	"fmt"

	"github.com/ajramos/inboxtui/internal/services"
	"github.com/ajramos/inboxtui/internal/shortcuts"
	"github.com/ajramos/inboxtui/internal/viewstate"
)

// renderStatus reports a newly failed operation and the loading state
func (a *App) renderStatus(s viewstate.State) {
	// error values need not be comparable
	if s.Err != nil && (a.shownErr == nil || !errors.Is(s.Err, a.shownErr)) {
		msg := describeError(s.Err)
		if services.IsRetryableError(s.Err) {
			if key := a.keys.Binding(shortcuts.IntentRefreshList); key != "" {
				msg += fmt.Sprintf(" (%s to retry)", key)
			}
		}
		a.errorHandler.HandleError(a.ctx, s.Err, msg)
	}
	a.shownErr = s.Err

	switch {
	case s.Loading && !a.last.Loading:
		a.errorHandler.ShowProgress(a.ctx, "Loading…")
	case !s.Loading && a.last.Loading:
		a.errorHandler.ClearProgress()
	}
}

// describeError turns a service error into a short user message
func describeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, services.ErrNetworkUnavailable):
		return "network unavailable"
	case errors.Is(err, services.ErrTimeout):
		return "request timed out"
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrForbidden):
		return "not authorized"
	case errors.Is(err, services.ErrRateLimited):
		return "rate limited, try again shortly"
	case errors.Is(err, services.ErrNotFound):
		return "message no longer exists"
	case errors.Is(err, services.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, services.ErrAIDisabled), errors.Is(err, services.ErrUnsupported):
		return "not available with this backend"
	case errors.Is(err, services.ErrAIServiceDown):
		return "AI service unavailable"
	case errors.Is(err, services.ErrPreferenceStorage):
		return "theme preference not saved"
	case errors.Is(err, services.ErrServiceUnavailable):
		return "mail service unavailable"
	default:
		return err.Error()
	}
}
