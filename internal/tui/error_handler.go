package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ajramos/inboxtui/internal/config"
	"github.com/ajramos/inboxtui/internal/shortcuts"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
)

// LogLevel represents the severity of a message
type LogLevel int

const (
	LogLevelInfo LogLevel = iota
	LogLevelWarning
	LogLevelError
	LogLevelSuccess
)

const statusClearDelay = 5 * time.Second

// ErrorHandler provides consistent error handling and user feedback in the
// status bar
type ErrorHandler struct {
	mu         sync.RWMutex
	app        *tview.Application
	appRef     *App // Reference to main App for palette and baseline status
	statusView *tview.TextView
	logger     zerolog.Logger

	// Status message state
	currentStatus    string
	persistentStatus string
	statusTimer      *time.Timer
	clearDelay       time.Duration
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(app *tview.Application, appRef *App, statusView *tview.TextView, logger zerolog.Logger) *ErrorHandler {
	return &ErrorHandler{
		app:        app,
		appRef:     appRef,
		statusView: statusView,
		logger:     logger,
		clearDelay: statusClearDelay,
	}
}

// HandleError logs err and shows userMsg
func (eh *ErrorHandler) HandleError(ctx context.Context, err error, userMsg string) {
	if err == nil {
		return
	}

	eh.logger.Error().Err(err).Msg(userMsg)

	if userMsg == "" {
		userMsg = "An error occurred"
	}

	eh.show(userMsg, LogLevelError)
}

// ShowMessage displays a message that clears itself after a few seconds
func (eh *ErrorHandler) ShowMessage(ctx context.Context, msg string, level LogLevel) {
	if strings.TrimSpace(msg) == "" {
		return
	}
	eh.logger.WithLevel(eh.zerologLevel(level)).Msg(msg)
	eh.show(msg, level)
}

func (eh *ErrorHandler) show(msg string, level LogLevel) {
	formatted := eh.formatMessage(msg, level)
	eh.queue(func() { eh.updateStatusMessage(formatted, level) })
}

// ShowPersistentMessage shows a status message that stays until cleared
func (eh *ErrorHandler) ShowPersistentMessage(ctx context.Context, msg string, level LogLevel) {
	formatted := eh.formatMessage(msg, level)

	eh.mu.Lock()
	eh.persistentStatus = formatted
	eh.mu.Unlock()

	eh.queue(eh.refreshStatusDisplay)
}

// ClearPersistentMessage clears the persistent status message
func (eh *ErrorHandler) ClearPersistentMessage() {
	eh.mu.Lock()
	eh.persistentStatus = ""
	eh.mu.Unlock()

	eh.queue(eh.refreshStatusDisplay)
}

// queue runs f on the UI goroutine
func (eh *ErrorHandler) queue(f func()) {
	switch {
	case eh.appRef != nil && eh.appRef.schedule != nil:
		eh.appRef.schedule(f)
	case eh.app != nil:
		go eh.app.QueueUpdateDraw(f)
	}
}

// formatMessage formats a message with an icon and the level color
func (eh *ErrorHandler) formatMessage(msg string, level LogLevel) string {
	var icon string

	switch level {
	case LogLevelInfo:
		icon = "ℹ"
	case LogLevelWarning:
		icon = "⚠"
	case LogLevelError:
		icon = "✗"
	case LogLevelSuccess:
		icon = "✓"
	default:
		icon = "•"
	}

	text := fmt.Sprintf("%s %s", icon, tview.Escape(msg))
	if color := eh.levelToColor(level); color != "" {
		return fmt.Sprintf("[%s]%s[-]", color, text)
	}
	return text
}

func (eh *ErrorHandler) zerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LogLevelWarning:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// levelToColor returns the palette color tag for a level, empty without a palette
func (eh *ErrorHandler) levelToColor(level LogLevel) config.Color {
	if eh.appRef == nil {
		return ""
	}
	p := eh.appRef.currentPalette()
	switch level {
	case LogLevelWarning:
		return p.Starred
	case LogLevelError:
		return p.Error
	case LogLevelSuccess:
		return p.Success
	default:
		return p.Title
	}
}

// updateStatusMessage updates the status message with auto-clear
func (eh *ErrorHandler) updateStatusMessage(msg string, level LogLevel) {
	eh.mu.Lock()
	if eh.statusTimer != nil {
		eh.statusTimer.Stop()
	}
	eh.currentStatus = msg
	delay := eh.clearDelay
	if delay <= 0 {
		delay = statusClearDelay
	}
	eh.statusTimer = time.AfterFunc(delay, func() {
		eh.queue(func() { eh.clearCurrentStatus(msg) })
	})
	eh.mu.Unlock()

	eh.refreshStatusDisplay()
}

// clearCurrentStatus clears the message unless a newer one replaced it
func (eh *ErrorHandler) clearCurrentStatus(expected string) {
	eh.mu.Lock()
	if eh.currentStatus == expected {
		eh.currentStatus = ""
	}
	eh.mu.Unlock()
	eh.refreshStatusDisplay()
}

// refreshStatusDisplay shows the current message, else the persistent one,
// else the baseline
func (eh *ErrorHandler) refreshStatusDisplay() {
	if eh.statusView == nil {
		return
	}

	eh.mu.RLock()
	displayText := eh.currentStatus
	if displayText == "" {
		displayText = eh.persistentStatus
	}
	eh.mu.RUnlock()

	if displayText == "" {
		displayText = eh.getBaselineStatus()
	}
	eh.statusView.SetText(displayText)
}

// getBaselineStatus returns the idle status text
func (eh *ErrorHandler) getBaselineStatus() string {
	if eh.appRef != nil && eh.appRef.keys != nil {
		return eh.appRef.statusBaseline()
	}
	return "inboxtui • ? help"
}

// statusBaseline names the help and search keys
func (a *App) statusBaseline() string {
	parts := []string{"inboxtui"}
	if k := a.keys.Binding(shortcuts.IntentToggleHelp); k != "" {
		parts = append(parts, k+" help")
	}
	if k := a.keys.Binding(shortcuts.IntentFocusSearch); k != "" {
		parts = append(parts, k+" search")
	}
	if k := a.keys.Binding(shortcuts.IntentCompose); k != "" {
		parts = append(parts, k+" compose")
	}
	return tview.Escape(strings.Join(parts, " • "))
}

// ShowInfo shows an info message
func (eh *ErrorHandler) ShowInfo(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelInfo)
}

// ShowWarning shows a warning message
func (eh *ErrorHandler) ShowWarning(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelWarning)
}

// ShowError shows an error message
func (eh *ErrorHandler) ShowError(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelError)
}

// ShowSuccess shows a success message
func (eh *ErrorHandler) ShowSuccess(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelSuccess)
}

// ShowProgress shows a progress message
func (eh *ErrorHandler) ShowProgress(ctx context.Context, msg string) {
	eh.ShowPersistentMessage(ctx, msg, LogLevelInfo)
}

// ClearProgress clears any progress message
func (eh *ErrorHandler) ClearProgress() {
	eh.ClearPersistentMessage()
}
