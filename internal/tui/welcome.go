package tui

import (
	"fmt"
	"strings"

	"github.com/ajramos/inboxtui/internal/shortcuts"
)

// welcomeText is the message pane content while nothing is open
func (a *App) welcomeText(empty bool) string {
	var b strings.Builder
	if empty {
		b.WriteString("No messages here.\n\n")
	} else {
		b.WriteString("No message open.\n\n")
	}
	b.WriteString(a.getWelcomeShortcuts(empty))
	return b.String()
}

// getWelcomeShortcuts lists the most useful bound keys for the empty state
func (a *App) getWelcomeShortcuts(empty bool) string {
	intents := []shortcuts.Intent{
		shortcuts.IntentOpenSelectedOrFirst,
		shortcuts.IntentSelectNext,
		shortcuts.IntentFocusSearch,
		shortcuts.IntentCompose,
		shortcuts.IntentToggleHelp,
	}
	if empty {
		intents = []shortcuts.Intent{
			shortcuts.IntentRefreshList,
			shortcuts.IntentGoInbox,
			shortcuts.IntentCompose,
			shortcuts.IntentToggleHelp,
		}
	}

	var parts []string
	for _, in := range intents {
		key := a.keys.Binding(in)
		if key == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%s %s]", key, in.Description()))
	}
	return strings.Join(parts, "  ")
}
