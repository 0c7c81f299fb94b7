package tui

import (
	"testing"

	"github.com/ajramos/inboxtui/internal/config"
	"github.com/ajramos/inboxtui/internal/shortcuts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWelcomeShortcuts_Defaults(t *testing.T) {
	a := &App{keys: shortcuts.NewDefault()}

	assert.Equal(t,
		"[o,enter Open message]  [j Next message]  [/ Search]  [c Compose]  [? Keyboard shortcuts]",
		a.getWelcomeShortcuts(false))
	assert.Equal(t,
		"[r Refresh]  [i Go to Inbox]  [c Compose]  [? Keyboard shortcuts]",
		a.getWelcomeShortcuts(true))
}

func TestGetWelcomeShortcuts_CustomBindings(t *testing.T) {
	keys := config.DefaultKeyBindings()
	keys.Help = "h"
	keys.FocusSearch = "ctrl+f"
	keys.Refresh = ""
	d, err := shortcuts.New(keys)
	require.NoError(t, err)
	a := &App{keys: d}

	open := a.getWelcomeShortcuts(false)
	assert.Contains(t, open, "[h Keyboard shortcuts]")
	assert.Contains(t, open, "[ctrl+f Search]")

	empty := a.getWelcomeShortcuts(true)
	assert.NotContains(t, empty, "Refresh", "unbound intents are left out")
	assert.Contains(t, empty, "[i Go to Inbox]")
}

func TestWelcomeText(t *testing.T) {
	a := &App{keys: shortcuts.NewDefault()}

	assert.Contains(t, a.welcomeText(true), "No messages here.")
	assert.Contains(t, a.welcomeText(false), "No message open.")
	assert.Contains(t, a.welcomeText(false), "[o,enter Open message]")
}
