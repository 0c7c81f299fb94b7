package shortcuts

import "github.com/rivo/tview"

// TextEntry is implemented by custom primitives that accept free text
type TextEntry interface {
	AcceptsTextInput() bool
}

// SuppressesShortcuts reports whether focus is a free-text editing primitive
func SuppressesShortcuts(focus tview.Primitive) bool {
	switch p := focus.(type) {
	case nil:
		return false
	case *tview.InputField, *tview.TextArea:
		return true
	case TextEntry:
		return p.AcceptsTextInput()
	}
	return false
}
