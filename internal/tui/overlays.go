package tui

import (
	"fmt"
	"strings"

	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/ajramos/inboxtui/internal/viewstate"
	"github.com/rivo/tview"
)

var overlayPages = map[mail.Overlay]string{
	mail.OverlayCompose:      pageCompose,
	mail.OverlayHelp:         pageHelp,
	mail.OverlayLabelManager: pageLabels,
}

// renderOverlay shows the single topmost overlay page. Focus moves into an
// overlay when it opens and back to the list when it closes.
func (a *App) renderOverlay(s viewstate.State) {
	if s.Overlay == mail.OverlayLabelManager {
		a.labelManager.SetLabels(s.Labels, s.Filter.Label)
	}
	if s.Overlay == a.last.Overlay {
		return
	}

	for ov, page := range overlayPages {
		if ov != s.Overlay {
			a.Pages.HidePage(page)
		}
	}

	switch s.Overlay {
	case mail.OverlayNone:
		a.Pages.SwitchToPage(pageMain)
		a.SetFocus(a.views.list)
	case mail.OverlayCompose:
		a.Pages.ShowPage(pageCompose)
		a.composer.focusForm()
	case mail.OverlayHelp:
		a.views.help.SetText(a.helpText()).ScrollToBeginning()
		a.Pages.ShowPage(pageHelp)
		a.SetFocus(a.views.help)
	case mail.OverlayLabelManager:
		a.Pages.ShowPage(pageLabels)
		a.labelManager.focusList()
		a.labelManager.suggestFor(s.Selection)
	}
}

// modal centers p in a width x height box over the main page
func modal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

// helpText lists every bound shortcut in match order
func (a *App) helpText() string {
	p := a.currentPalette()
	var b strings.Builder
	fmt.Fprintf(&b, "[%s::b]Keyboard shortcuts[-::-]\n\n", p.Title)
	for _, row := range a.keys.Describe() {
		line := fmt.Sprintf("  [%s]%-14s[-] %s", p.Focus, tview.Escape(row.Keys), row.Description)
		if row.ShadowedBy != 0 {
			line += fmt.Sprintf(" [%s](shadowed by %s)[-]", p.Read, row.ShadowedBy.Description())
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "\n  [%s]Tab[-] cycles focus between labels, messages and the open message", p.Read)
	fmt.Fprintf(&b, "\n  [%s]Ctrl+C[-] quits", p.Read)
	return b.String()
}
