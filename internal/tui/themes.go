package tui

import (
	"github.com/ajramos/inboxtui/internal/config"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// ApplyTheme switches the palette and restyles every widget
func (a *App) ApplyTheme(dark bool) {
	a.mu.Lock()
	a.palette = a.palettes.For(dark)
	a.mu.Unlock()
	a.schedule(func() { a.applyPalette(a.currentPalette()) })
}

func (a *App) currentPalette() config.Palette {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.palette
}

// applyPalette restyles every widget. Runs on the UI goroutine.
func (a *App) applyPalette(p config.Palette) {
	bg, fg := p.Background.Color(), p.Foreground.Color()

	tview.Styles.PrimitiveBackgroundColor = bg
	tview.Styles.ContrastBackgroundColor = p.Selection.Color()
	tview.Styles.PrimaryTextColor = fg
	tview.Styles.BorderColor = p.Border.Color()
	tview.Styles.TitleColor = p.Title.Color()

	v := a.views
	boxes := []*tview.Box{
		v.sidebar.Box, v.list.Box, v.header.Box, v.body.Box, v.summary.Box,
		v.status.Box, v.help.Box, v.textContainer.Box, v.listContainer.Box, v.main.Box,
	}
	for _, b := range boxes {
		b.SetBackgroundColor(bg)
		b.SetBorderColor(p.Border.Color())
		b.SetTitleColor(p.Title.Color())
	}

	v.sidebar.SetMainTextColor(fg).
		SetSelectedBackgroundColor(p.Selection.Color()).
		SetSelectedTextColor(fg)
	v.search.SetBackgroundColor(bg)
	v.search.SetFieldBackgroundColor(p.Selection.Color()).
		SetFieldTextColor(fg).
		SetLabelColor(p.Title.Color())
	v.list.SetSelectedStyle(tcell.StyleDefault.Background(p.Selection.Color()).Foreground(fg))
	v.header.SetTextColor(p.Title.Color())
	v.body.SetTextColor(fg)
	v.summary.SetTextColor(fg)
	v.status.SetTextColor(fg)
	v.help.SetTextColor(fg)

	if a.composer != nil {
		a.composer.applyPalette(p)
	}
	if a.labelManager != nil {
		a.labelManager.applyPalette(p)
	}
	// Rows carry per-item colors
	if a.last.Filter.Label != "" {
		a.rendering = true
		a.renderList(a.last)
		a.rendering = false
	}
}
