package tui

import (
	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/rivo/tview"
)

const (
	pageMain    = "main"
	pageCompose = "compose"
	pageLabels  = "labels"
	pageHelp    = "help"
)

// views holds the widgets of the main page
type views struct {
	sidebar *tview.List
	search  *tview.InputField
	list    *tview.Table
	header  *tview.TextView
	body    *tview.TextView
	summary *tview.TextView
	status  *tview.TextView
	help    *tview.TextView

	listContainer *tview.Flex
	textContainer *tview.Flex
	main          *tview.Flex
}

// initComponents builds the main page: labels on the left, search and the
// message list in the middle, the open message on the right and a status
// bar at the bottom
func (a *App) initComponents() {
	v := &views{}

	v.sidebar = tview.NewList().ShowSecondaryText(false).SetHighlightFullLine(true)
	v.sidebar.SetBorder(true).SetTitle(" Labels ").SetTitleAlign(tview.AlignLeft)
	v.sidebar.SetSelectedFunc(func(_ int, _ string, label string, _ rune) {
		if a.rendering || a.orch == nil {
			return
		}
		a.orch.SetLabel(a.ctx, label)
		a.SetFocus(a.views.list)
	})

	v.search = tview.NewInputField().SetLabel(searchLabel(mail.SearchKeyword))
	v.search.SetDoneFunc(a.searchDone)

	v.list = tview.NewTable().SetSelectable(true, false).SetFixed(0, 0)
	v.list.SetBorder(true).SetTitle(" Messages ").SetTitleAlign(tview.AlignCenter)
	v.list.SetSelectionChangedFunc(func(row, _ int) {
		if a.rendering || a.orch == nil {
			return
		}
		if id := a.rowID(row); id != "" {
			a.orch.Select(a.ctx, id)
		}
	})

	v.listContainer = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.search, 1, 0, false).
		AddItem(v.list, 0, 1, true)

	v.header = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	v.body = tview.NewTextView().SetDynamicColors(false).SetWrap(true).SetScrollable(true)
	v.summary = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	v.summary.SetBorder(true).SetTitle(" AI Summary ")

	v.textContainer = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.header, 7, 0, false).
		AddItem(v.summary, 0, 0, false).
		AddItem(v.body, 0, 1, false)
	v.textContainer.SetBorder(true).SetTitle(" Message ").SetTitleAlign(tview.AlignCenter)

	columns := tview.NewFlex().
		AddItem(v.sidebar, 24, 0, false).
		AddItem(v.listContainer, 0, 3, true).
		AddItem(v.textContainer, 0, 4, false)

	v.status = tview.NewTextView().SetDynamicColors(true)

	v.main = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(columns, 0, 1, true).
		AddItem(v.status, 1, 0, false)

	v.help = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	v.help.SetBorder(true).SetTitle(" Keyboard shortcuts ").SetTitleAlign(tview.AlignCenter)

	a.views = v
	a.Pages = tview.NewPages().AddPage(pageMain, v.main, true, true)
	a.applyPalette(a.palette)
}

// cycleFocus moves focus sidebar -> list -> message
func (a *App) cycleFocus() {
	switch a.GetFocus() {
	case a.views.sidebar:
		a.SetFocus(a.views.list)
	case a.views.list:
		a.SetFocus(a.views.body)
	default:
		a.SetFocus(a.views.sidebar)
	}
}
