package tui

import (
	"fmt"
	"strings"

	"github.com/ajramos/inboxtui/internal/config"
	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const labelHint = "Enter: view  Del: delete  Tab: new label  Esc: close"

// LabelManager is the label-manager overlay: pick a label to view it,
// create new labels, delete user labels
type LabelManager struct {
	*tview.Flex
	app *App

	list  *tview.List
	name  *tview.InputField
	color *tview.InputField
	hint  *tview.TextView
}

// NewLabelManager creates the label manager overlay
func NewLabelManager(app *App) *LabelManager {
	m := &LabelManager{app: app}

	m.list = tview.NewList().ShowSecondaryText(false).SetHighlightFullLine(true)
	m.list.SetSelectedFunc(func(_ int, _ string, name string, _ rune) {
		if app.orch == nil {
			return
		}
		app.orch.SetLabel(app.ctx, name)
		app.orch.SetOverlay(mail.OverlayNone)
	})
	m.list.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Key() {
		case tcell.KeyDelete:
			m.deleteCurrent()
			return nil
		case tcell.KeyTab:
			app.SetFocus(m.name)
			return nil
		}
		return ev
	})

	m.name = tview.NewInputField().SetLabel("New label ")
	m.color = tview.NewInputField().SetLabel("Color ").SetFieldWidth(10).SetPlaceholder("#16a766")
	m.name.SetDoneFunc(m.fieldDone)
	m.color.SetDoneFunc(m.fieldDone)

	m.hint = tview.NewTextView().SetDynamicColors(true).SetText(labelHint)

	form := tview.NewFlex().
		AddItem(m.name, 0, 2, false).
		AddItem(m.color, 18, 0, false)

	m.Flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(m.list, 0, 1, true).
		AddItem(form, 1, 0, false).
		AddItem(m.hint, 1, 0, false)
	m.Flex.SetBorder(true).SetTitle(" Labels ").SetTitleAlign(tview.AlignCenter)
	return m
}

// SetLabels refreshes the list, keeping the cursor on the same label
func (m *LabelManager) SetLabels(labels []mail.Label, active string) {
	current := ""
	if m.list.GetItemCount() > 0 {
		_, current = m.list.GetItemText(m.list.GetCurrentItem())
	}
	if current == "" {
		current = active
	}

	m.list.Clear()
	idx := 0
	for i, name := range sidebarLabels(labels) {
		text := name
		for _, l := range labels {
			if strings.EqualFold(l.Name, name) {
				text = fmt.Sprintf("%-24s %5d", name, l.ItemCount)
				break
			}
		}
		if isSystem(name) {
			text = "[::d]" + tview.Escape(text)
		} else {
			text = tview.Escape(text)
		}
		m.list.AddItem(text, name, 0, nil)
		if strings.EqualFold(name, current) {
			idx = i
		}
	}
	m.list.SetCurrentItem(idx)
}

// suggestFor asks the AI backend which labels fit the open message and
// shows the answer in the hint line
func (m *LabelManager) suggestFor(itemID string) {
	m.hint.SetText(labelHint)
	ai := m.app.ai
	if itemID == "" || ai == nil || !ai.Enabled() {
		return
	}
	m.app.async(func() {
		cat, err := ai.SuggestLabels(m.app.ctx, itemID)
		m.app.schedule(func() {
			if err != nil {
				m.app.logger.Debug().Err(err).Str("item_id", itemID).Msg("label suggestions unavailable")
				return
			}
			if cat == nil || len(cat.SuggestedLabels) == 0 {
				return
			}
			text := "Suggested: " + strings.Join(cat.SuggestedLabels, ", ")
			if cat.Priority != "" {
				text += fmt.Sprintf(" (priority %s)", cat.Priority)
			}
			m.hint.SetText(tview.Escape(text))
		})
	})
}

func (m *LabelManager) focusList() {
	m.app.SetFocus(m.list)
}

func (m *LabelManager) fieldDone(key tcell.Key) {
	switch key {
	case tcell.KeyEnter:
		m.create()
	case tcell.KeyTab:
		if m.app.GetFocus() == m.name {
			m.app.SetFocus(m.color)
		} else {
			m.focusList()
		}
	case tcell.KeyEscape:
		m.focusList()
	}
}

func (m *LabelManager) create() {
	name := strings.TrimSpace(m.name.GetText())
	color := strings.TrimSpace(m.color.GetText())
	eh := m.app.GetErrorHandler()
	if name == "" || m.app.labels == nil {
		return
	}
	m.app.async(func() {
		_, err := m.app.labels.CreateLabel(m.app.ctx, name, color)
		m.app.schedule(func() {
			if err != nil {
				eh.HandleError(m.app.ctx, err, fmt.Sprintf("Could not create %q: %s", name, describeError(err)))
				return
			}
			m.name.SetText("")
			m.color.SetText("")
			eh.ShowSuccess(m.app.ctx, fmt.Sprintf("Label %q created", name))
			m.focusList()
		})
	})
}

func (m *LabelManager) deleteCurrent() {
	if m.list.GetItemCount() == 0 || m.app.labels == nil {
		return
	}
	_, name := m.list.GetItemText(m.list.GetCurrentItem())
	eh := m.app.GetErrorHandler()
	if isSystem(name) {
		eh.ShowWarning(m.app.ctx, fmt.Sprintf("%s is a system label", name))
		return
	}
	m.app.async(func() {
		err := m.app.labels.DeleteLabel(m.app.ctx, name)
		m.app.schedule(func() {
			if err != nil {
				eh.HandleError(m.app.ctx, err, fmt.Sprintf("Could not delete %q: %s", name, describeError(err)))
				return
			}
			eh.ShowSuccess(m.app.ctx, fmt.Sprintf("Label %q deleted", name))
		})
	})
}

func (m *LabelManager) applyPalette(p config.Palette) {
	bg, fg := p.Background.Color(), p.Foreground.Color()
	m.Flex.SetBackgroundColor(bg)
	m.Flex.SetBorderColor(p.Focus.Color()).SetTitleColor(p.Title.Color())
	m.list.SetBackgroundColor(bg)
	m.list.SetMainTextColor(fg).SetSelectedBackgroundColor(p.Selection.Color()).SetSelectedTextColor(fg)
	for _, f := range []*tview.InputField{m.name, m.color} {
		f.SetBackgroundColor(bg)
		f.SetFieldBackgroundColor(p.Selection.Color()).SetFieldTextColor(fg).SetLabelColor(p.Title.Color())
	}
	m.hint.SetBackgroundColor(bg)
	m.hint.SetTextColor(p.Read.Color())
}
