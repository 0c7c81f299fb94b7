package tui

import (
	"fmt"
	"strings"

	"github.com/ajramos/inboxtui/internal/config"
	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/rivo/tview"
)

// CompositionPanel is the compose overlay: the draft form plus a list of
// AI suggested bodies
type CompositionPanel struct {
	*tview.Flex
	app *App

	form        *tview.Form
	to          *tview.InputField
	cc          *tview.InputField
	subject     *tview.InputField
	body        *tview.TextArea
	suggestions *tview.List

	// UI goroutine only
	sending bool
}

// NewCompositionPanel creates the compose overlay
func NewCompositionPanel(app *App) *CompositionPanel {
	c := &CompositionPanel{app: app}

	c.to = tview.NewInputField().SetLabel("To")
	c.cc = tview.NewInputField().SetLabel("Cc")
	c.subject = tview.NewInputField().SetLabel("Subject")
	c.body = tview.NewTextArea().SetLabel("Body").SetSize(10, 0)

	c.form = tview.NewForm().
		AddFormItem(c.to).
		AddFormItem(c.cc).
		AddFormItem(c.subject).
		AddFormItem(c.body).
		AddButton("Send", c.send).
		AddButton("Suggest", c.suggest).
		AddButton("Cancel", c.cancel)
	c.form.SetCancelFunc(c.cancel)
	c.form.SetBorder(true).SetTitle(" Compose ").SetTitleAlign(tview.AlignCenter)

	c.suggestions = tview.NewList().ShowSecondaryText(false)
	c.suggestions.SetBorder(true).SetTitle(" Suggestions ")

	c.Flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(c.form, 0, 1, true).
		AddItem(c.suggestions, 0, 0, false)
	return c
}

// Draft returns the message described by the form
func (c *CompositionPanel) Draft() mail.Draft {
	return mail.Draft{
		To:      mail.SplitAddresses(c.to.GetText()),
		CC:      mail.SplitAddresses(c.cc.GetText()),
		Subject: strings.TrimSpace(c.subject.GetText()),
		Body:    c.body.GetText(),
	}
}

// Reset clears the form and the suggestions
func (c *CompositionPanel) Reset() {
	c.to.SetText("")
	c.cc.SetText("")
	c.subject.SetText("")
	c.body.SetText("", false)
	c.showSuggestions(nil)
	c.form.SetFocus(0)
	c.sending = false
}

func (c *CompositionPanel) focusForm() {
	c.app.SetFocus(c.form)
}

func (c *CompositionPanel) cancel() {
	if c.app.orch != nil {
		c.app.orch.SetOverlay(mail.OverlayNone)
	}
}

func (c *CompositionPanel) send() {
	if c.sending || c.app.compose == nil {
		return
	}
	draft := c.Draft()
	c.sending = true
	c.form.SetTitle(" Compose (sending…) ")
	eh := c.app.GetErrorHandler()

	c.app.async(func() {
		_, err := c.app.compose.Send(c.app.ctx, draft)
		c.app.schedule(func() {
			c.sending = false
			c.form.SetTitle(" Compose ")
			if err != nil {
				c.app.logger.Warn().Err(err).Msg("send failed")
				eh.ShowError(c.app.ctx, "Send failed: "+describeError(err))
				return
			}
			eh.ShowSuccess(c.app.ctx, fmt.Sprintf("Message sent to %s", strings.Join(draft.To, ", ")))
			c.Reset()
			c.cancel()
		})
	})
}

func (c *CompositionPanel) suggest() {
	eh := c.app.GetErrorHandler()
	if c.app.ai == nil || !c.app.ai.Enabled() {
		eh.ShowWarning(c.app.ctx, "AI assistance is not configured")
		return
	}
	draft := c.Draft()
	eh.ShowProgress(c.app.ctx, "Asking for suggestions…")

	c.app.async(func() {
		out, err := c.app.ai.SuggestDrafts(c.app.ctx, draft, "")
		c.app.schedule(func() {
			eh.ClearProgress()
			if err != nil {
				eh.HandleError(c.app.ctx, err, "Suggestions failed: "+describeError(err))
				return
			}
			if len(out) == 0 {
				eh.ShowInfo(c.app.ctx, "No suggestions")
				return
			}
			c.showSuggestions(out)
			c.app.SetFocus(c.suggestions)
		})
	})
}

func (c *CompositionPanel) showSuggestions(out []string) {
	c.suggestions.Clear()
	for _, s := range out {
		text := s
		c.suggestions.AddItem(tview.Escape(firstLine(text)), "", 0, func() {
			c.body.SetText(text, true)
			c.app.SetFocus(c.body)
		})
	}
	height := 0
	if len(out) > 0 {
		height = len(out) + 2
	}
	c.ResizeItem(c.suggestions, height, 0)
}

func (c *CompositionPanel) applyPalette(p config.Palette) {
	bg, fg := p.Background.Color(), p.Foreground.Color()
	c.form.SetBackgroundColor(bg)
	c.form.SetBorderColor(p.Focus.Color()).SetTitleColor(p.Title.Color())
	c.form.SetFieldBackgroundColor(p.Selection.Color()).
		SetFieldTextColor(fg).
		SetLabelColor(p.Title.Color()).
		SetButtonBackgroundColor(p.Selection.Color()).
		SetButtonTextColor(fg)
	c.suggestions.SetBackgroundColor(bg)
	c.suggestions.SetBorderColor(p.Border.Color())
	c.suggestions.SetMainTextColor(fg).SetSelectedBackgroundColor(p.Selection.Color())
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
