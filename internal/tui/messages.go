package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/ajramos/inboxtui/internal/render"
	"github.com/ajramos/inboxtui/internal/viewstate"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	fromWidth = 22
	dateWidth = 10
)

// now is replaced in tests
var now = time.Now

var titleCaser = cases.Title(language.English)

// labelTitle turns INBOX into Inbox, leaving user labels as typed
func labelTitle(label string) string {
	if isSystem(label) {
		return titleCaser.String(strings.ToLower(label))
	}
	return label
}

// renderList fills the message table from the visible id sequence
func (a *App) renderList(s viewstate.State) {
	t := a.views.list
	p := a.currentPalette()
	t.Clear()

	_, _, width, _ := t.GetInnerRect()
	subjectWidth := width - fromWidth - dateWidth - 4
	if subjectWidth < 20 {
		subjectWidth = 40
	}

	selectedRow := -1
	for row, id := range s.IDs {
		it := s.Item(id)
		if it == nil {
			continue
		}
		color := p.Read.Color()
		if !it.Read {
			color = p.Unread.Color()
		}
		flag := " "
		if it.Starred {
			flag = "★"
		}

		cells := []string{
			flag,
			render.FitWidth(it.From.Display(), fromWidth),
			render.FitWidth(it.Subject, subjectWidth),
			render.FitWidth(render.RelativeDate(it.Date, now()), dateWidth),
		}
		for col, text := range cells {
			cell := tview.NewTableCell(tview.Escape(text)).SetTextColor(color)
			if col == 0 && it.Starred {
				cell.SetTextColor(p.Starred.Color())
			}
			if !it.Read {
				cell.SetAttributes(tcell.AttrBold)
			}
			if col == 2 {
				cell.SetExpansion(1)
			}
			t.SetCell(row, col, cell)
		}
		if id == s.Selection {
			selectedRow = row
		}
	}

	switch {
	case selectedRow >= 0:
		t.SetSelectedStyle(tcell.StyleDefault.Background(p.Selection.Color()).Foreground(p.Foreground.Color()))
		t.Select(selectedRow, 0)
	default:
		// No selection: keep the cursor on the first row without highlighting it
		t.SetSelectedStyle(tcell.StyleDefault.Background(p.Background.Color()).Foreground(p.Foreground.Color()))
		t.Select(0, 0)
	}

	title := fmt.Sprintf(" %s (%d) ", labelTitle(s.Filter.Label), s.Total)
	if s.Filter.Query != "" {
		title = fmt.Sprintf(" %s: %q (%d) ", s.Filter.Label, s.Filter.Query, s.Total)
	}
	if s.Loading {
		title = strings.TrimRight(title, " ") + " … "
	}
	t.SetTitle(title)
}

// rowID maps a table row back to a message id
func (a *App) rowID(row int) string {
	if row < 0 || row >= len(a.last.IDs) {
		return ""
	}
	return a.last.IDs[row]
}

// renderDetail shows the open message, its summary and the empty state
func (a *App) renderDetail(s viewstate.State) {
	v := a.views
	switch {
	case s.Selection == "":
		v.header.SetText("")
		v.body.SetText(a.welcomeText(len(s.IDs) == 0 && !s.Loading))
		v.textContainer.ResizeItem(v.summary, 0, 0)
		return
	case s.Detail == nil:
		if it := s.Item(s.Selection); it != nil {
			v.header.SetText(tview.Escape(render.Header(it)))
		}
		v.body.SetText("Loading…")
		v.textContainer.ResizeItem(v.summary, 0, 0)
		return
	}

	if a.last.Detail == nil || a.last.Detail.ID != s.Detail.ID || a.last.Detail.Body != s.Detail.Body {
		v.body.SetText(render.Wrap(render.PlainText(s.Detail.Body), a.bodyWidth())).ScrollToBeginning()
	}
	header := render.Header(s.Detail)
	if s.ThreadSize > 1 {
		header += fmt.Sprintf("Thread:  %d messages\n", s.ThreadSize)
	}
	v.header.SetText(tview.Escape(header))

	if s.Summary == "" {
		v.textContainer.ResizeItem(v.summary, 0, 0)
		return
	}
	v.summary.SetText(tview.Escape(s.Summary))
	v.textContainer.ResizeItem(v.summary, summaryHeight(s.Summary), 0)
}

func (a *App) bodyWidth() int {
	_, _, w, _ := a.views.body.GetInnerRect()
	if w <= 0 {
		return 80
	}
	return w
}

func summaryHeight(summary string) int {
	h := strings.Count(summary, "\n") + 3
	if h > 10 {
		return 10
	}
	return h
}

// renderSidebar lists system labels first, then user labels
func (a *App) renderSidebar(s viewstate.State) {
	sb := a.views.sidebar
	counts := map[string]int{}
	for _, l := range s.Labels {
		counts[strings.ToUpper(l.Name)] = l.ItemCount
	}
	names := sidebarLabels(s.Labels)
	texts := make([]string, 0, len(names))
	for _, name := range names {
		text := name
		if n := counts[strings.ToUpper(name)]; n > 0 {
			text = fmt.Sprintf("%s (%d)", name, n)
		}
		texts = append(texts, tview.Escape(text))
	}

	if !sameStrings(texts, sidebarTexts(sb)) {
		sb.Clear()
		for i, name := range names {
			sb.AddItem(texts[i], name, 0, nil)
		}
	}
	for i, name := range names {
		if strings.EqualFold(name, s.Filter.Label) {
			sb.SetCurrentItem(i)
			break
		}
	}
}

func sidebarTexts(sb *tview.List) []string {
	out := make([]string, 0, sb.GetItemCount())
	for i := 0; i < sb.GetItemCount(); i++ {
		text, _ := sb.GetItemText(i)
		out = append(out, text)
	}
	return out
}

func sidebarLabels(labels []mail.Label) []string {
	out := append([]string(nil), mail.SystemLabels...)
	for _, l := range labels {
		if !isSystem(l.Name) {
			out = append(out, l.Name)
		}
	}
	return out
}

func isSystem(name string) bool {
	for _, s := range mail.SystemLabels {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
