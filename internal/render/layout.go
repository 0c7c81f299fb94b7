package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/mattn/go-runewidth"
)

// FitWidth truncates or pads s to exactly width terminal cells
func FitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// Wrap wraps text to width cells, keeping quote prefixes and never splitting URLs
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(normalizeNewlines(text), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		prefix := ""
		rest := line
		for strings.HasPrefix(rest, "> ") {
			prefix += "> "
			rest = strings.TrimPrefix(rest, "> ")
		}
		words := strings.Fields(rest)
		if len(words) == 0 {
			out = append(out, strings.TrimRight(prefix, " "))
			continue
		}
		cur := prefix
		for _, w := range words {
			switch {
			case cur == prefix:
				cur += w
			case runewidth.StringWidth(cur)+1+runewidth.StringWidth(w) <= width:
				cur += " " + w
			default:
				out = append(out, cur)
				cur = prefix + w
			}
		}
		out = append(out, cur)
	}
	return strings.Join(out, "\n")
}

// RelativeDate formats a message date for the list column
func RelativeDate(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(now.Location())
	switch {
	case sameDay(t, now):
		return t.Format("15:04")
	case t.Year() == now.Year():
		return t.Format("Jan 02")
	default:
		return t.Format("2006-01-02")
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Header renders the detail header block
func Header(it *mail.Item) string {
	if it == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", it.Subject)
	fmt.Fprintf(&b, "From:    %s\n", it.From.Display())
	if len(it.To) > 0 {
		fmt.Fprintf(&b, "To:      %s\n", contacts(it.To))
	}
	if len(it.CC) > 0 {
		fmt.Fprintf(&b, "Cc:      %s\n", contacts(it.CC))
	}
	if !it.Date.IsZero() {
		fmt.Fprintf(&b, "Date:    %s\n", it.Date.Local().Format("Mon, 02 Jan 2006 15:04"))
	}
	if len(it.Labels) > 0 {
		fmt.Fprintf(&b, "Labels:  %s\n", strings.Join(it.Labels, ", "))
	}
	return b.String()
}

func contacts(cs []mail.Contact) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, c.Display())
	}
	return strings.Join(parts, ", ")
}
