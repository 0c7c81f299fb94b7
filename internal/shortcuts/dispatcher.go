// Package shortcuts classifies raw key events into abstract intents.
//
// Classification is pure: it looks at the event, the focused primitive and
// the configured bindings, and never touches application state.
package shortcuts

import (
	"fmt"

	"github.com/ajramos/inboxtui/internal/config"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type binding struct {
	intent Intent
	raw    string
	chords []Chord
}

// Dispatcher maps key events to intents using a fixed priority order
type Dispatcher struct {
	table []binding
}

// HelpRow describes one active binding for the help overlay
type HelpRow struct {
	Intent      Intent
	Keys        string
	Description string
	// ShadowedBy is set when a higher priority intent owns every chord
	ShadowedBy Intent
}

// bindingsByIntent lists the configured binding of every intent
func bindingsByIntent(k config.KeyBindings) map[Intent]string {
	return map[Intent]string{
		IntentToggleStar:          k.ToggleStar,
		IntentMarkRead:            k.MarkRead,
		IntentMarkUnread:          k.MarkUnread,
		IntentDelete:              k.Delete,
		IntentArchive:             k.Archive,
		IntentCompose:             k.Compose,
		IntentFocusSearch:         k.FocusSearch,
		IntentRefreshList:         k.Refresh,
		IntentSelectNext:          k.SelectNext,
		IntentSelectPrevious:      k.SelectPrev,
		IntentOpenSelectedOrFirst: k.Open,
		IntentDismissTopmost:      k.Dismiss,
		IntentToggleTheme:         k.ToggleTheme,
		IntentToggleHelp:          k.Help,
		IntentSummarize:           k.Summarize,
		IntentManageLabels:        k.ManageLabels,
		IntentGoInbox:             k.GoInbox,
		IntentGoSent:              k.GoSent,
		IntentGoStarred:           k.GoStarred,
		IntentGoTrash:             k.GoTrash,
	}
}

// New builds a dispatcher from key bindings. Any unparsable binding is an error.
func New(keys config.KeyBindings) (*Dispatcher, error) {
	raw := bindingsByIntent(keys)
	d := &Dispatcher{}
	for in := IntentNone + 1; in < intentCount; in++ {
		chords, err := ParseBinding(raw[in])
		if err != nil {
			return nil, fmt.Errorf("binding for %s: %w", in, err)
		}
		d.table = append(d.table, binding{intent: in, raw: raw[in], chords: chords})
	}
	return d, nil
}

// NewDefault builds a dispatcher with the default bindings
func NewDefault() *Dispatcher {
	d, err := New(config.DefaultKeyBindings())
	if err != nil {
		panic(err)
	}
	return d
}

// Classify returns the intent for ev, or IntentNone. Nothing is ever produced
// while focus is on a free-text editing primitive.
func (d *Dispatcher) Classify(ev *tcell.EventKey, focus tview.Primitive) Intent {
	if ev == nil || SuppressesShortcuts(focus) {
		return IntentNone
	}
	return d.match(FromEvent(ev))
}

func (d *Dispatcher) match(c Chord) Intent {
	for _, b := range d.table {
		for _, bc := range b.chords {
			if bc.Matches(c) {
				return b.intent
			}
		}
	}
	return IntentNone
}

// Capture classifies ev and hands a matched intent to handle. It returns nil
// when the event was consumed and ev itself otherwise, so it can back an
// Application input capture directly.
func (d *Dispatcher) Capture(ev *tcell.EventKey, focus tview.Primitive, handle func(Intent)) *tcell.EventKey {
	in := d.Classify(ev, focus)
	if in == IntentNone {
		return ev
	}
	if handle != nil {
		handle(in)
	}
	return nil
}

// Binding returns the raw binding string for an intent
func (d *Dispatcher) Binding(in Intent) string {
	for _, b := range d.table {
		if b.intent == in {
			return b.raw
		}
	}
	return ""
}

// Describe returns one row per bound intent in priority order
func (d *Dispatcher) Describe() []HelpRow {
	var rows []HelpRow
	for i, b := range d.table {
		if len(b.chords) == 0 {
			continue
		}
		row := HelpRow{Intent: b.intent, Keys: chordList(b.chords), Description: b.intent.Description()}
		row.ShadowedBy = d.shadowOwner(i)
		rows = append(rows, row)
	}
	return rows
}

// shadowOwner returns the earlier intent that wins every chord of entry i
func (d *Dispatcher) shadowOwner(i int) Intent {
	owner := IntentNone
	for _, c := range d.table[i].chords {
		in := d.match(c)
		if in == d.table[i].intent {
			return IntentNone
		}
		owner = in
	}
	return owner
}

func chordList(chords []Chord) string {
	s := ""
	for i, c := range chords {
		if i > 0 {
			s += ", "
		}
		s += c.String()
	}
	return s
}
