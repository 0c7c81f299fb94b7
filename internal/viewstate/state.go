// Package viewstate owns what the screen shows: the active filter, the
// selection, the topmost overlay and the id sequence of the visible list.
//
// Key handling calls Handle synchronously on the UI goroutine. Remote reads
// and writes run through a Runner; their results are folded back into the
// state under the orchestrator lock and announced through the OnChange
// callback.
package viewstate

import (
	"github.com/ajramos/inboxtui/internal/mail"
)

// State is a rendering snapshot
type State struct {
	Filter    mail.Filter
	Selection string
	Overlay   mail.Overlay

	// IDs is the id sequence of the visible list, replaced whole on every load
	IDs    []string
	Items  []*mail.Item
	Total  int
	Labels []mail.Label

	// Detail is the loaded copy of the selection, nil while loading
	Detail  *mail.Item
	Summary string
	// ThreadSize is the message count of the open message's thread, 0 when unknown
	ThreadSize int

	Loading bool
	Dark    bool
	Err     error
}

// Item returns the list entry with id, if loaded
func (s State) Item(id string) *mail.Item {
	for _, it := range s.Items {
		if it != nil && it.ID == id {
			return it
		}
	}
	return nil
}

func (s State) clone() State {
	out := s
	out.IDs = append([]string(nil), s.IDs...)
	out.Items = make([]*mail.Item, 0, len(s.Items))
	for _, it := range s.Items {
		out.Items = append(out.Items, it.Clone())
	}
	out.Labels = append([]mail.Label(nil), s.Labels...)
	out.Detail = s.Detail.Clone()
	return out
}

// Effects are the UI side effects that do not change state
type Effects interface {
	FocusSearch()
	ApplyTheme(dark bool)
}

type nopEffects struct{}

func (nopEffects) FocusSearch()    {}
func (nopEffects) ApplyTheme(bool) {}

// Runner executes remote work off the UI goroutine
type Runner func(func())

// Go runs f on a new goroutine
func Go(f func()) { go f() }

// Inline runs f on the calling goroutine
func Inline(f func()) { f() }
