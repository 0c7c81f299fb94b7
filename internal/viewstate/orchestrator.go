package viewstate

import (
	"context"
	"strings"
	"sync"

	"github.com/ajramos/inboxtui/internal/cursor"
	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/ajramos/inboxtui/internal/services"
	"github.com/ajramos/inboxtui/internal/shortcuts"
	"github.com/rs/zerolog"
)

// Deps are the collaborators of an Orchestrator. Reader and Mutator are
// required; the rest may be nil.
type Deps struct {
	Reader  services.ItemReader
	Mutator services.Mutator
	Theme   services.ThemeService
	AI      services.AIService
	Bus     *services.EventBus
	Effects Effects
	Runner  Runner
	Log     zerolog.Logger
}

// Orchestrator routes intents to state changes and remote work
type Orchestrator struct {
	reader  services.ItemReader
	mutator services.Mutator
	theme   services.ThemeService
	ai      services.AIService
	bus     *services.EventBus
	effects Effects
	run     Runner
	log     zerolog.Logger

	mu        sync.Mutex
	state     State
	listSeq   uint64
	detailSeq uint64
	onChange  func(State)
	subID     string
}

// New creates an orchestrator showing the default filter
func New(d Deps) *Orchestrator {
	o := &Orchestrator{
		reader:  d.Reader,
		mutator: d.Mutator,
		theme:   d.Theme,
		ai:      d.AI,
		bus:     d.Bus,
		effects: d.Effects,
		run:     d.Runner,
		log:     d.Log,
		state:   State{Filter: mail.DefaultFilter()},
	}
	if o.effects == nil {
		o.effects = nopEffects{}
	}
	if o.run == nil {
		o.run = Go
	}
	return o
}

// OnChange registers the render callback. It is called with a snapshot
// after every state change, from whichever goroutine made the change.
func (o *Orchestrator) OnChange(fn func(State)) {
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

// Snapshot returns a copy of the current state
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Start subscribes to change events, resolves the theme and loads the
// first list. Read caches must be attached to the bus before Start so they
// are invalidated before the orchestrator re-reads.
func (o *Orchestrator) Start(ctx context.Context) {
	if o.bus != nil {
		id := o.bus.Subscribe(func(ev services.Event) { o.onEvent(ctx, ev) },
			services.TopicItemChanged, services.TopicItemCreated, services.TopicLabelsChanged)
		o.mu.Lock()
		o.subID = id
		o.mu.Unlock()
	}
	if o.theme != nil {
		dark := o.theme.IsDark(ctx)
		o.mu.Lock()
		o.state.Dark = dark
		o.mu.Unlock()
		o.effects.ApplyTheme(dark)
	}
	o.reload(ctx)
	o.reloadLabels(ctx)
}

// Close unsubscribes from the bus
func (o *Orchestrator) Close() {
	o.mu.Lock()
	id := o.subID
	o.subID = ""
	o.mu.Unlock()
	if o.bus != nil && id != "" {
		o.bus.Unsubscribe(id)
	}
}

// Handle applies one intent. It never blocks on remote calls.
func (o *Orchestrator) Handle(ctx context.Context, in shortcuts.Intent) {
	switch in {
	case shortcuts.IntentNone:
	case shortcuts.IntentCompose:
		o.SetOverlay(mail.OverlayCompose)
	case shortcuts.IntentFocusSearch:
		o.effects.FocusSearch()
	case shortcuts.IntentRefreshList:
		o.reader.InvalidateLists()
		o.reload(ctx)
	case shortcuts.IntentToggleStar, shortcuts.IntentMarkRead, shortcuts.IntentMarkUnread,
		shortcuts.IntentDelete, shortcuts.IntentArchive:
		o.mutate(ctx, operationFor(in))
	case shortcuts.IntentSelectNext:
		o.move(ctx, cursor.Next)
	case shortcuts.IntentSelectPrevious:
		o.move(ctx, cursor.Previous)
	case shortcuts.IntentOpenSelectedOrFirst:
		o.openSelectedOrFirst(ctx)
	case shortcuts.IntentDismissTopmost:
		o.dismissTopmost()
	case shortcuts.IntentGoInbox, shortcuts.IntentGoSent, shortcuts.IntentGoStarred, shortcuts.IntentGoTrash:
		o.SetLabel(ctx, labelFor(in))
	case shortcuts.IntentToggleTheme:
		o.toggleTheme(ctx)
	case shortcuts.IntentToggleHelp:
		o.update(func(s *State) {
			if s.Overlay == mail.OverlayHelp {
				s.Overlay = mail.OverlayNone
			} else {
				s.Overlay = mail.OverlayHelp
			}
		})
	case shortcuts.IntentSummarize:
		o.summarize(ctx, false)
	case shortcuts.IntentManageLabels:
		o.OpenLabelManager(ctx)
	default:
		o.log.Debug().Str("intent", in.String()).Msg("unhandled intent")
	}
}

func operationFor(in shortcuts.Intent) services.Operation {
	switch in {
	case shortcuts.IntentToggleStar:
		return services.OpToggleStar
	case shortcuts.IntentMarkRead:
		return services.OpMarkRead
	case shortcuts.IntentMarkUnread:
		return services.OpMarkUnread
	case shortcuts.IntentDelete:
		return services.OpDelete
	default:
		return services.OpArchive
	}
}

func labelFor(in shortcuts.Intent) string {
	switch in {
	case shortcuts.IntentGoSent:
		return mail.LabelSent
	case shortcuts.IntentGoStarred:
		return mail.LabelStarred
	case shortcuts.IntentGoTrash:
		return mail.LabelTrash
	default:
		return mail.LabelInbox
	}
}

// SetOverlay replaces the topmost overlay
func (o *Orchestrator) SetOverlay(ov mail.Overlay) {
	o.update(func(s *State) { s.Overlay = ov })
}

// OpenLabelManager shows the label manager with a fresh label list
func (o *Orchestrator) OpenLabelManager(ctx context.Context) {
	o.SetOverlay(mail.OverlayLabelManager)
	o.reloadLabels(ctx)
}

// SetLabel switches the active label, keeping the search query
func (o *Orchestrator) SetLabel(ctx context.Context, label string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return
	}
	o.update(func(s *State) { s.Filter.Label = label })
	o.reload(ctx)
}

// SetSearch replaces the search query and mode, keeping the label
func (o *Orchestrator) SetSearch(ctx context.Context, query string, mode mail.SearchMode) {
	if mode == "" {
		mode = mail.SearchKeyword
	}
	o.update(func(s *State) {
		s.Filter.Query = strings.TrimSpace(query)
		s.Filter.Mode = mode
	})
	o.reload(ctx)
}

// Select makes id the selection and loads its detail. An empty id clears
// the selection.
func (o *Orchestrator) Select(ctx context.Context, id string) {
	o.mu.Lock()
	same := o.state.Selection == id
	o.mu.Unlock()
	if same {
		return
	}
	o.setSelection(ctx, id)
}

// Summarize regenerates the summary of the open message
func (o *Orchestrator) Summarize(ctx context.Context, force bool) {
	o.summarize(ctx, force)
}

func (o *Orchestrator) move(ctx context.Context, dir cursor.Direction) {
	o.mu.Lock()
	next := cursor.Advance(dir, o.state.IDs, o.state.Selection)
	same := next == o.state.Selection
	o.mu.Unlock()
	if !same {
		o.setSelection(ctx, next)
	}
}

func (o *Orchestrator) openSelectedOrFirst(ctx context.Context) {
	o.mu.Lock()
	next := cursor.OpenSelectedOrFirst(o.state.IDs, o.state.Selection)
	same := next == o.state.Selection
	o.mu.Unlock()
	if !same {
		o.setSelection(ctx, next)
	}
}

func (o *Orchestrator) dismissTopmost() {
	o.update(func(s *State) {
		switch {
		case s.Overlay != mail.OverlayNone:
			s.Overlay = mail.OverlayNone
		case s.Selection != "":
			o.clearSelectionLocked()
		}
	})
}

func (o *Orchestrator) setSelection(ctx context.Context, id string) {
	o.update(func(s *State) {
		if id == "" {
			o.clearSelectionLocked()
			return
		}
		s.Selection = id
		s.Detail = nil
		s.Summary = ""
		s.ThreadSize = 0
	})
	if id != "" {
		o.loadDetail(ctx, id)
	}
}

// clearSelectionLocked drops the selection and everything derived from it.
// o.mu must be held.
func (o *Orchestrator) clearSelectionLocked() {
	o.state.Selection = ""
	o.state.Detail = nil
	o.state.Summary = ""
	o.state.ThreadSize = 0
	o.detailSeq++
}

func (o *Orchestrator) mutate(ctx context.Context, op services.Operation) {
	o.mu.Lock()
	id := o.state.Selection
	o.mu.Unlock()
	if id == "" {
		return
	}
	o.run(func() {
		out := o.mutator.Apply(ctx, op, id)
		if !out.OK() {
			o.update(func(s *State) { s.Err = out.Err })
		}
	})
}

func (o *Orchestrator) toggleTheme(ctx context.Context) {
	if o.theme == nil {
		return
	}
	dark, err := o.theme.Toggle(ctx)
	if err != nil {
		o.log.Warn().Err(err).Msg("theme preference not saved")
	}
	o.update(func(s *State) {
		s.Dark = dark
		if err != nil {
			s.Err = err
		}
	})
	o.effects.ApplyTheme(dark)
}

func (o *Orchestrator) summarize(ctx context.Context, force bool) {
	if o.ai == nil || !o.ai.Enabled() {
		return
	}
	o.mu.Lock()
	detail := o.state.Detail.Clone()
	o.mu.Unlock()
	if detail == nil {
		return
	}
	o.run(func() {
		res, err := o.ai.SummarizeItem(ctx, detail, force)
		o.update(func(s *State) {
			if s.Selection != detail.ID {
				return
			}
			if err != nil {
				s.Err = err
				return
			}
			s.Summary = res.Summary
		})
	})
}

// reload re-reads the active list. Only the response to the latest request
// is applied.
func (o *Orchestrator) reload(ctx context.Context) {
	var (
		seq uint64
		f   mail.Filter
	)
	o.update(func(s *State) {
		o.listSeq++
		seq = o.listSeq
		f = s.Filter
		s.Loading = true
	})
	o.run(func() {
		page, err := o.reader.List(ctx, f)
		o.update(func(s *State) {
			if seq != o.listSeq {
				o.log.Debug().Str("filter", f.Key()).Msg("dropping superseded list response")
				return
			}
			s.Loading = false
			if err != nil {
				s.Err = err
				o.log.Warn().Err(err).Str("filter", f.Key()).Msg("list load failed")
				return
			}
			s.IDs = page.IDs()
			s.Items = page.Items
			s.Total = page.Total
			s.Err = nil
		})
	})
}

func (o *Orchestrator) loadDetail(ctx context.Context, id string) {
	var seq uint64
	o.mu.Lock()
	o.detailSeq++
	seq = o.detailSeq
	o.mu.Unlock()
	o.run(func() {
		it, err := o.reader.Item(ctx, id)
		o.update(func(s *State) {
			if seq != o.detailSeq || s.Selection != id {
				return
			}
			if err != nil {
				s.Err = err
				o.log.Warn().Err(err).Str("item_id", id).Msg("detail load failed")
				return
			}
			s.Detail = it
		})
		if err == nil && it.ThreadID != "" {
			o.loadThreadSize(ctx, seq, id, it.ThreadID)
		}
	})
}

// loadThreadSize fills ThreadSize when the reader can load threads. Failures
// only leave the size unknown.
func (o *Orchestrator) loadThreadSize(ctx context.Context, seq uint64, id, threadID string) {
	tr, ok := o.reader.(services.ThreadReader)
	if !ok {
		return
	}
	th, err := tr.Thread(ctx, threadID)
	if err != nil {
		o.log.Debug().Err(err).Str("thread_id", threadID).Msg("thread load failed")
		return
	}
	o.update(func(s *State) {
		if seq != o.detailSeq || s.Selection != id {
			return
		}
		s.ThreadSize = len(th.Items)
	})
}

func (o *Orchestrator) reloadLabels(ctx context.Context) {
	o.run(func() {
		labels, err := o.reader.Labels(ctx)
		if err != nil {
			o.log.Warn().Err(err).Msg("label load failed")
			return
		}
		o.update(func(s *State) { s.Labels = labels })
	})
}

func (o *Orchestrator) onEvent(ctx context.Context, ev services.Event) {
	if ev.Topic == services.TopicLabelsChanged {
		o.reloadLabels(ctx)
		o.reload(ctx)
		return
	}

	ch := ev.Change
	var reopen bool
	o.update(func(s *State) {
		if ch.ItemID == "" || ch.ItemID != s.Selection {
			return
		}
		if ch.Deleted {
			o.clearSelectionLocked()
			return
		}
		reopen = true
	})
	o.reload(ctx)
	if reopen {
		o.loadDetail(ctx, ch.ItemID)
	}
	if ev.Topic == services.TopicItemChanged {
		o.reloadLabels(ctx)
	}
}

// update mutates the state under the lock and then notifies the render
// callback outside it
func (o *Orchestrator) update(fn func(s *State)) {
	o.mu.Lock()
	fn(&o.state)
	snap := o.state.clone()
	cb := o.onChange
	o.mu.Unlock()
	if cb != nil {
		cb(snap)
	}
}
