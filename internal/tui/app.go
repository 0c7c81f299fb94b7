// Package tui renders the view state with tview and feeds key presses to the
// shortcut dispatcher.
package tui

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ajramos/inboxtui/internal/config"
	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/ajramos/inboxtui/internal/services"
	"github.com/ajramos/inboxtui/internal/shortcuts"
	"github.com/ajramos/inboxtui/internal/viewstate"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
)

// Options are the collaborators of an App. Dispatcher is required.
type Options struct {
	Config     *config.Config
	Dispatcher *shortcuts.Dispatcher
	Labels     services.LabelService
	Compose    services.ComposeService
	AI         services.AIService
	Palettes   config.Palettes
	Log        zerolog.Logger
}

// App encapsulates the terminal UI
type App struct {
	*tview.Application
	Pages *tview.Pages

	ctx    context.Context
	cancel context.CancelFunc

	keys     *shortcuts.Dispatcher
	labels   services.LabelService
	compose  services.ComposeService
	ai       services.AIService
	palettes config.Palettes
	logger   zerolog.Logger
	orch     *viewstate.Orchestrator

	views        *views
	composer     *CompositionPanel
	labelManager *LabelManager
	errorHandler *ErrorHandler

	mu      sync.Mutex
	palette config.Palette

	// schedule runs f on the UI goroutine, async runs remote work off it
	schedule func(f func())
	async    viewstate.Runner
	pending  atomic.Bool
	latest   atomic.Pointer[viewstate.State]

	// UI goroutine only
	rendering  bool
	last       viewstate.State
	searchMode mail.SearchMode
	shownErr   error
}

// NewApp creates the application and its widgets. Bind must be called
// before Run.
func NewApp(ctx context.Context, opts Options) *App {
	ctx, cancel := context.WithCancel(ctx)
	palettes := opts.Palettes
	if palettes == (config.Palettes{}) {
		palettes = config.DefaultPalettes()
	}
	a := &App{
		Application: tview.NewApplication(),
		ctx:         ctx,
		cancel:      cancel,
		keys:        opts.Dispatcher,
		labels:      opts.Labels,
		compose:     opts.Compose,
		ai:          opts.AI,
		palettes:    palettes,
		logger:      opts.Log,
		searchMode:  mail.SearchKeyword,
	}
	if a.keys == nil {
		a.keys = shortcuts.NewDefault()
	}
	dark := true
	if opts.Config != nil {
		dark = opts.Config.Theme.DarkDefault
	}
	a.palette = palettes.For(dark)
	a.schedule = func(f func()) { go a.QueueUpdateDraw(f) }
	a.async = viewstate.Go

	a.initComponents()
	a.errorHandler = NewErrorHandler(a.Application, a, a.views.status, a.logger)
	a.composer = NewCompositionPanel(a)
	a.labelManager = NewLabelManager(a)
	a.Pages.AddPage(pageCompose, modal(a.composer, 90, 30), true, false)
	a.Pages.AddPage(pageLabels, modal(a.labelManager, 56, 24), true, false)
	a.Pages.AddPage(pageHelp, modal(a.views.help, 72, 30), true, false)

	a.SetRoot(a.Pages, true)
	a.SetInputCapture(a.capture)
	return a
}

// Bind connects the orchestrator whose state the app renders
func (a *App) Bind(o *viewstate.Orchestrator) {
	a.orch = o
	o.OnChange(a.stateChanged)
}

// Run starts the orchestrator and blocks in the tview event loop
func (a *App) Run() error {
	defer a.cancel()
	if a.orch != nil {
		a.orch.Start(a.ctx)
		defer a.orch.Close()
	}
	a.SetFocus(a.views.list)
	return a.Application.Run()
}

// GetErrorHandler returns the status bar message handler
func (a *App) GetErrorHandler() *ErrorHandler {
	return a.errorHandler
}

// capture is the single input capture: intents go to the orchestrator,
// everything else falls through to the focused primitive
func (a *App) capture(ev *tcell.EventKey) *tcell.EventKey {
	focus := a.GetFocus()
	if ev.Key() == tcell.KeyEnter && activatesOnEnter(focus) {
		return ev
	}
	out := a.keys.Capture(ev, focus, func(in shortcuts.Intent) {
		a.logger.Debug().Str("intent", in.String()).Msg("shortcut")
		if a.orch != nil {
			a.orch.Handle(a.ctx, in)
		}
	})
	if out == nil {
		return nil
	}
	if ev.Key() == tcell.KeyTab && !shortcuts.SuppressesShortcuts(focus) && a.last.Overlay == mail.OverlayNone {
		a.cycleFocus()
		return nil
	}
	return out
}

// activatesOnEnter reports whether the primitive acts on Enter itself.
// The message table is not one of them: Enter there opens the message.
func activatesOnEnter(p tview.Primitive) bool {
	switch p.(type) {
	case *tview.Button, *tview.List, *tview.DropDown, *tview.Checkbox:
		return true
	}
	return false
}

// stateChanged coalesces change notifications into one pending redraw of
// the latest snapshot
func (a *App) stateChanged(s viewstate.State) {
	a.latest.Store(&s)
	if !a.pending.CompareAndSwap(false, true) {
		return
	}
	a.schedule(func() {
		a.pending.Store(false)
		if snap := a.latest.Load(); snap != nil {
			a.render(*snap)
		}
	})
}

// FocusSearch moves focus to the search field
func (a *App) FocusSearch() {
	if a.last.Overlay != mail.OverlayNone {
		return
	}
	a.SetFocus(a.views.search)
}

func (a *App) render(s viewstate.State) {
	a.rendering = true
	defer func() { a.rendering = false }()

	a.renderSidebar(s)
	a.renderList(s)
	a.renderDetail(s)
	a.renderOverlay(s)
	a.renderStatus(s)
	a.last = s
}
