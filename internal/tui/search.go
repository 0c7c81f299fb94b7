package tui

import (
	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/gdamore/tcell/v2"
)

func searchLabel(mode mail.SearchMode) string {
	if mode == mail.SearchSemantic {
		return "Semantic search: "
	}
	return "Search: "
}

// searchDone handles the keys that leave the search field. Enter applies
// the query, Tab toggles keyword and semantic mode, Esc returns to the list
// without changing the filter.
func (a *App) searchDone(key tcell.Key) {
	switch key {
	case tcell.KeyEnter:
		if a.orch != nil {
			a.orch.SetSearch(a.ctx, a.views.search.GetText(), a.searchMode)
		}
		a.SetFocus(a.views.list)
	case tcell.KeyTab, tcell.KeyBacktab:
		a.toggleSearchMode()
	case tcell.KeyEscape:
		a.views.search.SetText(a.last.Filter.Query)
		a.SetFocus(a.views.list)
	}
}

func (a *App) toggleSearchMode() {
	if a.searchMode == mail.SearchSemantic {
		a.searchMode = mail.SearchKeyword
	} else {
		if a.ai == nil || !a.ai.Enabled() {
			a.errorHandler.ShowWarning(a.ctx, "Semantic search needs AI assistance")
			return
		}
		a.searchMode = mail.SearchSemantic
	}
	a.views.search.SetLabel(searchLabel(a.searchMode))
}
