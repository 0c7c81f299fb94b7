package mail

import "strings"

// SearchMode selects how the search query is interpreted
type SearchMode string

const (
	SearchKeyword  SearchMode = "keyword"
	SearchSemantic SearchMode = "semantic"
)

// Filter defines the visible result set: a label plus an optional search
type Filter struct {
	Label string     `json:"label"`
	Query string     `json:"query"`
	Mode  SearchMode `json:"mode"`
}

// DefaultFilter is the inbox with no search
func DefaultFilter() Filter {
	return Filter{Label: LabelInbox, Mode: SearchKeyword}
}

// Semantic reports whether the filter should go through semantic search
func (f Filter) Semantic() bool {
	return f.Mode == SearchSemantic && strings.TrimSpace(f.Query) != ""
}

// Key is a stable cache key for the filter
func (f Filter) Key() string {
	mode := f.Mode
	if mode == "" {
		mode = SearchKeyword
	}
	return strings.ToUpper(f.Label) + "|" + string(mode) + "|" + strings.TrimSpace(f.Query)
}

// Overlay is the single topmost modal surface
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayCompose
	OverlayHelp
	OverlayLabelManager
)

func (o Overlay) String() string {
	switch o {
	case OverlayCompose:
		return "compose"
	case OverlayHelp:
		return "shortcuts-help"
	case OverlayLabelManager:
		return "label-manager"
	default:
		return "none"
	}
}
