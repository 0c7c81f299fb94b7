package shortcuts

// Intent is the abstract action a key press resolves to
type Intent int

// Intents are declared in match priority order: when two intents share a
// chord, the one declared first wins. Mutations come before navigation.
const (
	IntentNone Intent = iota
	IntentToggleStar
	IntentMarkRead
	IntentMarkUnread
	IntentDelete
	IntentArchive
	IntentCompose
	IntentFocusSearch
	IntentRefreshList
	IntentSelectNext
	IntentSelectPrevious
	IntentOpenSelectedOrFirst
	IntentDismissTopmost
	IntentToggleTheme
	IntentToggleHelp
	IntentSummarize
	IntentManageLabels
	IntentGoInbox
	IntentGoSent
	IntentGoStarred
	IntentGoTrash

	intentCount
)

var intentNames = [...]string{
	IntentNone:                "none",
	IntentToggleStar:          "toggle-star",
	IntentMarkRead:            "mark-read",
	IntentMarkUnread:          "mark-unread",
	IntentDelete:              "delete",
	IntentArchive:             "archive",
	IntentCompose:             "compose",
	IntentFocusSearch:         "focus-search",
	IntentRefreshList:         "refresh-list",
	IntentSelectNext:          "select-next",
	IntentSelectPrevious:      "select-previous",
	IntentOpenSelectedOrFirst: "open-selected-or-first",
	IntentDismissTopmost:      "dismiss-topmost",
	IntentToggleTheme:         "toggle-theme",
	IntentToggleHelp:          "toggle-help",
	IntentSummarize:           "summarize",
	IntentManageLabels:        "manage-labels",
	IntentGoInbox:             "go-to-inbox",
	IntentGoSent:              "go-to-sent",
	IntentGoStarred:           "go-to-starred",
	IntentGoTrash:             "go-to-trash",
}

var intentDescriptions = [...]string{
	IntentToggleStar:          "Star / unstar",
	IntentMarkRead:            "Mark as read",
	IntentMarkUnread:          "Mark as unread",
	IntentDelete:              "Delete",
	IntentArchive:             "Archive",
	IntentCompose:             "Compose",
	IntentFocusSearch:         "Search",
	IntentRefreshList:         "Refresh",
	IntentSelectNext:          "Next message",
	IntentSelectPrevious:      "Previous message",
	IntentOpenSelectedOrFirst: "Open message",
	IntentDismissTopmost:      "Close / deselect",
	IntentToggleTheme:         "Toggle dark mode",
	IntentToggleHelp:          "Keyboard shortcuts",
	IntentSummarize:           "AI summary",
	IntentManageLabels:        "Manage labels",
	IntentGoInbox:             "Go to Inbox",
	IntentGoSent:              "Go to Sent",
	IntentGoStarred:           "Go to Starred",
	IntentGoTrash:             "Go to Trash",
}

// String returns the intent name
func (i Intent) String() string {
	if i < 0 || i >= intentCount {
		return "unknown"
	}
	return intentNames[i]
}

// Description returns a short human label for help screens
func (i Intent) Description() string {
	if i <= IntentNone || i >= intentCount {
		return ""
	}
	return intentDescriptions[i]
}

// IsMutation reports whether the intent changes a message on the server
func (i Intent) IsMutation() bool {
	return i >= IntentToggleStar && i <= IntentArchive
}

// IsNavigation reports whether the intent switches the active label
func (i Intent) IsNavigation() bool {
	return i >= IntentGoInbox && i <= IntentGoTrash
}
