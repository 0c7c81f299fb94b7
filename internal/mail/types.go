// Package mail holds the domain types shared by the backends, services and UI.
package mail

import (
	"strings"
	"time"
)

// System labels understood by every backend
const (
	LabelInbox   = "INBOX"
	LabelSent    = "SENT"
	LabelStarred = "STARRED"
	LabelTrash   = "TRASH"
	LabelDrafts  = "DRAFTS"
	LabelArchive = "ARCHIVE"
)

// SystemLabels lists the labels shown above user labels in the sidebar
var SystemLabels = []string{LabelInbox, LabelStarred, LabelSent, LabelDrafts, LabelArchive, LabelTrash}

// Contact is a sender or recipient
type Contact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Display returns the name when present, otherwise the address
func (c Contact) Display() string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return c.Email
}

// Item is a single email message. Items are created and removed by the
// backend only; the client reads them and requests flag changes.
type Item struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	Snippet  string    `json:"snippet"`
	Date     time.Time `json:"date"`
	Read     bool      `json:"is_read"`
	Starred  bool      `json:"is_starred"`
	ThreadID string    `json:"thread_id,omitempty"`
	From     Contact   `json:"from"`
	To       []Contact `json:"to"`
	CC       []Contact `json:"cc"`
	Labels   []string  `json:"labels"`
}

// HasLabel reports whether the item carries the label (case-insensitive)
func (i *Item) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if strings.EqualFold(l, name) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so cached items are never shared with callers
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	out := *i
	out.To = append([]Contact(nil), i.To...)
	out.CC = append([]Contact(nil), i.CC...)
	out.Labels = append([]string(nil), i.Labels...)
	return &out
}

// ItemUpdate is a partial flag update; nil fields are left untouched.
// A non-nil empty Labels clears every label.
type ItemUpdate struct {
	Read    *bool    `json:"is_read,omitempty"`
	Starred *bool    `json:"is_starred,omitempty"`
	Labels  []string `json:"labels"`
}

// Fields names the fields set on the update, used in change events
func (u ItemUpdate) Fields() []string {
	var out []string
	if u.Read != nil {
		out = append(out, "read")
	}
	if u.Starred != nil {
		out = append(out, "starred")
	}
	if u.Labels != nil {
		out = append(out, "labels")
	}
	return out
}

// ItemPage is one page of list results
type ItemPage struct {
	Items []*Item `json:"emails"`
	Total int     `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

// IDs returns the ordered ids of the page
func (p *ItemPage) IDs() []string {
	if p == nil {
		return nil
	}
	ids := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		ids = append(ids, it.ID)
	}
	return ids
}

// Label is a mailbox label with its item count
type Label struct {
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	ItemCount int    `json:"email_count"`
}

// Thread groups related items
type Thread struct {
	ID               string    `json:"id"`
	Items            []*Item   `json:"emails"`
	Subject          string    `json:"subject"`
	LastMessageDate  time.Time `json:"last_message_date"`
	ParticipantCount int       `json:"participant_count"`
}

// Draft is an outgoing message
type Draft struct {
	To      []string `json:"to"`
	CC      []string `json:"cc,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// SearchHit is a semantic search result
type SearchHit struct {
	ItemID  string  `json:"email_id"`
	Subject string  `json:"subject"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// SplitAddresses turns a comma or semicolon separated list into addresses
func SplitAddresses(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
