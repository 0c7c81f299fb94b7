// Package gmail implements the mail repository on the Gmail API.
package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/ajramos/inboxtui/internal/mail"
	"github.com/ajramos/inboxtui/internal/services"
	"golang.org/x/sync/errgroup"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

const (
	user         = "me"
	fetchWorkers = 8

	labelUnread = "UNREAD"
	labelDraft  = "DRAFT"

	archiveQuery = "-in:inbox -in:sent -in:draft -in:spam -in:trash"
)

// Backend is a services.MailRepository over one Gmail account
type Backend struct {
	svc *gmailapi.Service

	mu       sync.Mutex
	idByName map[string]string
	nameByID map[string]string
}

var _ services.MailRepository = (*Backend)(nil)

// NewBackend wraps an authenticated Gmail service
func NewBackend(svc *gmailapi.Service) *Backend {
	return &Backend{svc: svc}
}

// ListItems lists one page of messages. Gmail pages by token, so page N
// walks N-1 tokens first.
func (b *Backend) ListItems(ctx context.Context, q services.ListQuery) (*mail.ItemPage, error) {
	call := b.svc.Users.Messages.List(user).Context(ctx)
	if q.Limit > 0 {
		call = call.MaxResults(int64(q.Limit))
	}

	var terms []string
	switch label := strings.ToUpper(strings.TrimSpace(q.Label)); label {
	case "":
	case mail.LabelArchive:
		terms = append(terms, archiveQuery)
	default:
		id, err := b.labelID(ctx, q.Label)
		if err != nil {
			return nil, err
		}
		call = call.LabelIds(id)
	}
	if q.Read != nil {
		terms = append(terms, map[bool]string{true: "is:read", false: "is:unread"}[*q.Read])
	}
	if q.Starred != nil {
		terms = append(terms, map[bool]string{true: "is:starred", false: "-is:starred"}[*q.Starred])
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		terms = append(terms, s)
	}
	if len(terms) > 0 {
		call = call.Q(strings.Join(terms, " "))
	}

	res, err := call.Do()
	for page := 2; err == nil && page <= q.Page && res.NextPageToken != ""; page++ {
		res, err = call.PageToken(res.NextPageToken).Do()
	}
	if err != nil {
		return nil, mapError("list messages", err)
	}

	ids := make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		ids = append(ids, m.Id)
	}
	items, err := b.fetchAll(ctx, ids)
	if err != nil {
		return nil, err
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return &mail.ItemPage{Items: items, Total: int(res.ResultSizeEstimate), Page: page, Limit: q.Limit}, nil
}

// fetchAll reads message metadata concurrently, keeping the list order
func (b *Backend) fetchAll(ctx context.Context, ids []string) ([]*mail.Item, error) {
	out := make([]*mail.Item, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)
	for i, id := range ids {
		g.Go(func() error {
			msg, err := b.svc.Users.Messages.Get(user, id).Format("metadata").
				MetadataHeaders("From", "To", "Cc", "Subject", "Date").Context(gctx).Do()
			if err != nil {
				return mapError("get message "+id, err)
			}
			out[i] = b.toItem(gctx, msg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetItem reads one full message
func (b *Backend) GetItem(ctx context.Context, id string) (*mail.Item, error) {
	msg, err := b.svc.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, mapError("get message "+id, err)
	}
	it := b.toItem(ctx, msg)
	it.Body = extractBody(msg)
	return it, nil
}

// UpdateItem maps the flag update onto label changes
func (b *Backend) UpdateItem(ctx context.Context, id string, u mail.ItemUpdate) (*mail.Item, error) {
	req := &gmailapi.ModifyMessageRequest{}
	if u.Read != nil {
		if *u.Read {
			req.RemoveLabelIds = append(req.RemoveLabelIds, labelUnread)
		} else {
			req.AddLabelIds = append(req.AddLabelIds, labelUnread)
		}
	}
	if u.Starred != nil {
		if *u.Starred {
			req.AddLabelIds = append(req.AddLabelIds, mail.LabelStarred)
		} else {
			req.RemoveLabelIds = append(req.RemoveLabelIds, mail.LabelStarred)
		}
	}
	if u.Labels != nil {
		add, remove, err := b.labelDiff(ctx, id, u.Labels)
		if err != nil {
			return nil, err
		}
		req.AddLabelIds = append(req.AddLabelIds, add...)
		req.RemoveLabelIds = append(req.RemoveLabelIds, remove...)
	}
	if len(req.AddLabelIds) > 0 || len(req.RemoveLabelIds) > 0 {
		if _, err := b.svc.Users.Messages.Modify(user, id, req).Context(ctx).Do(); err != nil {
			return nil, mapError("modify message "+id, err)
		}
	}
	return b.GetItem(ctx, id)
}

// labelDiff computes the label ids to add and remove so that the message
// carries exactly the wanted labels. Flag labels are left alone.
func (b *Backend) labelDiff(ctx context.Context, id string, want []string) (add, remove []string, err error) {
	msg, err := b.svc.Users.Messages.Get(user, id).Format("minimal").Context(ctx).Do()
	if err != nil {
		return nil, nil, mapError("get message "+id, err)
	}
	have := make(map[string]bool, len(msg.LabelIds))
	for _, l := range msg.LabelIds {
		have[l] = true
	}
	wanted := make(map[string]bool, len(want))
	for _, name := range want {
		lid, err := b.labelID(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		wanted[lid] = true
		if !have[lid] {
			add = append(add, lid)
		}
	}
	for _, lid := range msg.LabelIds {
		if !wanted[lid] && !isFlagLabel(lid) {
			remove = append(remove, lid)
		}
	}
	return add, remove, nil
}

func isFlagLabel(id string) bool {
	switch id {
	case labelUnread, mail.LabelStarred, "IMPORTANT", mail.LabelSent, labelDraft, "SPAM", mail.LabelTrash, "CHAT":
		return true
	}
	return strings.HasPrefix(id, "CATEGORY_")
}

// DeleteItem moves the message to the trash
func (b *Backend) DeleteItem(ctx context.Context, id string) error {
	if _, err := b.svc.Users.Messages.Trash(user, id).Context(ctx).Do(); err != nil {
		return mapError("trash message "+id, err)
	}
	return nil
}

// CreateItem sends a plain text message. A reply stays in the thread of
// the message it answers.
func (b *Backend) CreateItem(ctx context.Context, d mail.Draft) (*mail.Item, error) {
	msg := &gmailapi.Message{Raw: buildRaw(d)}
	if d.ReplyTo != "" {
		orig, err := b.svc.Users.Messages.Get(user, d.ReplyTo).Format("minimal").Context(ctx).Do()
		if err != nil {
			return nil, mapError("get message "+d.ReplyTo, err)
		}
		msg.ThreadId = orig.ThreadId
	}
	sent, err := b.svc.Users.Messages.Send(user, msg).Context(ctx).Do()
	if err != nil {
		return nil, mapError("send message", err)
	}
	return b.GetItem(ctx, sent.Id)
}

// GetThread reads a thread with every message in full
func (b *Backend) GetThread(ctx context.Context, id string) (*mail.Thread, error) {
	th, err := b.svc.Users.Threads.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, mapError("get thread "+id, err)
	}
	out := &mail.Thread{ID: th.Id}
	participants := make(map[string]bool)
	for _, msg := range th.Messages {
		it := b.toItem(ctx, msg)
		it.Body = extractBody(msg)
		out.Items = append(out.Items, it)
		participants[strings.ToLower(it.From.Email)] = true
		if out.Subject == "" {
			out.Subject = it.Subject
		}
		if it.Date.After(out.LastMessageDate) {
			out.LastMessageDate = it.Date
		}
	}
	out.ParticipantCount = len(participants)
	return out, nil
}

// ListLabels returns system and user labels with their message counts
func (b *Backend) ListLabels(ctx context.Context) ([]mail.Label, error) {
	res, err := b.svc.Users.Labels.List(user).Context(ctx).Do()
	if err != nil {
		return nil, mapError("list labels", err)
	}
	b.remember(res.Labels)

	var shown []*gmailapi.Label
	for _, l := range res.Labels {
		if l.Type == "user" || isShownSystemLabel(l.Id) {
			shown = append(shown, l)
		}
	}

	out := make([]mail.Label, len(shown))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)
	for i, l := range shown {
		g.Go(func() error {
			full, err := b.svc.Users.Labels.Get(user, l.Id).Context(gctx).Do()
			if err != nil {
				return mapError("get label "+l.Name, err)
			}
			out[i] = toLabel(full)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func isShownSystemLabel(id string) bool {
	switch id {
	case mail.LabelInbox, mail.LabelStarred, mail.LabelSent, labelDraft, mail.LabelTrash:
		return true
	}
	return false
}

func toLabel(l *gmailapi.Label) mail.Label {
	out := mail.Label{Name: l.Name, ItemCount: int(l.MessagesTotal)}
	if l.Id == labelDraft {
		out.Name = mail.LabelDrafts
	}
	if l.Color != nil {
		out.Color = l.Color.BackgroundColor
	}
	return out
}

// CreateLabel creates a user label
func (b *Backend) CreateLabel(ctx context.Context, name, color string) (*mail.Label, error) {
	l := &gmailapi.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}
	if color != "" {
		l.Color = &gmailapi.LabelColor{BackgroundColor: color, TextColor: "#000000"}
	}
	created, err := b.svc.Users.Labels.Create(user, l).Context(ctx).Do()
	if err != nil {
		return nil, mapError("create label "+name, err)
	}
	b.remember([]*gmailapi.Label{created})
	out := toLabel(created)
	return &out, nil
}

// DeleteLabel deletes a user label
func (b *Backend) DeleteLabel(ctx context.Context, name string) error {
	id, err := b.labelID(ctx, name)
	if err != nil {
		return err
	}
	if err := b.svc.Users.Labels.Delete(user, id).Context(ctx).Do(); err != nil {
		return mapError("delete label "+name, err)
	}
	b.mu.Lock()
	delete(b.idByName, strings.ToLower(name))
	delete(b.nameByID, id)
	b.mu.Unlock()
	return nil
}

func (b *Backend) toItem(ctx context.Context, msg *gmailapi.Message) *mail.Item {
	it := &mail.Item{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Subject:  extractHeader(msg, "Subject"),
		Snippet:  msg.Snippet,
		Date:     extractDate(msg),
		Read:     true,
		From:     parseContact(extractHeader(msg, "From")),
		To:       parseContacts(extractHeader(msg, "To")),
		CC:       parseContacts(extractHeader(msg, "Cc")),
	}
	for _, lid := range msg.LabelIds {
		switch {
		case lid == labelUnread:
			it.Read = false
		case lid == mail.LabelStarred:
			it.Starred = true
		case lid == "IMPORTANT" || lid == "CHAT" || strings.HasPrefix(lid, "CATEGORY_"):
		default:
			it.Labels = append(it.Labels, b.labelName(ctx, lid))
		}
	}
	return it
}

// labelID resolves a label name (or system id) to its Gmail id
func (b *Backend) labelID(ctx context.Context, name string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	switch upper {
	case mail.LabelInbox, mail.LabelSent, mail.LabelStarred, mail.LabelTrash, labelUnread, "SPAM", "IMPORTANT":
		return upper, nil
	case mail.LabelDrafts, labelDraft:
		return labelDraft, nil
	}

	key := strings.ToLower(strings.TrimSpace(name))
	b.mu.Lock()
	id, ok := b.idByName[key]
	b.mu.Unlock()
	if ok {
		return id, nil
	}
	if err := b.refreshLabels(ctx); err != nil {
		return "", err
	}
	b.mu.Lock()
	id, ok = b.idByName[key]
	b.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("label %q: %w", name, services.ErrNotFound)
	}
	return id, nil
}

func (b *Backend) labelName(ctx context.Context, id string) string {
	if id == labelDraft {
		return mail.LabelDrafts
	}
	if !strings.HasPrefix(id, "Label_") {
		return id
	}
	b.mu.Lock()
	name, ok := b.nameByID[id]
	b.mu.Unlock()
	if ok {
		return name
	}
	if err := b.refreshLabels(ctx); err != nil {
		return id
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if name, ok := b.nameByID[id]; ok {
		return name
	}
	return id
}

func (b *Backend) refreshLabels(ctx context.Context) error {
	res, err := b.svc.Users.Labels.List(user).Context(ctx).Do()
	if err != nil {
		return mapError("list labels", err)
	}
	b.remember(res.Labels)
	return nil
}

func (b *Backend) remember(labels []*gmailapi.Label) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.idByName == nil {
		b.idByName = make(map[string]string)
		b.nameByID = make(map[string]string)
	}
	for _, l := range labels {
		b.idByName[strings.ToLower(l.Name)] = l.Id
		b.nameByID[l.Id] = l.Name
	}
}

// mapError converts Gmail API errors to service sentinels
func mapError(op string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%s: %w: %w", op, services.ErrNetworkUnavailable, err)
	}
	var sentinel error
	switch {
	case gerr.Code == http.StatusNotFound:
		sentinel = services.ErrNotFound
	case gerr.Code == http.StatusUnauthorized:
		sentinel = services.ErrUnauthorized
	case gerr.Code == http.StatusForbidden:
		sentinel = services.ErrForbidden
	case gerr.Code == http.StatusTooManyRequests:
		sentinel = services.ErrRateLimited
	case gerr.Code == http.StatusBadRequest:
		sentinel = services.ErrInvalidInput
	case gerr.Code >= 500:
		sentinel = services.ErrServiceUnavailable
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, sentinel, err)
}
