package gmail

import (
	"encoding/base64"
	"io"
	"mime/quotedprintable"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/ajramos/inboxtui/internal/mail"
	gmailapi "google.golang.org/api/gmail/v1"
)

func extractHeader(msg *gmailapi.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func extractDate(msg *gmailapi.Message) time.Time {
	if msg.InternalDate > 0 {
		return time.UnixMilli(msg.InternalDate)
	}
	if t, err := netmail.ParseDate(extractHeader(msg, "Date")); err == nil {
		return t
	}
	return time.Time{}
}

func parseContact(s string) mail.Contact {
	if a, err := netmail.ParseAddress(s); err == nil {
		return mail.Contact{Email: a.Address, Name: a.Name}
	}
	return mail.Contact{Email: strings.TrimSpace(s)}
}

func parseContacts(s string) []mail.Contact {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	list, err := netmail.ParseAddressList(s)
	if err != nil {
		var out []mail.Contact
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, parseContact(part))
			}
		}
		return out
	}
	out := make([]mail.Contact, 0, len(list))
	for _, a := range list {
		out = append(out, mail.Contact{Email: a.Address, Name: a.Name})
	}
	return out
}

// extractBody prefers the HTML part; the renderer converts it to text
func extractBody(msg *gmailapi.Message) string {
	if msg.Payload == nil {
		return ""
	}
	if html := findPart(msg.Payload, "text/html"); html != "" {
		return html
	}
	return findPart(msg.Payload, "text/plain")
}

func findPart(part *gmailapi.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if part.Body != nil && part.Body.Data != "" && strings.EqualFold(part.MimeType, mimeType) {
		return decodeData(part.Body.Data)
	}
	for _, p := range part.Parts {
		if s := findPart(p, mimeType); s != "" {
			return s
		}
	}
	return ""
}

func decodeData(data string) string {
	raw, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		if raw, err = base64.RawURLEncoding.DecodeString(data); err != nil {
			return ""
		}
	}
	if decoded, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(string(raw)))); err == nil {
		return string(decoded)
	}
	return string(raw)
}

// buildRaw renders a plain text RFC 822 message for Messages.Send
func buildRaw(d mail.Draft) string {
	var sb strings.Builder
	sb.WriteString("To: " + strings.Join(d.To, ", ") + "\r\n")
	if len(d.CC) > 0 {
		sb.WriteString("Cc: " + strings.Join(d.CC, ", ") + "\r\n")
	}
	sb.WriteString("Subject: " + d.Subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(d.Body)
	return base64.URLEncoding.EncodeToString([]byte(sb.String()))
}
