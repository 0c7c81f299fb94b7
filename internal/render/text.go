package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// LinkRef is a link pulled out of a body and replaced by a [n] marker
type LinkRef struct {
	Index int
	URL   string
	Text  string
}

var (
	htmlHint = regexp.MustCompile(`(?i)<\s*(html|body|div|p|br|table|span|a)\b`)
	urlRe    = regexp.MustCompile(`(?i)\bhttps?://[\w\-\._~:/%\?#\[\]@!$&'()*+,;=]+`)
)

// LooksLikeHTML reports whether body should be parsed as HTML
func LooksLikeHTML(body string) bool {
	return htmlHint.MatchString(body)
}

// PlainText converts a message body to terminal-safe plain text
func PlainText(body string) string {
	text, _ := Body(body)
	return text
}

// Body converts a message body to plain text and returns the links it
// replaced with [n] references
func Body(body string) (string, []LinkRef) {
	if strings.TrimSpace(body) == "" {
		return "", nil
	}
	var (
		text  string
		links []LinkRef
	)
	if LooksLikeHTML(body) {
		var err error
		text, links, err = htmlToText(body)
		if err != nil {
			text = body
		}
	} else {
		text, links = extractLinks(body, 0)
	}
	return strings.TrimSpace(dedupeLines(sanitize(normalizeNewlines(text)))), links
}

// extractLinks replaces bare URLs with [n] references numbered after offset
func extractLinks(input string, offset int) (string, []LinkRef) {
	idx := offset
	var links []LinkRef
	out := urlRe.ReplaceAllStringFunc(input, func(m string) string {
		idx++
		links = append(links, LinkRef{Index: idx, URL: m, Text: m})
		return fmt.Sprintf("[%d]", idx)
	})
	return out, links
}

func htmlToText(src string) (string, []LinkRef, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", nil, err
	}

	var (
		b     strings.Builder
		links []LinkRef
		walk  func(n *html.Node)
	)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(strings.Join(strings.Fields(n.Data), " "))
			if strings.HasSuffix(n.Data, " ") {
				b.WriteByte(' ')
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head", "title":
				return
			case "br":
				b.WriteByte('\n')
				return
			case "a":
				href := attr(n, "href")
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}
				if strings.HasPrefix(href, "http") {
					links = append(links, LinkRef{Index: len(links) + 1, URL: href})
					fmt.Fprintf(&b, " [%d]", len(links))
				}
				return
			case "li":
				b.WriteString("\n- ")
			case "blockquote":
				b.WriteString("\n> ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "table", "ul", "ol", "h1", "h2", "h3", "h4", "blockquote":
				b.WriteString("\n\n")
			case "tr":
				b.WriteByte('\n')
			case "td", "th":
				b.WriteString(" | ")
			}
		}
	}
	walk(doc)
	return b.String(), links, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// sanitize replaces rich-text glyphs that render badly in terminals
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\u00A0', '\u202F':
			b.WriteRune(' ')
		case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u00AD', '\u2060':
		case '\u2013', '\u2014':
			b.WriteRune('-')
		case '\u2022', '\u25CF', '\u25E6':
			b.WriteString("- ")
		case '\u2018', '\u2019':
			b.WriteRune('\'')
		case '\u201C', '\u201D':
			b.WriteRune('"')
		case '\u2026':
			b.WriteString("...")
		default:
			if unicode.IsControl(r) && r != '\n' && r != '\t' {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dedupeLines trims trailing spaces, drops repeated lines and empty cell runs
func dedupeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	prev := ""
	for _, ln := range lines {
		cur := strings.TrimRight(ln, " ")
		trimmed := strings.Trim(strings.TrimSpace(cur), "| ")
		if trimmed == "" && strings.Contains(cur, "|") {
			continue
		}
		if trimmed != "" && trimmed == prev {
			continue
		}
		out = append(out, strings.TrimSpace(cur))
		prev = trimmed
	}
	return normalizeNewlines(strings.Join(out, "\n"))
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
