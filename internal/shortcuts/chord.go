package shortcuts

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// Chord is a normalized key combination
type Chord struct {
	Key   tcell.Key // tcell.KeyRune for printable keys
	Rune  rune      // lower-cased; zero unless Key is KeyRune
	Shift bool
	Ctrl  bool // primary modifier: Ctrl, or Meta/Cmd
	Alt   bool
}

var namedKeys = map[string]tcell.Key{
	"enter":     tcell.KeyEnter,
	"return":    tcell.KeyEnter,
	"esc":       tcell.KeyEscape,
	"escape":    tcell.KeyEscape,
	"tab":       tcell.KeyTab,
	"backspace": tcell.KeyBackspace2,
	"delete":    tcell.KeyDelete,
	"up":        tcell.KeyUp,
	"down":      tcell.KeyDown,
	"left":      tcell.KeyLeft,
	"right":     tcell.KeyRight,
	"home":      tcell.KeyHome,
	"end":       tcell.KeyEnd,
	"pgup":      tcell.KeyPgUp,
	"pgdn":      tcell.KeyPgDn,
}

// ParseBinding parses a comma separated list of alternatives such as
// "o,enter" or "shift+i". An empty binding yields no chords.
func ParseBinding(s string) ([]Chord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []Chord
	for _, alt := range splitAlternatives(s) {
		c, err := ParseChord(alt)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// splitAlternatives splits on commas, keeping a lone "," as a key
func splitAlternatives(s string) []string {
	if s == "," {
		return []string{","}
	}
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// ParseChord parses a single chord like "c", "#", "shift+u", "ctrl+r" or "esc"
func ParseChord(s string) (Chord, error) {
	var c Chord
	rest := strings.TrimSpace(s)
	if rest == "" {
		return c, fmt.Errorf("empty key")
	}

	for {
		i := strings.Index(rest, "+")
		if i <= 0 || i == len(rest)-1 {
			break
		}
		switch strings.ToLower(rest[:i]) {
		case "shift":
			c.Shift = true
		case "ctrl", "control", "cmd", "meta":
			c.Ctrl = true
		case "alt", "option":
			c.Alt = true
		default:
			return Chord{}, fmt.Errorf("unknown modifier %q in %q", rest[:i], s)
		}
		rest = rest[i+1:]
	}

	if k, ok := namedKeys[strings.ToLower(rest)]; ok {
		c.Key = k
		return c, nil
	}
	if utf8.RuneCountInString(rest) != 1 {
		return Chord{}, fmt.Errorf("unknown key %q", s)
	}

	r, _ := utf8.DecodeRuneInString(rest)
	if unicode.IsUpper(r) {
		c.Shift = true
	}
	c.Key = tcell.KeyRune
	c.Rune = unicode.ToLower(r)
	return c, nil
}

// FromEvent normalizes a tcell key event. Ctrl+letter events arrive as
// KeyCtrlA..KeyCtrlZ and are folded back into their letter.
func FromEvent(ev *tcell.EventKey) Chord {
	mods := ev.Modifiers()
	c := Chord{
		Shift: mods&tcell.ModShift != 0,
		Ctrl:  mods&(tcell.ModCtrl|tcell.ModMeta) != 0,
		Alt:   mods&tcell.ModAlt != 0,
	}

	key := ev.Key()
	switch {
	case key == tcell.KeyRune:
		r := ev.Rune()
		if unicode.IsUpper(r) {
			c.Shift = true
		}
		c.Key = tcell.KeyRune
		c.Rune = unicode.ToLower(r)
	case key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ && mods&tcell.ModCtrl != 0:
		c.Key = tcell.KeyRune
		c.Rune = rune('a' + (key - tcell.KeyCtrlA))
		c.Ctrl = true
	case key == tcell.KeyBackspace:
		c.Key = tcell.KeyBackspace2
	default:
		c.Key = key
	}
	return c
}

// Matches reports whether an event chord satisfies the binding chord b
func (b Chord) Matches(ev Chord) bool {
	if b.Key != ev.Key || b.Ctrl != ev.Ctrl || b.Alt != ev.Alt {
		return false
	}
	if b.Key != tcell.KeyRune {
		return true
	}
	if b.Rune != ev.Rune {
		return false
	}
	// Shift only distinguishes letters; symbols like # and ? need it to be typed
	if unicode.IsLetter(b.Rune) {
		return b.Shift == ev.Shift
	}
	return true
}

// String renders the chord in binding syntax
func (b Chord) String() string {
	var sb strings.Builder
	if b.Ctrl {
		sb.WriteString("ctrl+")
	}
	if b.Alt {
		sb.WriteString("alt+")
	}
	if b.Shift && (b.Key != tcell.KeyRune || unicode.IsLetter(b.Rune)) {
		sb.WriteString("shift+")
	}
	if b.Key == tcell.KeyRune {
		sb.WriteRune(b.Rune)
		return sb.String()
	}
	for name, k := range namedKeys {
		if k == b.Key && canonicalName(name) {
			sb.WriteString(name)
			return sb.String()
		}
	}
	sb.WriteString(tcell.KeyNames[b.Key])
	return sb.String()
}

func canonicalName(name string) bool {
	return name != "return" && name != "escape"
}
