package config

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Color represents a color in the application
type Color string

const (
	// DefaultColor represents a default color
	DefaultColor Color = "default"
)

// NewColor returns a new color
func NewColor(c string) Color {
	return Color(c)
}

// String returns color as a tview color tag value
func (c Color) String() string {
	if c.isHex() {
		return string(c)
	}
	if c == DefaultColor || c == "" {
		return "-"
	}
	col := c.Color().TrueColor().Hex()
	if col < 0 {
		return "-"
	}
	return fmt.Sprintf("#%06x", col)
}

func (c Color) isHex() bool {
	return len(c) == 7 && c[0] == '#'
}

// Color returns a view color
func (c Color) Color() tcell.Color {
	if c == DefaultColor || c == "" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(string(c)).TrueColor()
}

// Palette is the set of colors one theme variant needs
type Palette struct {
	Background Color `yaml:"background"`
	Foreground Color `yaml:"foreground"`
	Border     Color `yaml:"border"`
	Focus      Color `yaml:"focus"`
	Title      Color `yaml:"title"`
	Unread     Color `yaml:"unread"`
	Read       Color `yaml:"read"`
	Starred    Color `yaml:"starred"`
	Selection  Color `yaml:"selection"`
	Error      Color `yaml:"error"`
	Success    Color `yaml:"success"`
}

// DarkPalette returns the built-in dark palette
func DarkPalette() Palette {
	return Palette{
		Background: NewColor("#282a36"),
		Foreground: NewColor("#f8f8f2"),
		Border:     NewColor("#44475a"),
		Focus:      NewColor("#6272a4"),
		Title:      NewColor("#8be9fd"),
		Unread:     NewColor("#ffb86c"),
		Read:       NewColor("#9aa5ce"),
		Starred:    NewColor("#f1fa8c"),
		Selection:  NewColor("#44475a"),
		Error:      NewColor("#ff5555"),
		Success:    NewColor("#50fa7b"),
	}
}

// LightPalette returns the built-in light palette
func LightPalette() Palette {
	return Palette{
		Background: NewColor("#fafafa"),
		Foreground: NewColor("#202124"),
		Border:     NewColor("#dadce0"),
		Focus:      NewColor("#1a73e8"),
		Title:      NewColor("#1967d2"),
		Unread:     NewColor("#202124"),
		Read:       NewColor("#5f6368"),
		Starred:    NewColor("#e37400"),
		Selection:  NewColor("#d2e3fc"),
		Error:      NewColor("#d93025"),
		Success:    NewColor("#188038"),
	}
}

// merge fills empty fields of p from base
func (p Palette) merge(base Palette) Palette {
	pick := func(v, b Color) Color {
		if v == "" {
			return b
		}
		return v
	}
	return Palette{
		Background: pick(p.Background, base.Background),
		Foreground: pick(p.Foreground, base.Foreground),
		Border:     pick(p.Border, base.Border),
		Focus:      pick(p.Focus, base.Focus),
		Title:      pick(p.Title, base.Title),
		Unread:     pick(p.Unread, base.Unread),
		Read:       pick(p.Read, base.Read),
		Starred:    pick(p.Starred, base.Starred),
		Selection:  pick(p.Selection, base.Selection),
		Error:      pick(p.Error, base.Error),
		Success:    pick(p.Success, base.Success),
	}
}
