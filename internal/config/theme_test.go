package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPalettes_EmptyPath(t *testing.T) {
	p, err := LoadPalettes("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPalettes(), p)
	assert.Equal(t, DarkPalette(), p.For(true))
	assert.Equal(t, LightPalette(), p.For(false))
}

func TestLoadPalettes_PartialFileMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.yaml")
	data := "inboxtui:\n  dark:\n    unread: \"#ff0000\"\n  light:\n    background: white\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	p, err := LoadPalettes(path)
	require.NoError(t, err)

	assert.Equal(t, Color("#ff0000"), p.Dark.Unread)
	assert.Equal(t, DarkPalette().Background, p.Dark.Background)
	assert.Equal(t, Color("white"), p.Light.Background)
	assert.Equal(t, LightPalette().Foreground, p.Light.Foreground)
}

func TestLoadPalettes_Errors(t *testing.T) {
	_, err := LoadPalettes(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inboxtui: [unclosed"), 0o600))
	p, err := LoadPalettes(path)
	assert.Error(t, err)
	assert.Equal(t, DefaultPalettes(), p)
}

func TestSavePalettes_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.yaml")
	want := DefaultPalettes()
	want.Dark.Error = NewColor("#123456")

	require.NoError(t, SavePalettes(path, want))
	got, err := LoadPalettes(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#abcdef", NewColor("#abcdef").String())
	assert.Equal(t, "-", DefaultColor.String())
	assert.Equal(t, "-", Color("").String())
	assert.Equal(t, tcell.ColorDefault, DefaultColor.Color())
}
