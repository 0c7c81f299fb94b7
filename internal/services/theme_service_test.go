package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapPrefs struct {
	values map[string]string
	setErr error
}

func (m *mapPrefs) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapPrefs) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func newThemeService(prefs PreferenceStore, darkDefault bool, colorfgbg string) *ThemeServiceImpl {
	s := NewThemeService(prefs, darkDefault, zerolog.Nop())
	s.getenv = func(string) string { return colorfgbg }
	return s
}

func TestThemeService_ResolutionOrder(t *testing.T) {
	ctx := context.Background()

	stored := &mapPrefs{values: map[string]string{DarkModeKey: "false"}}
	assert.False(t, newThemeService(stored, true, "15;0").IsDark(ctx))

	empty := &mapPrefs{values: map[string]string{}}
	assert.True(t, newThemeService(empty, false, "15;0").IsDark(ctx))
	assert.False(t, newThemeService(empty, true, "0;15").IsDark(ctx))

	assert.True(t, newThemeService(empty, true, "").IsDark(ctx))
	assert.False(t, newThemeService(nil, false, "").IsDark(ctx))

	malformed := &mapPrefs{values: map[string]string{DarkModeKey: "maybe"}}
	assert.True(t, newThemeService(malformed, true, "").IsDark(ctx))
}

func TestThemeService_TogglePersists(t *testing.T) {
	ctx := context.Background()
	prefs := &mapPrefs{values: map[string]string{}}
	s := newThemeService(prefs, true, "")

	dark, err := s.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, dark)
	assert.Equal(t, "false", prefs.values[DarkModeKey])

	dark, err = s.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, dark)
	assert.Equal(t, "true", prefs.values[DarkModeKey])

	// a fresh service reads the stored value
	assert.True(t, newThemeService(prefs, false, "0;15").IsDark(ctx))
}

func TestThemeService_PersistFailureStillFlips(t *testing.T) {
	ctx := context.Background()
	prefs := &mapPrefs{values: map[string]string{}, setErr: errors.New("disk full")}
	s := newThemeService(prefs, true, "")

	dark, err := s.Toggle(ctx)
	assert.ErrorIs(t, err, ErrPreferenceStorage)
	assert.False(t, dark)
	assert.False(t, s.IsDark(ctx))

	assert.ErrorIs(t, s.SetDark(ctx, true), ErrPreferenceStorage)
	assert.True(t, s.IsDark(ctx))
}

func TestSystemPrefersDark(t *testing.T) {
	tests := []struct {
		in       string
		dark, ok bool
	}{
		{"15;0", true, true},
		{"0;15", false, true},
		{"0;default;8", true, true},
		{"0;7", false, true},
		{"", false, false},
		{"15", false, false},
		{"15;x", false, false},
		{"15;99", false, false},
	}
	for _, tt := range tests {
		dark, ok := SystemPrefersDark(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.dark, dark, tt.in)
	}
}
