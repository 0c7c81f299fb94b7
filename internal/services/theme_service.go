package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// DarkModeKey is the preference key holding the theme choice
const DarkModeKey = "darkMode"

// PreferenceStore persists string preferences
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ThemeServiceImpl implements ThemeService. Resolution order: stored
// preference, terminal color scheme, configured default.
type ThemeServiceImpl struct {
	prefs       PreferenceStore
	darkDefault bool
	getenv      func(string) string
	log         zerolog.Logger

	mu      sync.Mutex
	current *bool
}

// NewThemeService creates a new theme service. prefs may be nil, in which
// case toggles only last for the session.
func NewThemeService(prefs PreferenceStore, darkDefault bool, log zerolog.Logger) *ThemeServiceImpl {
	return &ThemeServiceImpl{
		prefs:       prefs,
		darkDefault: darkDefault,
		getenv:      os.Getenv,
		log:         log,
	}
}

// IsDark returns the effective theme
func (s *ThemeServiceImpl) IsDark(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked(ctx)
}

func (s *ThemeServiceImpl) resolveLocked(ctx context.Context) bool {
	if s.current != nil {
		return *s.current
	}

	dark := s.darkDefault
	if stored, ok := s.stored(ctx); ok {
		dark = stored
	} else if sys, ok := SystemPrefersDark(s.getenv("COLORFGBG")); ok {
		dark = sys
	}
	s.current = &dark
	return dark
}

func (s *ThemeServiceImpl) stored(ctx context.Context) (bool, bool) {
	if s.prefs == nil {
		return false, false
	}
	v, ok, err := s.prefs.Get(ctx, DarkModeKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("read theme preference")
		return false, false
	}
	if !ok {
		return false, false
	}
	dark, err := strconv.ParseBool(v)
	if err != nil {
		s.log.Warn().Str("value", v).Msg("ignoring malformed theme preference")
		return false, false
	}
	return dark, true
}

// Toggle flips and persists the theme and returns the new value. The new
// value takes effect even when persisting fails.
func (s *ThemeServiceImpl) Toggle(ctx context.Context) (bool, error) {
	s.mu.Lock()
	dark := !s.resolveLocked(ctx)
	s.current = &dark
	s.mu.Unlock()

	return dark, s.persist(ctx, dark)
}

// SetDark sets and persists the theme
func (s *ThemeServiceImpl) SetDark(ctx context.Context, dark bool) error {
	s.mu.Lock()
	s.current = &dark
	s.mu.Unlock()
	return s.persist(ctx, dark)
}

func (s *ThemeServiceImpl) persist(ctx context.Context, dark bool) error {
	if s.prefs == nil {
		return nil
	}
	if err := s.prefs.Set(ctx, DarkModeKey, strconv.FormatBool(dark)); err != nil {
		s.log.Warn().Err(err).Bool("dark", dark).Msg("persist theme preference")
		return fmt.Errorf("%w: %v", ErrPreferenceStorage, err)
	}
	return nil
}

// SystemPrefersDark reads a COLORFGBG value ("fg;bg" or "fg;x;bg"). Background
// colors 0-6 and 8 are dark; ok is false when the value gives no hint.
func SystemPrefersDark(colorfgbg string) (dark bool, ok bool) {
	parts := strings.Split(strings.TrimSpace(colorfgbg), ";")
	if len(parts) < 2 {
		return false, false
	}
	bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil || bg < 0 || bg > 15 {
		return false, false
	}
	return bg <= 6 || bg == 8, true
}
