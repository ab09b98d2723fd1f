package store

import (
	"fmt"
	"strconv"

	"github.com/ksagna/import-tracker/internal/kvstore"
)

// Settings is the owner-scoped preference bundle. It is persisted key by key
// and deliberately outside undo history.
type Settings struct {
	Lang         string
	Theme        string
	ReminderDays int
	Autosave     bool
}

// DefaultSettings are the values a fresh installation starts with.
func DefaultSettings() Settings {
	return Settings{
		Lang:         "fr",
		Theme:        "dark",
		ReminderDays: 3,
		Autosave:     true,
	}
}

func (s *Store) loadSettings() error {
	if lang, ok, err := s.kv.Get(kvstore.KeyLang); err != nil {
		return fmt.Errorf("failed to load language: %w", err)
	} else if ok {
		s.settings.Lang = lang
	}

	if theme, ok, err := s.kv.Get(kvstore.KeyTheme); err != nil {
		return fmt.Errorf("failed to load theme: %w", err)
	} else if ok {
		s.settings.Theme = theme
	}

	if raw, ok, err := s.kv.Get(kvstore.KeyReminderDays); err != nil {
		return fmt.Errorf("failed to load reminder days: %w", err)
	} else if ok {
		if days, convErr := strconv.Atoi(raw); convErr == nil {
			s.settings.ReminderDays = days
		}
	}

	// Stored as the strings "true"/"false"; anything but an explicit
	// "false" keeps autosave on.
	if raw, ok, err := s.kv.Get(kvstore.KeyAutosave); err != nil {
		return fmt.Errorf("failed to load autosave flag: %w", err)
	} else if ok {
		s.settings.Autosave = raw != "false"
	}

	return nil
}

// Settings returns the current preference bundle.
func (s *Store) Settings() Settings {
	return s.settings
}

// SetLanguage switches the display language.
func (s *Store) SetLanguage(lang string) error {
	s.settings.Lang = lang
	return s.kv.Set(kvstore.KeyLang, lang)
}

// SetTheme switches the color theme.
func (s *Store) SetTheme(theme string) error {
	s.settings.Theme = theme
	return s.kv.Set(kvstore.KeyTheme, theme)
}

// SetReminderDays changes the stuck-in-transit alert threshold.
func (s *Store) SetReminderDays(days int) error {
	s.settings.ReminderDays = days
	return s.kv.Set(kvstore.KeyReminderDays, strconv.Itoa(days))
}

// SetAutosave toggles the backup side channel.
func (s *Store) SetAutosave(enabled bool) error {
	s.settings.Autosave = enabled
	return s.kv.Set(kvstore.KeyAutosave, strconv.FormatBool(enabled))
}
