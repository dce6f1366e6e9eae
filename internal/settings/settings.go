// Package settings owns the visitor's language and theme preferences.
//
// Preferences are explicit values loaded from, and saved through, a
// Persister supplied by the caller; nothing here reads ambient state.
package settings

import (
	"aitolife/internal/i18n"
)

// Theme is the colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const (
	LanguageKey = "aitolife_language"
	ThemeKey    = "aitolife_theme"
)

// Persister stores preference values between visits.
type Persister interface {
	Load(key string) (string, bool)
	Save(key, value string)
}

// Hints carries what the client told us about itself, used when nothing has
// been saved yet.
type Hints struct {
	AcceptLanguage string
	PrefersDark    bool

	// DefaultLanguage replaces i18n.DefaultLanguage when set.
	DefaultLanguage i18n.Language
}

// Settings is the resolved preference state for one visitor.
type Settings struct {
	persister Persister
	language  i18n.Language
	theme     Theme
}

// Load resolves preferences: saved values first, then client hints, then
// defaults. A language chosen from hints or defaults is saved back.
func Load(p Persister, hints Hints) *Settings {
	s := &Settings{persister: p}

	if saved, ok := p.Load(LanguageKey); ok {
		if lang, ok := i18n.Parse(saved); ok {
			s.language = lang
		}
	}
	if s.language == "" {
		lang, ok := i18n.Negotiate(hints.AcceptLanguage)
		if !ok {
			lang = i18n.DefaultLanguage
			if hints.DefaultLanguage != "" {
				lang = hints.DefaultLanguage
			}
		}
		s.language = lang
		p.Save(LanguageKey, string(lang))
	}

	saved, _ := p.Load(ThemeKey)
	switch Theme(saved) {
	case ThemeLight, ThemeDark:
		s.theme = Theme(saved)
	default:
		s.theme = ThemeLight
		if hints.PrefersDark {
			s.theme = ThemeDark
		}
	}

	return s
}

// Language returns the active language.
func (s *Settings) Language() i18n.Language {
	return s.language
}

// Theme returns the active theme.
func (s *Settings) Theme() Theme {
	return s.theme
}

// SetLanguage switches and persists the language. Unsupported values are
// ignored and reported as false.
func (s *Settings) SetLanguage(raw string) bool {
	lang, ok := i18n.Parse(raw)
	if !ok {
		return false
	}
	s.language = lang
	s.persister.Save(LanguageKey, string(lang))
	return true
}

// ToggleTheme flips between light and dark and persists the result.
func (s *Settings) ToggleTheme() Theme {
	if s.theme == ThemeDark {
		s.theme = ThemeLight
	} else {
		s.theme = ThemeDark
	}
	s.persister.Save(ThemeKey, string(s.theme))
	return s.theme
}

// MapPersister is an in-memory Persister.
type MapPersister map[string]string

func (m MapPersister) Load(key string) (string, bool) {
	value, ok := m[key]
	return value, ok
}

func (m MapPersister) Save(key, value string) {
	m[key] = value
}
