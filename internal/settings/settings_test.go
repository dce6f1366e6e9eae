package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aitolife/internal/i18n"
)

func TestLoadUsesSavedValues(t *testing.T) {
	p := MapPersister{LanguageKey: "en", ThemeKey: "dark"}
	s := Load(p, Hints{AcceptLanguage: "zh-CN"})

	assert.Equal(t, i18n.English, s.Language())
	assert.Equal(t, ThemeDark, s.Theme())
}

func TestLoadNegotiatesAndSavesLanguage(t *testing.T) {
	p := MapPersister{}
	s := Load(p, Hints{AcceptLanguage: "en-US,en;q=0.9"})

	assert.Equal(t, i18n.English, s.Language())
	assert.Equal(t, "en", p[LanguageKey])
	_, saved := p[ThemeKey]
	assert.False(t, saved, "theme is only saved on toggle")
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	p := MapPersister{LanguageKey: "klingon", ThemeKey: "sepia"}
	s := Load(p, Hints{})

	assert.Equal(t, i18n.DefaultLanguage, s.Language())
	assert.Equal(t, "zh", p[LanguageKey])
	assert.Equal(t, ThemeLight, s.Theme())
}

func TestLoadConfiguredDefaultLanguage(t *testing.T) {
	p := MapPersister{}
	s := Load(p, Hints{AcceptLanguage: "fr-FR", DefaultLanguage: i18n.English})

	assert.Equal(t, i18n.English, s.Language())
	assert.Equal(t, "en", p[LanguageKey])
}

func TestLoadPrefersDarkHint(t *testing.T) {
	s := Load(MapPersister{}, Hints{PrefersDark: true})
	assert.Equal(t, ThemeDark, s.Theme())
}

func TestSetLanguage(t *testing.T) {
	p := MapPersister{}
	s := Load(p, Hints{})

	assert.False(t, s.SetLanguage("fr"))
	assert.Equal(t, i18n.Chinese, s.Language())

	assert.True(t, s.SetLanguage("en"))
	assert.Equal(t, i18n.English, s.Language())
	assert.Equal(t, "en", p[LanguageKey])
}

func TestToggleTheme(t *testing.T) {
	p := MapPersister{}
	s := Load(p, Hints{})

	assert.Equal(t, ThemeDark, s.ToggleTheme())
	assert.Equal(t, "dark", p[ThemeKey])
	assert.Equal(t, ThemeLight, s.ToggleTheme())
	assert.Equal(t, "light", p[ThemeKey])
}
