package i18n

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Bundle holds one translation table per language.
type Bundle struct {
	tables map[Language]map[string]any
}

// LoadBundle parses the embedded locale tables.
func LoadBundle() (*Bundle, error) {
	b := &Bundle{tables: make(map[Language]map[string]any, len(Languages))}
	for _, lang := range Languages {
		data, err := localeFS.ReadFile("locales/" + string(lang) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("read %s translations: %w", lang, err)
		}
		table := map[string]any{}
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parse %s translations: %w", lang, err)
		}
		b.tables[lang] = table
	}
	return b, nil
}

// NewBundle builds a Bundle from in-memory tables.
func NewBundle(tables map[Language]map[string]any) *Bundle {
	return &Bundle{tables: tables}
}

// T translates key for lang, falling back to the key itself.
func (b *Bundle) T(lang Language, key string, params map[string]string) string {
	return Translate(b.tables[lang], key, params)
}
