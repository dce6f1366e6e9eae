// Package i18n resolves dotted translation keys against nested tables.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is a supported site language.
type Language string

const (
	Chinese Language = "zh"
	English Language = "en"
)

// DefaultLanguage is used when nothing better is known.
const DefaultLanguage = Chinese

// Languages lists the supported languages, default first.
var Languages = []Language{Chinese, English}

var matcher = language.NewMatcher([]language.Tag{
	language.SimplifiedChinese,
	language.English,
})

// Parse reports whether raw names a supported language.
func Parse(raw string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(raw))) {
	case Chinese:
		return Chinese, true
	case English:
		return English, true
	}
	return "", false
}

// Negotiate picks the best supported language for an Accept-Language header.
// It reports false when the header expresses no usable preference.
func Negotiate(acceptLanguage string) (Language, bool) {
	if strings.TrimSpace(acceptLanguage) == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return "", false
	}
	if index == 1 {
		return English, true
	}
	return Chinese, true
}

// Tag returns the BCP 47 tag used for collation and formatting.
func (l Language) Tag() language.Tag {
	if l == English {
		return language.English
	}
	return language.SimplifiedChinese
}

// CMSLocale returns the content backend locale code.
func (l Language) CMSLocale() string {
	if l == English {
		return "en-US"
	}
	return "zh-CN"
}

// Translate walks table along the dot-separated key and returns the string
// found there with every {{name}} placeholder replaced from params. When the
// path is missing or does not end at a string, the key itself is returned.
func Translate(table map[string]any, key string, params map[string]string) string {
	var value any = table
	for _, part := range strings.Split(key, ".") {
		node, ok := value.(map[string]any)
		if !ok {
			return key
		}
		value, ok = node[part]
		if !ok {
			return key
		}
	}

	text, ok := value.(string)
	if !ok {
		return key
	}
	for name, replacement := range params {
		text = strings.ReplaceAll(text, "{{"+name+"}}", replacement)
	}
	return text
}
