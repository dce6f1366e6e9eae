package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() map[string]any {
	return map[string]any{
		"tools": map[string]any{
			"title":        "AI Tools",
			"result_count": "{{count}} tools, {{count}} shown",
			"nested":       map[string]any{"deep": "found"},
		},
		"count": 3,
	}
}

func TestTranslateResolvesDottedKeys(t *testing.T) {
	table := sampleTable()
	assert.Equal(t, "AI Tools", Translate(table, "tools.title", nil))
	assert.Equal(t, "found", Translate(table, "tools.nested.deep", nil))
}

func TestTranslateFallsBackToKey(t *testing.T) {
	table := sampleTable()
	for _, key := range []string{"tools.missing", "missing", "tools.nested", "count", "tools.title.extra", ""} {
		assert.Equal(t, key, Translate(table, key, nil), "key %q", key)
	}
	assert.Equal(t, "tools.title", Translate(nil, "tools.title", nil))
}

func TestTranslateReplacesEveryPlaceholder(t *testing.T) {
	got := Translate(sampleTable(), "tools.result_count", map[string]string{"count": "7", "unused": "x"})
	assert.Equal(t, "7 tools, 7 shown", got)
}

func TestLoadBundleHasMatchingKeys(t *testing.T) {
	b, err := LoadBundle()
	require.NoError(t, err)

	for _, key := range []string{"tools.title", "tools.no_tools", "common.page_not_found", "home.featured_tools"} {
		zh := b.T(Chinese, key, nil)
		en := b.T(English, key, nil)
		assert.NotEqual(t, key, zh, "zh missing %s", key)
		assert.NotEqual(t, key, en, "en missing %s", key)
		assert.NotEqual(t, zh, en)
	}
	assert.Equal(t, "3 tools", b.T(English, "tools.result_count", map[string]string{"count": "3"}))
}

func TestParse(t *testing.T) {
	lang, ok := Parse(" EN ")
	assert.True(t, ok)
	assert.Equal(t, English, lang)

	_, ok = Parse("fr")
	assert.False(t, ok)
}

func TestNegotiate(t *testing.T) {
	lang, ok := Negotiate("en-GB,en;q=0.9")
	assert.True(t, ok)
	assert.Equal(t, English, lang)

	lang, ok = Negotiate("zh-CN,zh;q=0.9,en;q=0.8")
	assert.True(t, ok)
	assert.Equal(t, Chinese, lang)

	_, ok = Negotiate("")
	assert.False(t, ok)
}

func TestLanguageLocales(t *testing.T) {
	assert.Equal(t, "zh-CN", Chinese.CMSLocale())
	assert.Equal(t, "en-US", English.CMSLocale())
}
