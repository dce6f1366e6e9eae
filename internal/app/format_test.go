package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"aitolife/internal/i18n"
)

func TestFormatDate(t *testing.T) {
	date := time.Date(2024, time.March, 5, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024年3月5日", formatDate(i18n.Chinese, &date))
	assert.Equal(t, "March 5, 2024", formatDate(i18n.English, &date))
	assert.Equal(t, "", formatDate(i18n.English, nil))
	assert.Equal(t, "", formatDate(i18n.English, &time.Time{}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "hello...", truncate("hello world", 6))
	assert.Equal(t, "人工智能...", truncate("人工智能工具大全", 4))

	long := strings.Repeat("a", 120)
	assert.Equal(t, strings.Repeat("a", 100)+"...", truncate(long, 0))
	assert.Equal(t, long[:100], truncate(long[:100], 0))
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★★★★☆", stars(4.7))
	assert.Equal(t, "★★★★★", stars(5))
	assert.Equal(t, "☆☆☆☆☆", stars(0))
}
