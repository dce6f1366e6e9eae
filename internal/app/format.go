package app

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"aitolife/internal/i18n"
)

const defaultTruncateLength = 100

// formatDate renders t as a long date in the visitor's language.
func formatDate(lang i18n.Language, t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	if lang == i18n.Chinese {
		return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
	}
	return t.Format("January 2, 2006")
}

// truncate shortens text to max runes, trimming trailing space before the
// ellipsis. A non-positive max uses the default length.
func truncate(text string, max int) string {
	if max <= 0 {
		max = defaultTruncateLength
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "..."
}

// stars renders a five-star rating; a star is filled for every whole point.
func stars(rating float64) string {
	const maxStars = 5
	var b strings.Builder
	for i := 1; i <= maxStars; i++ {
		if float64(i) <= rating {
			b.WriteString("★")
		} else {
			b.WriteString("☆")
		}
	}
	return b.String()
}
