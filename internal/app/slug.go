package app

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugAllowed = regexp.MustCompile(`^[a-z0-9\-]+$`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// CleanSlug prepares a path segment for a CMS lookup. It trims surrounding
// space and composes the text to NFC but otherwise keeps the slug as written,
// so case, underscores and non-Latin scripts reach the CMS unchanged.
func CleanSlug(input string) (string, error) {
	trimmed := norm.NFC.String(strings.TrimSpace(input))
	if trimmed == "" {
		return "", errors.New("empty slug")
	}
	if strings.ContainsAny(trimmed, "/\\?#") || strings.Contains(trimmed, "..") {
		return "", errors.New("slug contains invalid path characters")
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", errors.New("slug contains control characters")
		}
	}
	return trimmed, nil
}

// NormalizeSlug folds a raw path segment into lowercase hyphenated ASCII. It
// is the fallback spelling tried when a slug is not found as written.
func NormalizeSlug(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if strings.ContainsAny(trimmed, "/\\?&:#'\"") || strings.Contains(trimmed, "..") {
		return "", errors.New("slug contains invalid path characters")
	}

	trimmed = stripDiacritics(trimmed)
	trimmed = strings.ReplaceAll(trimmed, "%20", "-")
	trimmed = normalizeUnicode(trimmed)
	trimmed = strings.Trim(trimmed, "-")

	if trimmed == "" {
		return "", errors.New("empty slug")
	}

	trimmed = slugDashes.ReplaceAllString(trimmed, "-")

	if !slugAllowed.MatchString(trimmed) {
		return "", errors.New("slug contains invalid characters")
	}

	return trimmed, nil
}

func normalizeUnicode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == '_' || unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			// skip everything else
		}
	}
	return b.String()
}

// SlugTitle turns a slug into a heading, one capitalized word per segment.
func SlugTitle(slug string) string {
	parts := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, part := range parts {
		r, size := utf8.DecodeRuneInString(part)
		parts[i] = string(unicode.ToTitle(r)) + part[size:]
	}
	return strings.Join(parts, " ")
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	stripped, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return stripped
}
