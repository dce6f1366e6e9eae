// Package directory filters and orders the tools catalog for display.
//
// The engine is pure: it never performs I/O, never mutates its input and
// always returns a fresh slice, so it can be re-run on every filter change.
package directory

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Engine applies a Filter to a catalog snapshot. The zero value compares
// titles with the root collation; set Locale for language-specific ordering.
type Engine struct {
	Locale language.Tag
}

// NewEngine returns an Engine that orders titles for the given locale.
func NewEngine(locale language.Tag) Engine {
	return Engine{Locale: locale}
}

// Apply returns the tools matching f, ordered by f.Sort. Ties keep their
// relative input order.
func (e Engine) Apply(tools []Tool, f Filter) []Tool {
	result := make([]Tool, 0, len(tools))

	search := strings.ToLower(f.Search)
	for _, tool := range tools {
		if search != "" && !matchesSearch(tool, search) {
			continue
		}
		if f.Category != CategoryAll && f.Category != "" && !tool.HasCategory(f.Category) {
			continue
		}
		if f.Pricing != PricingAll && f.Pricing != "" && tool.Pricing != f.Pricing {
			continue
		}
		result = append(result, tool)
	}

	slices.SortStableFunc(result, e.comparator(f.Sort))
	return result
}

// Apply runs the zero-value Engine.
func Apply(tools []Tool, f Filter) []Tool {
	return Engine{}.Apply(tools, f)
}

func matchesSearch(tool Tool, lowered string) bool {
	return strings.Contains(strings.ToLower(tool.Title), lowered) ||
		strings.Contains(strings.ToLower(tool.Description), lowered)
}

func (e Engine) comparator(mode SortMode) func(a, b Tool) int {
	switch mode {
	case SortNewest:
		return compareNewest
	case SortName:
		// Collators keep scratch buffers, so each Apply gets its own.
		collator := collate.New(e.Locale)
		return func(a, b Tool) int {
			return collator.CompareString(a.Title, b.Title)
		}
	default:
		return compareRating
	}
}

func compareRating(a, b Tool) int {
	return cmp.Compare(b.Rating, a.Rating)
}

// compareNewest puts later timestamps first; a missing timestamp is the
// earliest possible value.
func compareNewest(a, b Tool) int {
	switch {
	case a.CreatedAt == nil && b.CreatedAt == nil:
		return 0
	case a.CreatedAt == nil:
		return 1
	case b.CreatedAt == nil:
		return -1
	}
	return b.CreatedAt.Compare(*a.CreatedAt)
}
