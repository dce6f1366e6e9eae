package directory

import (
	"net/url"
	"strings"
)

// SortMode selects the ordering applied after filtering.
type SortMode string

const (
	SortRating SortMode = "rating"
	SortNewest SortMode = "newest"
	SortName   SortMode = "name"
)

// SortModes lists the supported sort modes in display order.
var SortModes = []SortMode{SortRating, SortNewest, SortName}

const (
	// CategoryAll disables the category filter.
	CategoryAll = "all"
	// PricingAll disables the pricing filter.
	PricingAll Pricing = "all"
)

// Filter is the combined search/category/pricing/sort selection driving the
// visible subset of the directory. A Filter is expected to be fully
// populated; use DefaultFilter or ParseFilter to build one.
type Filter struct {
	Search   string
	Category string
	Pricing  Pricing
	Sort     SortMode
}

// DefaultFilter returns the reset state: no search, every category and
// pricing tier, sorted by rating.
func DefaultFilter() Filter {
	return Filter{
		Search:   "",
		Category: CategoryAll,
		Pricing:  PricingAll,
		Sort:     SortRating,
	}
}

// IsDefault reports whether f equals the reset state.
func (f Filter) IsDefault() bool {
	return f == DefaultFilter()
}

// ParseFilter builds a Filter from query parameters q, category, pricing and
// sort. Missing or unknown values fall back to their defaults.
func ParseFilter(values url.Values) Filter {
	f := DefaultFilter()
	f.Search = strings.TrimSpace(values.Get("q"))

	if category := strings.TrimSpace(values.Get("category")); category != "" {
		f.Category = category
	}
	if tier, ok := ParsePricing(values.Get("pricing")); ok {
		f.Pricing = tier
	}
	if mode, ok := parseSortMode(values.Get("sort")); ok {
		f.Sort = mode
	}
	return f
}

// Values encodes the non-default fields of f as query parameters.
func (f Filter) Values() url.Values {
	values := url.Values{}
	if f.Search != "" {
		values.Set("q", f.Search)
	}
	if f.Category != CategoryAll && f.Category != "" {
		values.Set("category", f.Category)
	}
	if f.Pricing != PricingAll && f.Pricing != "" {
		values.Set("pricing", string(f.Pricing))
	}
	if f.Sort != SortRating && f.Sort != "" {
		values.Set("sort", string(f.Sort))
	}
	return values
}

func parseSortMode(raw string) (SortMode, bool) {
	for _, mode := range SortModes {
		if string(mode) == raw {
			return mode, true
		}
	}
	return "", false
}
