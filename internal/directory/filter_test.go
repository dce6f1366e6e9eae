package directory

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilterDefaults(t *testing.T) {
	f := ParseFilter(url.Values{})
	assert.True(t, f.IsDefault())
	assert.Equal(t, DefaultFilter(), f)
}

func TestParseFilterKnownValues(t *testing.T) {
	f := ParseFilter(url.Values{
		"q":        {"  notion "},
		"category": {"Writing"},
		"pricing":  {"paid"},
		"sort":     {"newest"},
	})

	assert.Equal(t, Filter{Search: "notion", Category: "Writing", Pricing: PricingPaid, Sort: SortNewest}, f)
}

func TestParseFilterUnknownValuesFallBack(t *testing.T) {
	f := ParseFilter(url.Values{
		"pricing": {"enterprise"},
		"sort":    {"popularity"},
	})

	assert.Equal(t, PricingAll, f.Pricing)
	assert.Equal(t, SortRating, f.Sort)
}

func TestFilterValuesRoundTrip(t *testing.T) {
	f := Filter{Search: "ai", Category: "Image", Pricing: PricingFree, Sort: SortName}
	assert.Equal(t, f, ParseFilter(f.Values()))
	assert.Empty(t, DefaultFilter().Values())
}
