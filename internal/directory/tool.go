package directory

import (
	"strings"
	"time"
)

// Pricing is the closed set of pricing tiers a tool can be listed under.
type Pricing string

const (
	PricingFree         Pricing = "free"
	PricingFreemium     Pricing = "freemium"
	PricingPaid         Pricing = "paid"
	PricingSubscription Pricing = "subscription"
)

// PricingTiers lists every concrete tier in display order.
var PricingTiers = []Pricing{PricingFree, PricingFreemium, PricingPaid, PricingSubscription}

// ParsePricing maps a raw CMS or query value onto a tier.
func ParsePricing(raw string) (Pricing, bool) {
	for _, tier := range PricingTiers {
		if string(tier) == raw {
			return tier, true
		}
	}
	return "", false
}

// Tool is a single listed catalog item. Values are treated as read-only once
// fetched; the engine never modifies them.
type Tool struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Image       string     `json:"image,omitempty"`
	Rating      float64    `json:"rating"`
	Pricing     Pricing    `json:"pricingType"`
	ExternalURL string     `json:"externalUrl,omitempty"`
	Categories  []string   `json:"categories"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// HasCategory reports whether one of the tool's labels equals label, ignoring case.
func (t Tool) HasCategory(label string) bool {
	for _, c := range t.Categories {
		if strings.EqualFold(c, label) {
			return true
		}
	}
	return false
}
