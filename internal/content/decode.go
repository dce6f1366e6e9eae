package content

import (
	"encoding/json"
	"strings"
	"time"

	"aitolife/internal/directory"
)

// resolver looks up linked entries and assets included in a response.
type resolver struct {
	entries map[string]Entry
	assets  map[string]Entry
}

func newResolver(c *Collection) resolver {
	r := resolver{
		entries: make(map[string]Entry, len(c.Includes.Entry)+len(c.Items)),
		assets:  make(map[string]Entry, len(c.Includes.Asset)),
	}
	for _, e := range c.Items {
		r.entries[e.Sys.ID] = e
	}
	for _, e := range c.Includes.Entry {
		r.entries[e.Sys.ID] = e
	}
	for _, a := range c.Includes.Asset {
		r.assets[a.Sys.ID] = a
	}
	return r
}

type link struct {
	Sys Sys `json:"sys"`
}

func (r resolver) entry(raw json.RawMessage) (Entry, bool) {
	var l link
	if err := json.Unmarshal(raw, &l); err != nil || l.Sys.ID == "" {
		return Entry{}, false
	}
	if e, ok := r.entries[l.Sys.ID]; ok {
		return e, true
	}
	return Entry{}, false
}

// assetURL resolves an asset link to an absolute file URL.
func (r resolver) assetURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var l link
	if err := json.Unmarshal(raw, &l); err != nil || l.Sys.ID == "" {
		return ""
	}
	asset, ok := r.assets[l.Sys.ID]
	if !ok {
		return ""
	}
	var file struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(asset.Fields["file"], &file); err != nil {
		return ""
	}
	if strings.HasPrefix(file.URL, "//") {
		return "https:" + file.URL
	}
	return file.URL
}

func stringField(e Entry, name string) string {
	var s string
	if raw, ok := e.Fields[name]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

func floatField(e Entry, name string) float64 {
	var f float64
	if raw, ok := e.Fields[name]; ok {
		_ = json.Unmarshal(raw, &f)
	}
	return f
}

func timeValue(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// date-only fields
		if t, err = time.Parse("2006-01-02", raw); err != nil {
			return nil
		}
	}
	return &t
}

// labels turns a categories field into display labels. Elements may be plain
// strings or links to category entries.
func (r resolver) labels(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	labels := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				labels = append(labels, s)
			}
			continue
		}
		if e, ok := r.entry(item); ok {
			if title := stringField(e, "title"); title != "" {
				labels = append(labels, title)
			}
		}
	}
	return labels
}

func decodeTools(c *Collection) []ToolDetail {
	r := newResolver(c)
	tools := make([]ToolDetail, 0, len(c.Items))
	for _, e := range c.Items {
		pricing, ok := directory.ParsePricing(stringField(e, "pricingType"))
		if !ok {
			pricing = directory.PricingFree
		}
		detail := ToolDetail{
			Tool: directory.Tool{
				Title:       stringField(e, "title"),
				Slug:        stringField(e, "slug"),
				Description: stringField(e, "description"),
				Image:       r.assetURL(e.Fields["image"]),
				Rating:      floatField(e, "rating"),
				Pricing:     pricing,
				ExternalURL: stringField(e, "externalUrl"),
				Categories:  r.labels(e.Fields["categories"]),
				CreatedAt:   timeValue(e.Sys.CreatedAt),
			},
		}
		detail.applyContent(e.Fields["content"])
		tools = append(tools, detail)
	}
	return tools
}

// applyContent accepts either a bare rich-text document or an object with
// pros, cons, alternatives and a rich-text details field.
func (d *ToolDetail) applyContent(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	if isRichText(raw) {
		d.Body = RichText(raw)
		return
	}
	var structured struct {
		Pros         []string        `json:"pros"`
		Cons         []string        `json:"cons"`
		Alternatives []string        `json:"alternatives"`
		Details      json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(raw, &structured); err != nil {
		return
	}
	d.Pros = structured.Pros
	d.Cons = structured.Cons
	d.Alternatives = structured.Alternatives
	if isRichText(structured.Details) {
		d.Body = RichText(structured.Details)
	}
}

func decodeApplications(c *Collection) []Application {
	r := newResolver(c)
	apps := make([]Application, 0, len(c.Items))
	for _, e := range c.Items {
		app := Application{
			Title:       stringField(e, "title"),
			Slug:        stringField(e, "slug"),
			Description: stringField(e, "description"),
			Image:       r.assetURL(e.Fields["image"]),
		}
		if raw := e.Fields["content"]; isRichText(raw) {
			app.Body = RichText(raw)
		}
		apps = append(apps, app)
	}
	return apps
}

func decodePosts(c *Collection) []Post {
	r := newResolver(c)
	posts := make([]Post, 0, len(c.Items))
	for _, e := range c.Items {
		post := Post{
			Title:         stringField(e, "title"),
			Slug:          stringField(e, "slug"),
			Excerpt:       stringField(e, "excerpt"),
			CoverImage:    r.assetURL(e.Fields["coverImage"]),
			PublishedDate: timeValue(stringField(e, "publishedDate")),
		}
		if raw := e.Fields["content"]; isRichText(raw) {
			post.Body = RichText(raw)
		}
		if author, ok := r.entry(e.Fields["author"]); ok {
			post.Author = stringField(author, "name")
		}
		if category, ok := r.entry(e.Fields["category"]); ok {
			cat := decodeCategory(category)
			post.Category = &cat
		}
		posts = append(posts, post)
	}
	return posts
}

func decodeCategory(e Entry) Category {
	return Category{
		ID:          e.Sys.ID,
		Title:       stringField(e, "title"),
		Slug:        stringField(e, "slug"),
		Description: stringField(e, "description"),
	}
}

func decodeCategories(c *Collection) []Category {
	categories := make([]Category, 0, len(c.Items))
	for _, e := range c.Items {
		categories = append(categories, decodeCategory(e))
	}
	return categories
}
