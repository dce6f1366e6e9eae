package content

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"aitolife/internal/cache"
	"aitolife/internal/directory"
	"aitolife/internal/i18n"
)

// Fetcher runs entry queries; *Client implements it.
type Fetcher interface {
	Entries(ctx context.Context, q Query) (*Collection, error)
}

// FetchMetrics observes backend round trips. A nil FetchMetrics is ignored.
type FetchMetrics interface {
	ObserveFetch(contentType string, duration time.Duration, err error)
}

// Source serves site content, reading through the expiring cache. Listing
// calls return an empty slice when the backend fails; lookups by slug report
// false. Errors are logged, never returned.
type Source struct {
	fetcher Fetcher
	cache   *cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
	metrics FetchMetrics
	group   singleflight.Group
}

// SourceConfig wires a Source.
type SourceConfig struct {
	Fetcher Fetcher
	Cache   *cache.Cache
	TTL     time.Duration
	Logger  *zap.Logger
	Metrics FetchMetrics
}

// NewSource builds a Source. A nil Cache disables caching.
func NewSource(cfg SourceConfig) *Source {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Source{
		fetcher: cfg.Fetcher,
		cache:   cfg.Cache,
		ttl:     ttl,
		logger:  logger.Named("content"),
		metrics: cfg.Metrics,
	}
}

const (
	entryLimit = 1000
	// fetchTimeout bounds a shared fetch, which outlives the request that started it.
	fetchTimeout = 15 * time.Second
)

// Tools returns every tool ordered by rating, highest first.
func (s *Source) Tools(ctx context.Context, lang i18n.Language) []directory.Tool {
	details := s.toolDetails(ctx, lang)
	tools := make([]directory.Tool, len(details))
	for i, d := range details {
		tools[i] = d.Tool
	}
	return tools
}

func (s *Source) toolDetails(ctx context.Context, lang i18n.Language) []ToolDetail {
	q := Query{ContentType: TypeTool, Locale: lang.CMSLocale(), Order: "-fields.rating", Include: 2, Limit: entryLimit}
	tools, err := load(ctx, s, "tools_"+string(lang), q, decodeTools)
	if err != nil {
		return []ToolDetail{}
	}
	return tools
}

// ToolBySlug returns a single tool with its review content.
func (s *Source) ToolBySlug(ctx context.Context, lang i18n.Language, slug string) (ToolDetail, bool) {
	q := Query{ContentType: TypeTool, Locale: lang.CMSLocale(), Include: 2, Fields: map[string]string{"fields.slug": slug}}
	return first(load(ctx, s, fmt.Sprintf("tool_%s_%s", lang, slug), q, decodeTools))
}

// Applications returns every application guide ordered by title.
func (s *Source) Applications(ctx context.Context, lang i18n.Language) []Application {
	q := Query{ContentType: TypeApplication, Locale: lang.CMSLocale(), Order: "fields.title", Include: 2, Limit: entryLimit}
	apps, err := load(ctx, s, "applications_"+string(lang), q, decodeApplications)
	if err != nil {
		return []Application{}
	}
	return apps
}

// ApplicationBySlug returns a single application guide.
func (s *Source) ApplicationBySlug(ctx context.Context, lang i18n.Language, slug string) (Application, bool) {
	q := Query{ContentType: TypeApplication, Locale: lang.CMSLocale(), Include: 2, Fields: map[string]string{"fields.slug": slug}}
	return first(load(ctx, s, fmt.Sprintf("application_%s_%s", lang, slug), q, decodeApplications))
}

// Posts returns every blog post, newest first.
func (s *Source) Posts(ctx context.Context, lang i18n.Language) []Post {
	q := Query{ContentType: TypePost, Locale: lang.CMSLocale(), Order: "-fields.publishedDate", Include: 2, Limit: entryLimit}
	posts, err := load(ctx, s, "posts_"+string(lang), q, decodePosts)
	if err != nil {
		return []Post{}
	}
	return posts
}

// PostBySlug returns a single blog post.
func (s *Source) PostBySlug(ctx context.Context, lang i18n.Language, slug string) (Post, bool) {
	q := Query{ContentType: TypePost, Locale: lang.CMSLocale(), Include: 2, Fields: map[string]string{"fields.slug": slug}}
	return first(load(ctx, s, fmt.Sprintf("post_%s_%s", lang, slug), q, decodePosts))
}

// Categories returns every category ordered by title.
func (s *Source) Categories(ctx context.Context, lang i18n.Language) []Category {
	q := Query{ContentType: TypeCategory, Locale: lang.CMSLocale(), Order: "fields.title", Limit: entryLimit}
	categories, err := load(ctx, s, "categories_"+string(lang), q, decodeCategories)
	if err != nil {
		return []Category{}
	}
	return categories
}

// CategoryBySlug returns a single category.
func (s *Source) CategoryBySlug(ctx context.Context, lang i18n.Language, slug string) (Category, bool) {
	q := Query{ContentType: TypeCategory, Locale: lang.CMSLocale(), Fields: map[string]string{"fields.slug": slug}}
	return first(load(ctx, s, fmt.Sprintf("category_%s_%s", lang, slug), q, decodeCategories))
}

// PostsByCategory returns the posts filed under the category with slug,
// newest first. An unknown category yields no posts.
func (s *Source) PostsByCategory(ctx context.Context, lang i18n.Language, slug string) []Post {
	category, ok := s.CategoryBySlug(ctx, lang, slug)
	if !ok || category.ID == "" {
		return []Post{}
	}
	q := Query{
		ContentType: TypePost,
		Locale:      lang.CMSLocale(),
		Order:       "-fields.publishedDate",
		Include:     2,
		Limit:       entryLimit,
		Fields:      map[string]string{"fields.category.sys.id": category.ID},
	}
	posts, err := load(ctx, s, fmt.Sprintf("posts_%s_category_%s", lang, slug), q, decodePosts)
	if err != nil {
		return []Post{}
	}
	return posts
}

// Invalidate drops every cached response.
func (s *Source) Invalidate(ctx context.Context) int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Clear(ctx)
}

// load reads key from the cache or fetches and decodes q, collapsing
// concurrent misses for the same key. Empty results are not cached.
func load[T any](ctx context.Context, s *Source, key string, q Query, decode func(*Collection) []T) ([]T, error) {
	var cached []T
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Callers joining this key wait on the same fetch, so one of them
		// going away must not cancel it for the rest.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		started := time.Now()
		collection, err := s.fetcher.Entries(ctx, q)
		if s.metrics != nil {
			s.metrics.ObserveFetch(q.ContentType, time.Since(started), err)
		}
		if err != nil {
			return nil, err
		}
		items := decode(collection)
		if s.cache != nil && len(items) > 0 {
			s.cache.Put(ctx, key, items, s.ttl)
		}
		return items, nil
	})
	if err != nil {
		s.logger.Error("fetch content",
			zap.String("content_type", q.ContentType),
			zap.String("locale", q.Locale),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, err
	}

	items, ok := result.([]T)
	if !ok {
		return nil, fmt.Errorf("content result type mismatch for %s", key)
	}
	return items, nil
}

func first[T any](items []T, err error) (T, bool) {
	var zero T
	if err != nil || len(items) == 0 {
		return zero, false
	}
	return items[0], true
}
