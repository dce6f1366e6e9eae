package content

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitolife/internal/cache"
	"aitolife/internal/i18n"
)

type fakeFetcher struct {
	mu      sync.Mutex
	queries []Query
	calls   atomic.Int32
	err     error
	respond func(Query) string
}

func (f *fakeFetcher) Entries(_ context.Context, q Query) (*Collection, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var c Collection
	if err := json.Unmarshal([]byte(f.respond(q)), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (f *fakeFetcher) lastQuery() Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

type fetchRecorder struct {
	mu    sync.Mutex
	types []string
	errs  int
}

func (r *fetchRecorder) ObserveFetch(contentType string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, contentType)
	if err != nil {
		r.errs++
	}
}

func newTestSource(fetcher Fetcher, metrics FetchMetrics) (*Source, *cache.MemoryStore) {
	store := cache.NewMemoryStore()
	return NewSource(SourceConfig{
		Fetcher: fetcher,
		Cache:   cache.New(store),
		Metrics: metrics,
	}), store
}

func TestSourceToolsCachesPerLocale(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(Query) string { return toolsResponse }}
	source, store := newTestSource(fetcher, nil)
	ctx := context.Background()

	tools := source.Tools(ctx, i18n.English)
	require.Len(t, tools, 2)
	assert.Equal(t, "chatgpt", tools[0].Slug)

	q := fetcher.lastQuery()
	assert.Equal(t, TypeTool, q.ContentType)
	assert.Equal(t, "en-US", q.Locale)
	assert.Equal(t, "-fields.rating", q.Order)

	again := source.Tools(ctx, i18n.English)
	assert.Equal(t, tools, again)
	assert.EqualValues(t, 1, fetcher.calls.Load())

	source.Tools(ctx, i18n.Chinese)
	assert.EqualValues(t, 2, fetcher.calls.Load())
	assert.Equal(t, "zh-CN", fetcher.lastQuery().Locale)

	keys, err := store.Keys(ctx, cache.DefaultPrefix)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"aitolife_tools_en", "aitolife_tools_zh"}, keys)
}

func TestSourceFailureYieldsEmptyAndIsNotCached(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("boom")}
	metrics := &fetchRecorder{}
	source, store := newTestSource(fetcher, metrics)
	ctx := context.Background()

	tools := source.Tools(ctx, i18n.English)
	assert.NotNil(t, tools)
	assert.Empty(t, tools)
	assert.Empty(t, source.Posts(ctx, i18n.English))
	_, ok := source.ToolBySlug(ctx, i18n.English, "chatgpt")
	assert.False(t, ok)

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 3, metrics.errs)
	assert.Equal(t, []string{TypeTool, TypePost, TypeTool}, metrics.types)

	source.Tools(ctx, i18n.English)
	assert.EqualValues(t, 4, fetcher.calls.Load())
}

// gatedFetcher blocks every fetch until release is closed or the fetch
// context ends.
type gatedFetcher struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *gatedFetcher) Entries(ctx context.Context, _ Query) (*Collection, error) {
	f.calls.Add(1)
	f.once.Do(func() { close(f.started) })
	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var c Collection
	if err := json.Unmarshal([]byte(toolsResponse), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func TestSourceSharedFetchSurvivesCancelledCaller(t *testing.T) {
	fetcher := &gatedFetcher{started: make(chan struct{}), release: make(chan struct{})}
	source, _ := newTestSource(fetcher, nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	firstDone := make(chan int, 1)
	go func() { firstDone <- len(source.Tools(firstCtx, i18n.English)) }()
	<-fetcher.started

	secondDone := make(chan int, 1)
	go func() { secondDone <- len(source.Tools(context.Background(), i18n.English)) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	close(fetcher.release)

	select {
	case n := <-secondDone:
		assert.Equal(t, 2, n)
	case <-time.After(2 * time.Second):
		t.Fatal("caller with a live context never returned")
	}
	<-firstDone
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestSourceEmptyResultIsNotCached(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(Query) string { return `{"items":[]}` }}
	source, store := newTestSource(fetcher, nil)

	_, ok := source.PostBySlug(context.Background(), i18n.Chinese, "missing")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestSourceToolBySlug(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(Query) string { return toolsResponse }}
	source, _ := newTestSource(fetcher, nil)

	detail, ok := source.ToolBySlug(context.Background(), i18n.Chinese, "chatgpt")
	require.True(t, ok)
	assert.Equal(t, "ChatGPT", detail.Title)
	assert.Equal(t, []string{"Fast"}, detail.Pros)
	assert.Equal(t, "chatgpt", fetcher.lastQuery().Fields["fields.slug"])

	cached, ok := source.ToolBySlug(context.Background(), i18n.Chinese, "chatgpt")
	require.True(t, ok)
	assert.Equal(t, detail.Body.HTML(), cached.Body.HTML())
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestSourcePostsByCategory(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(q Query) string {
		if q.ContentType == TypeCategory {
			return `{"items":[{"sys":{"id":"c9","type":"Entry"},"fields":{"title":"Guides","slug":"guides"}}]}`
		}
		return `{"items":[{"sys":{"id":"p1","type":"Entry"},"fields":{"title":"Prompting","slug":"prompting"}}]}`
	}}
	source, _ := newTestSource(fetcher, nil)

	posts := source.PostsByCategory(context.Background(), i18n.English, "guides")
	require.Len(t, posts, 1)
	assert.Equal(t, "prompting", posts[0].Slug)

	q := fetcher.lastQuery()
	assert.Equal(t, TypePost, q.ContentType)
	assert.Equal(t, "c9", q.Fields["fields.category.sys.id"])
}

func TestSourcePostsByUnknownCategory(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(Query) string { return `{"items":[]}` }}
	source, _ := newTestSource(fetcher, nil)

	posts := source.PostsByCategory(context.Background(), i18n.English, "nope")
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestSourceInvalidate(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(Query) string { return toolsResponse }}
	source, store := newTestSource(fetcher, nil)
	ctx := context.Background()

	source.Tools(ctx, i18n.English)
	require.NoError(t, store.Set(ctx, "other_key", "x"))

	assert.Equal(t, 1, source.Invalidate(ctx))
	assert.Equal(t, 1, store.Len())

	source.Tools(ctx, i18n.English)
	assert.EqualValues(t, 2, fetcher.calls.Load())
}

func TestSourceWithoutCache(t *testing.T) {
	fetcher := &fakeFetcher{respond: func(Query) string { return toolsResponse }}
	source := NewSource(SourceConfig{Fetcher: fetcher})

	source.Tools(context.Background(), i18n.English)
	source.Tools(context.Background(), i18n.English)
	assert.EqualValues(t, 2, fetcher.calls.Load())
	assert.Equal(t, 0, source.Invalidate(context.Background()))
}
