package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitolife/internal/cache"
	"aitolife/internal/content"
	"aitolife/internal/directory"
	"aitolife/internal/i18n"
)

func TestAppToolsAndClearCache(t *testing.T) {
	var hits atomic.Int32
	cms := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "en-US", r.URL.Query().Get("locale"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(siteFixtures[r.URL.Query().Get("content_type")]))
	}))
	defer cms.Close()

	cfg := Config{
		CacheBackend: BackendMemory,
		CachePrefix:  cache.DefaultPrefix,
		Contentful: content.Config{
			SpaceID:     "space",
			AccessToken: "token",
			BaseURL:     cms.URL,
		},
		DefaultLanguage: i18n.Chinese,
	}
	ctx := context.Background()

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close()) }()

	filter := directory.DefaultFilter()
	filter.Sort = directory.SortNewest
	tools := a.Tools(ctx, i18n.English, filter)
	require.Len(t, tools, 3)
	assert.Equal(t, []string{"chatgpt", "notion-ai", "midjourney"}, []string{tools[0].Slug, tools[1].Slug, tools[2].Slug})

	a.Tools(ctx, i18n.English, directory.DefaultFilter())
	assert.EqualValues(t, 1, hits.Load())

	assert.Equal(t, 1, a.ClearCache(ctx))
	a.Tools(ctx, i18n.English, directory.DefaultFilter())
	assert.EqualValues(t, 2, hits.Load())
}

func TestServeStopsOnCancel(t *testing.T) {
	a, err := New(context.Background(), Config{CacheBackend: BackendMemory, Port: "0"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()
	cancel()

	assert.NoError(t, <-done)
}
