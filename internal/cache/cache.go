// Package cache implements a best-effort key-value cache with per-entry
// time-to-live, layered over a Store that has no expiry of its own.
//
// Entries live under a fixed key prefix so that unrelated data sharing the
// store is never read or removed. Expired entries are deleted lazily on the
// first read past their expiry; there is no background sweep. Failures are
// logged and degrade to cache misses, they are never returned to callers.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPrefix namespaces every key written by a Cache.
	DefaultPrefix = "aitolife_"
	// DefaultTTL applies when Put is called with a non-positive ttl.
	DefaultTTL = time.Hour
)

// Metrics receives cache outcomes. A nil Metrics is ignored.
type Metrics interface {
	ObserveCacheHit()
	ObserveCacheMiss()
	ObserveCacheEviction()
	ObserveCacheWriteFailure()
}

// Cache stores JSON-encoded values with an absolute expiry instant.
type Cache struct {
	store   Store
	prefix  string
	now     func() time.Time
	logger  *zap.Logger
	metrics Metrics
}

// Option configures a Cache.
type Option func(*Cache)

// WithPrefix overrides DefaultPrefix. An empty prefix keeps the default.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used to report swallowed failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger.Named("cache")
		}
	}
}

// WithMetrics reports hits, misses, evictions and failed writes.
func WithMetrics(metrics Metrics) Option {
	return func(c *Cache) {
		c.metrics = metrics
	}
}

// New returns a Cache over store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		prefix: DefaultPrefix,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// entry is the stored representation. Expiry is in Unix milliseconds.
type entry struct {
	Value  json.RawMessage `json:"value"`
	Expiry int64           `json:"expiry"`
}

// Put stores value under key until ttl has elapsed, replacing any previous
// entry. Errors are logged and dropped.
func (c *Cache) Put(ctx context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.writeFailed(key, "encode value", err)
		return
	}
	encoded, err := json.Marshal(entry{
		Value:  raw,
		Expiry: c.now().Add(ttl).UnixMilli(),
	})
	if err != nil {
		c.writeFailed(key, "encode entry", err)
		return
	}

	if err := c.store.Set(ctx, c.prefix+key, string(encoded)); err != nil {
		c.writeFailed(key, "write entry", err)
	}
}

// Get decodes the live entry for key into dst and reports whether it did.
// Expired entries are removed. Unreadable entries are reported as misses and
// left in place.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	stored, ok, err := c.store.Get(ctx, c.prefix+key)
	if err != nil {
		c.logger.Warn("read cache entry", zap.String("key", key), zap.Error(err))
		c.miss()
		return false
	}
	if !ok {
		c.miss()
		return false
	}

	var e entry
	if err := json.Unmarshal([]byte(stored), &e); err != nil {
		c.logger.Warn("decode cache entry", zap.String("key", key), zap.Error(err))
		c.miss()
		return false
	}

	if c.now().UnixMilli() > e.Expiry {
		if err := c.store.Delete(ctx, c.prefix+key); err != nil {
			c.logger.Warn("evict expired cache entry", zap.String("key", key), zap.Error(err))
		}
		if c.metrics != nil {
			c.metrics.ObserveCacheEviction()
		}
		c.miss()
		return false
	}

	if err := json.Unmarshal(e.Value, dst); err != nil {
		c.logger.Warn("decode cached value", zap.String("key", key), zap.Error(err))
		c.miss()
		return false
	}

	if c.metrics != nil {
		c.metrics.ObserveCacheHit()
	}
	return true
}

// Remove deletes the entry for key if there is one.
func (c *Cache) Remove(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, c.prefix+key); err != nil {
		c.logger.Warn("remove cache entry", zap.String("key", key), zap.Error(err))
	}
}

// Clear deletes every entry in the cache namespace and returns how many keys
// were removed. Keys outside the namespace are left untouched.
func (c *Cache) Clear(ctx context.Context) int {
	keys, err := c.store.Keys(ctx, c.prefix)
	if err != nil {
		c.logger.Warn("list cache entries", zap.Error(err))
		return 0
	}

	removed := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, c.prefix) {
			continue
		}
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn("clear cache entry", zap.String("key", key), zap.Error(err))
			continue
		}
		removed++
	}
	return removed
}

// Prefix returns the namespace prefix.
func (c *Cache) Prefix() string {
	return c.prefix
}

func (c *Cache) miss() {
	if c.metrics != nil {
		c.metrics.ObserveCacheMiss()
	}
}

func (c *Cache) writeFailed(key, op string, err error) {
	c.logger.Warn("cache write skipped", zap.String("key", key), zap.String("op", op), zap.Error(err))
	if c.metrics != nil {
		c.metrics.ObserveCacheWriteFailure()
	}
}
