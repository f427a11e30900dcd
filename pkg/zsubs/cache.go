package zsubs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultCacheTTL is how long a fetched list page stays reusable.
const DefaultCacheTTL = 7200 * time.Second

// Static errors for err113 compliance.
var (
	ErrCacheKeyNotFound  = errors.New("key not found")
	ErrCacheEntryExpired = errors.New("entry expired")
)

// Cache is a key/value store for raw response bodies.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheEntry is one cached response body.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
}

// Expired reports whether the entry is past its expiry. A zero ExpiresAt
// never expires.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// CacheOptions holds options shared by every backend.
type CacheOptions struct {
	TTL         time.Duration
	MaxSize     int
	EnableETags bool
}

// DefaultCacheOptions returns the default cache options.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		TTL:         DefaultCacheTTL,
		MaxSize:     defaultMemoryCacheSize,
		EnableETags: false,
	}
}

const defaultMemoryCacheSize = 1000

// MemoryCache is a size-bounded in-process cache. When full it evicts the
// entry closest to expiry.
type MemoryCache struct {
	mutex   sync.RWMutex
	maxSize int
	entries map[string]*CacheEntry
	now     func() time.Time

	cleanupInterval time.Duration
	lastCleanup     time.Time
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = defaultMemoryCacheSize
	}

	return &MemoryCache{
		maxSize: maxSize,
		entries: make(map[string]*CacheEntry),
		now:     time.Now,
	}
}

// Get returns the live entry stored under key.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mutex.RLock()
	entry, ok := c.entries[key]
	c.mutex.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
	}

	if entry.Expired(c.now()) {
		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return entry, nil
}

// Set stores entry under key, evicting if the cache is full.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.cleanupInterval > 0 && c.now().Sub(c.lastCleanup) >= c.cleanupInterval {
		c.cleanupLocked()
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}

	c.entries[key] = entry

	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, key)

	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]*CacheEntry)

	return nil
}

// Has reports whether a live entry is stored under key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

// SetCleanupInterval makes Set drop expired entries at most once per interval.
// Zero disables the sweep.
func (c *MemoryCache) SetCleanupInterval(interval time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cleanupInterval = interval
}

// Cleanup drops expired entries.
func (c *MemoryCache) Cleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cleanupLocked()
}

func (c *MemoryCache) cleanupLocked() {
	now := c.now()
	c.lastCleanup = now

	for key, entry := range c.entries {
		if entry.Expired(now) {
			delete(c.entries, key)
		}
	}
}

func (c *MemoryCache) evictLocked() {
	var (
		victim string
		oldest time.Time
		found  bool
	)

	for key, entry := range c.entries {
		if entry.Expired(c.now()) {
			delete(c.entries, key)

			return
		}

		if !found || (!entry.ExpiresAt.IsZero() && (oldest.IsZero() || entry.ExpiresAt.Before(oldest))) {
			victim = key
			oldest = entry.ExpiresAt
			found = true
		}
	}

	if found {
		delete(c.entries, victim)
	}
}

// CacheStats counts cache manager activity.
type CacheStats struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// GetHitRate returns hits over lookups, or 0 without lookups.
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CachingPolicy decides which responses are worth caching.
type CachingPolicy struct {
	CacheGET     bool
	CachePOST    bool
	CacheErrors  bool
	IncludePaths []string
	ExcludePaths []string
}

// DefaultCachingPolicy caches successful GET responses except hosted pages,
// which expire server side.
func DefaultCachingPolicy() *CachingPolicy {
	return &CachingPolicy{
		CacheGET:     true,
		ExcludePaths: []string{"hostedpages"},
	}
}

// ShouldCache reports whether a response may be stored.
func (p *CachingPolicy) ShouldCache(method, path string, statusCode int) bool {
	switch method {
	case http.MethodGet:
		if !p.CacheGET {
			return false
		}
	case http.MethodPost:
		if !p.CachePOST {
			return false
		}
	default:
		return false
	}

	if !p.CacheErrors && (statusCode < 200 || statusCode >= 300) {
		return false
	}

	path = strings.TrimPrefix(path, "/")

	for _, excluded := range p.ExcludePaths {
		if strings.HasPrefix(path, strings.TrimPrefix(excluded, "/")) {
			return false
		}
	}

	if len(p.IncludePaths) == 0 {
		return true
	}

	for _, included := range p.IncludePaths {
		if strings.HasPrefix(path, strings.TrimPrefix(included, "/")) {
			return true
		}
	}

	return false
}

// CacheManager wraps a backend with key derivation, TTLs, statistics and
// prefix invalidation. Keys written through the manager are tracked so they
// can be dropped by prefix without backend support for key listing.
type CacheManager struct {
	cache   Cache
	options *CacheOptions
	metrics *Metrics

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64

	mutex sync.Mutex
	keys  map[string]struct{}
}

// NewCacheManager creates a cache manager. A nil cache disables caching and a
// nil options value uses DefaultCacheOptions.
func NewCacheManager(cache Cache, options *CacheOptions) *CacheManager {
	if cache == nil {
		cache = NewNoOpCache()
	}

	if options == nil {
		options = DefaultCacheOptions()
	}

	if options.TTL <= 0 {
		opts := *options
		opts.TTL = DefaultCacheTTL
		options = &opts
	}

	return &CacheManager{
		cache:   cache,
		options: options,
		keys:    make(map[string]struct{}),
	}
}

// SetMetrics records cache lookups in m.
func (m *CacheManager) SetMetrics(metrics *Metrics) {
	m.metrics = metrics
}

// TTL returns the configured time to live.
func (m *CacheManager) TTL() time.Duration {
	return m.options.TTL
}

// GetCacheKey derives the key of a request. Both parameter names and values
// take part in the key, in sorted order.
func (m *CacheManager) GetCacheKey(method, path string, params url.Values) string {
	key := method + ":" + path
	if len(params) == 0 {
		return key
	}

	return key + "?" + params.Encode()
}

// Get returns the data stored under key.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := m.cache.Get(ctx, key)
	if err != nil {
		m.misses.Add(1)
		m.metrics.ObserveCacheLookup(false)

		return nil, err
	}

	m.hits.Add(1)
	m.metrics.ObserveCacheLookup(true)

	return entry.Data, nil
}

// GetEntry returns the entry stored under key without touching statistics.
func (m *CacheManager) GetEntry(ctx context.Context, key string) (*CacheEntry, error) {
	entry, err := m.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	return entry, nil
}

// Set stores data under key. A zero ttl uses the configured TTL.
func (m *CacheManager) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return m.SetWithETag(ctx, key, data, "", ttl)
}

// SetWithETag stores data and its entity tag under key.
func (m *CacheManager) SetWithETag(ctx context.Context, key string, data []byte, etag string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.options.TTL
	}

	entry := &CacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	}

	if m.options.EnableETags || etag != "" {
		entry.ETag = etag
	}

	err := m.cache.Set(ctx, key, entry)
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}

	m.sets.Add(1)

	m.mutex.Lock()
	m.keys[key] = struct{}{}
	m.mutex.Unlock()

	return nil
}

// Delete removes key.
func (m *CacheManager) Delete(ctx context.Context, key string) error {
	m.mutex.Lock()
	delete(m.keys, key)
	m.mutex.Unlock()

	err := m.cache.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}

	return nil
}

// InvalidatePrefix removes every tracked key starting with prefix and returns
// how many were removed.
func (m *CacheManager) InvalidatePrefix(ctx context.Context, prefix string) (int, error) {
	m.mutex.Lock()

	var matched []string

	for key := range m.keys {
		if strings.HasPrefix(key, prefix) {
			matched = append(matched, key)
			delete(m.keys, key)
		}
	}

	m.mutex.Unlock()

	var errs []error

	for _, key := range matched {
		err := m.cache.Delete(ctx, key)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return len(matched), errors.Join(errs...)
}

// Clear empties the backend.
func (m *CacheManager) Clear(ctx context.Context) error {
	m.mutex.Lock()
	m.keys = make(map[string]struct{})
	m.mutex.Unlock()

	return m.cache.Clear(ctx)
}

// GetStats returns a snapshot of the statistics.
func (m *CacheManager) GetStats() *CacheStats {
	return &CacheStats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
		Sets:   m.sets.Load(),
	}
}

// Backend returns the wrapped cache.
func (m *CacheManager) Backend() Cache {
	return m.cache
}
