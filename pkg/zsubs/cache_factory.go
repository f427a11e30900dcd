package zsubs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents in-memory cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS represents NATS KV cache.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone represents no caching.
	CacheTypeNone CacheType = "none"

	// CacheTypeChain keeps a per-process memory tier in front of a shared
	// NATS KV tier.
	CacheTypeChain CacheType = "chain"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired    = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType  = errors.New("unsupported cache type")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
)

// CacheConfig configures the page cache backend.
type CacheConfig struct {
	// Type is the cache backend type
	Type CacheType `json:"type" yaml:"type"`

	// Memory cache configuration
	Memory *MemoryCacheConfig `json:"memory,omitempty" yaml:"memory,omitempty"`

	// NATS KV cache configuration
	NATS *NATSKVConfig `json:"nats,omitempty" yaml:"nats,omitempty"`

	// Options applied by the cache manager. If nil, DefaultCacheOptions() is used.
	Options *CacheOptions `json:"-" yaml:"-"`
}

// MemoryCacheConfig configures memory cache.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of items in the cache
	MaxSize int `json:"max_size" yaml:"max_size"`

	// CleanupInterval is how often writes sweep expired entries, e.g. "1m".
	CleanupInterval string `json:"cleanup_interval" yaml:"cleanup_interval"`
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type: CacheTypeMemory,
		Memory: &MemoryCacheConfig{
			MaxSize:         defaultMemoryCacheSize,
			CleanupInterval: "1m",
		},
		Options: DefaultCacheOptions(),
	}
}

// NewCacheFromConfig creates a cache backend from configuration.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory, "":
		cache, err := NewMemoryCacheFromConfig(config.Memory)
		if err != nil {
			return nil, err
		}

		return cache, nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		cache, err := NewNATSKVCache(config.NATS)
		if err != nil {
			return nil, err
		}

		return cache, nil

	case CacheTypeChain:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		local, err := NewMemoryCacheFromConfig(config.Memory)
		if err != nil {
			return nil, err
		}

		shared, err := NewNATSKVCache(config.NATS)
		if err != nil {
			return nil, err
		}

		return NewCacheChain(local, shared), nil

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// NewMemoryCacheFromConfig creates a memory cache from configuration.
func NewMemoryCacheFromConfig(config *MemoryCacheConfig) (*MemoryCache, error) {
	if config == nil {
		config = DefaultCacheConfig().Memory
	}

	cache := NewMemoryCache(config.MaxSize)

	if config.CleanupInterval != "" {
		interval, err := time.ParseDuration(config.CleanupInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid cleanup interval %q: %w", config.CleanupInterval, err)
		}

		cache.SetCleanupInterval(interval)
	}

	return cache, nil
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns an error (nothing cached).
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}

// CacheBuilder assembles a CacheConfig from flat settings such as the CLI's
// cache.* keys. Sections the chosen type does not use are dropped.
type CacheBuilder struct {
	config CacheConfig
}

// NewCacheBuilder starts a configuration for the given backend type. An
// empty type means memory.
func NewCacheBuilder(cacheType CacheType) *CacheBuilder {
	if cacheType == "" {
		cacheType = CacheTypeMemory
	}

	return &CacheBuilder{config: CacheConfig{Type: cacheType}}
}

// WithMemory sets the in-process tier limits.
func (b *CacheBuilder) WithMemory(maxSize int, cleanupInterval string) *CacheBuilder {
	b.config.Memory = &MemoryCacheConfig{MaxSize: maxSize, CleanupInterval: cleanupInterval}

	return b
}

// WithNATS points the shared tier at a JetStream bucket. An empty bucket
// uses the default zsubs-cache bucket.
func (b *CacheBuilder) WithNATS(url, bucket string, ttl time.Duration) *CacheBuilder {
	b.config.NATS = &NATSKVConfig{URL: url, Bucket: bucket, TTL: ttl}

	return b
}

// Config validates the type and returns the assembled configuration.
func (b *CacheBuilder) Config() (*CacheConfig, error) {
	config := b.config

	switch config.Type {
	case CacheTypeNone:
		config.Memory, config.NATS = nil, nil
	case CacheTypeMemory:
		config.NATS = nil
	case CacheTypeNATS:
		config.Memory = nil

		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}
	case CacheTypeChain:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}

	return &config, nil
}

// Build opens the configured backend.
func (b *CacheBuilder) Build() (Cache, error) {
	config, err := b.Config()
	if err != nil {
		return nil, err
	}

	return NewCacheFromConfig(config)
}

// CacheChain layers backends from fastest to slowest. Reads stop at the
// first tier holding a live entry and copy it into the tiers in front of it;
// writes go to every tier.
type CacheChain struct {
	tiers []Cache
}

// NewCacheChain creates a chain over tiers, fastest first.
func NewCacheChain(tiers ...Cache) *CacheChain {
	return &CacheChain{tiers: tiers}
}

// Get returns the first live entry. A failing tier counts as a miss.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	misses := make([]error, 0, len(c.tiers))

	for depth, tier := range c.tiers {
		entry, err := tier.Get(ctx, key)
		if err != nil {
			misses = append(misses, err)

			continue
		}

		for _, front := range c.tiers[:depth] {
			_ = front.Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, fmt.Errorf("%w: %s: %w", ErrKeyNotFoundInAnyCache, key, errors.Join(misses...))
}

// Set writes entry to every tier.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return c.each(func(tier Cache) error { return tier.Set(ctx, key, entry) })
}

// Delete removes key from every tier.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	return c.each(func(tier Cache) error { return tier.Delete(ctx, key) })
}

// Clear empties every tier.
func (c *CacheChain) Clear(ctx context.Context) error {
	return c.each(func(tier Cache) error { return tier.Clear(ctx) })
}

// Has reports whether any tier holds a live entry for key.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, tier := range c.tiers {
		if tier.Has(ctx, key) {
			return true
		}
	}

	return false
}

// Close releases the tiers that hold connections.
func (c *CacheChain) Close() error {
	return c.each(func(tier Cache) error {
		closer, ok := tier.(io.Closer)
		if !ok {
			return nil
		}

		return closer.Close()
	})
}

// each applies fn to all tiers and joins the failures.
func (c *CacheChain) each(fn func(tier Cache) error) error {
	var errs []error

	for _, tier := range c.tiers {
		err := fn(tier)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
