package zsubs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	defaultNATSBucket         = "zsubs-cache"
	defaultNATSConnectTimeout = 5 * time.Second
)

// ErrNATSURLRequired is returned when a NATS cache is configured without a server.
var ErrNATSURLRequired = errors.New("NATS server URL is required")

// NATSKVConfig configures the JetStream key-value cache backend. Several
// processes pointing at the same bucket share fetched list pages.
type NATSKVConfig struct {
	URL            string        `json:"url"             yaml:"url"`
	Bucket         string        `json:"bucket"          yaml:"bucket"`
	Description    string        `json:"description"     yaml:"description"`
	TTL            time.Duration `json:"ttl"             yaml:"ttl"`
	Replicas       int           `json:"replicas"        yaml:"replicas"`
	ConnectTimeout time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
	Token          string        `json:"-"               yaml:"-"`
}

// NATSKVCache stores cache entries in a JetStream key-value bucket. Keys are
// hashed since bucket keys only allow a restricted alphabet.
type NATSKVCache struct {
	kv   jetstream.KeyValue
	conn *nats.Conn
	now  func() time.Time
}

// NewNATSKVCache connects to NATS and opens (or creates) the configured bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	if config.URL == "" {
		return nil, ErrNATSURLRequired
	}

	timeout := config.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultNATSConnectTimeout
	}

	opts := []nats.Option{
		nats.Name("zsubs-cache"),
		nats.Timeout(timeout),
	}

	if config.Token != "" {
		opts = append(opts, nats.Token(config.Token))
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	kv, err := js.CreateOrUpdateKeyValue(ctx, natsBucketConfig(config))
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening key-value bucket: %w", err)
	}

	cache := NewNATSKVCacheWithBucket(kv)
	cache.conn = conn

	return cache, nil
}

// NewNATSKVCacheWithBucket wraps an already opened bucket. The caller keeps
// ownership of the underlying connection.
func NewNATSKVCacheWithBucket(kv jetstream.KeyValue) *NATSKVCache {
	return &NATSKVCache{kv: kv, now: time.Now}
}

func natsBucketConfig(config *NATSKVConfig) jetstream.KeyValueConfig {
	bucket := config.Bucket
	if bucket == "" {
		bucket = defaultNATSBucket
	}

	replicas := config.Replicas
	if replicas <= 0 {
		replicas = 1
	}

	return jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: config.Description,
		TTL:         config.TTL,
		Replicas:    replicas,
		History:     1,
	}
}

// NATSKey returns the bucket key used for a cache key.
func NATSKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}

// Get returns the live entry stored under key.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	stored, err := c.kv.Get(ctx, NATSKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCacheKeyNotFound, key)
		}

		return nil, fmt.Errorf("reading %s from bucket: %w", key, err)
	}

	var entry CacheEntry

	err = json.Unmarshal(stored.Value(), &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}

	if entry.Expired(c.now()) {
		return nil, fmt.Errorf("%w: %s", ErrCacheEntryExpired, key)
	}

	return &entry, nil
}

// Set stores entry under key.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}

	_, err = c.kv.Put(ctx, NATSKey(key), data)
	if err != nil {
		return fmt.Errorf("writing %s to bucket: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, NATSKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s from bucket: %w", key, err)
	}

	return nil
}

// Clear deletes every key of the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	lister, err := c.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil
		}

		return fmt.Errorf("listing bucket keys: %w", err)
	}

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, key)
	}

	_ = lister.Stop()

	var errs []error

	for _, key := range keys {
		err := c.kv.Delete(ctx, key)
		if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Has reports whether a live entry is stored under key.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close drains the connection opened by NewNATSKVCache.
func (c *NATSKVCache) Close() error {
	if c.conn == nil {
		return nil
	}

	err := c.conn.Drain()
	if err != nil {
		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}
