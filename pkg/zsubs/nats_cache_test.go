package zsubs_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBucketDown = errors.New("bucket unavailable")

// memoryBucket is an in-process stand-in for a JetStream key-value bucket.
// Methods the cache never calls are left to the embedded nil interface.
type memoryBucket struct {
	jetstream.KeyValue

	mutex  sync.Mutex
	values map[string][]byte
	fail   bool
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{values: make(map[string][]byte)}
}

type bucketEntry struct {
	jetstream.KeyValueEntry

	key   string
	value []byte
}

func (e *bucketEntry) Key() string   { return e.key }
func (e *bucketEntry) Value() []byte { return e.value }

type bucketLister struct {
	keys chan string
}

func (l *bucketLister) Keys() <-chan string { return l.keys }
func (l *bucketLister) Stop() error         { return nil }

func (b *memoryBucket) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.fail {
		return nil, errBucketDown
	}

	value, ok := b.values[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}

	return &bucketEntry{key: key, value: value}, nil
}

func (b *memoryBucket) Put(_ context.Context, key string, value []byte) (uint64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.fail {
		return 0, errBucketDown
	}

	b.values[key] = value

	return uint64(len(b.values)), nil
}

func (b *memoryBucket) Delete(_ context.Context, key string, _ ...jetstream.KVDeleteOpt) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if _, ok := b.values[key]; !ok {
		return jetstream.ErrKeyNotFound
	}

	delete(b.values, key)

	return nil
}

func (b *memoryBucket) ListKeys(_ context.Context, _ ...jetstream.WatchOpt) (jetstream.KeyLister, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if len(b.values) == 0 {
		return nil, jetstream.ErrNoKeysFound
	}

	keys := make(chan string, len(b.values))
	for key := range b.values {
		keys <- key
	}

	close(keys)

	return &bucketLister{keys: keys}, nil
}

func (b *memoryBucket) size() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return len(b.values)
}

func TestNATSKVCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bucket := newMemoryBucket()
	cache := zsubs.NewNATSKVCacheWithBucket(bucket)

	entry := &zsubs.CacheEntry{
		Data:      []byte(`{"code":0,"customers":[]}`),
		ExpiresAt: time.Now().Add(time.Hour),
		ETag:      "W/1",
	}

	require.NoError(t, cache.Set(ctx, "GET:customers?page=1", entry))

	// keys are hashed into the bucket alphabet
	_, stored := bucket.values[zsubs.NATSKey("GET:customers?page=1")]
	assert.True(t, stored)
	assert.Len(t, zsubs.NATSKey("GET:customers?page=1"), 64)

	got, err := cache.Get(ctx, "GET:customers?page=1")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, got.Data)
	assert.Equal(t, "W/1", got.ETag)
	assert.True(t, cache.Has(ctx, "GET:customers?page=1"))

	_, err = cache.Get(ctx, "GET:plans")
	require.ErrorIs(t, err, zsubs.ErrCacheKeyNotFound)

	require.NoError(t, cache.Delete(ctx, "GET:customers?page=1"))
	require.NoError(t, cache.Delete(ctx, "GET:customers?page=1"))
	assert.False(t, cache.Has(ctx, "GET:customers?page=1"))
}

func TestNATSKVCache_Expired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := zsubs.NewNATSKVCacheWithBucket(newMemoryBucket())

	require.NoError(t, cache.Set(ctx, "GET:plans", &zsubs.CacheEntry{
		Data:      []byte("old"),
		ExpiresAt: time.Now().Add(-time.Second),
	}))

	_, err := cache.Get(ctx, "GET:plans")
	require.ErrorIs(t, err, zsubs.ErrCacheEntryExpired)
}

func TestNATSKVCache_Clear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bucket := newMemoryBucket()
	cache := zsubs.NewNATSKVCacheWithBucket(bucket)

	require.NoError(t, cache.Clear(ctx))

	for _, key := range []string{"GET:plans", "GET:addons", "GET:coupons"} {
		require.NoError(t, cache.Set(ctx, key, &zsubs.CacheEntry{Data: []byte(key)}))
	}

	assert.Equal(t, 3, bucket.size())
	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, bucket.size())
}

func TestNATSKVCache_BucketErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bucket := newMemoryBucket()
	bucket.fail = true
	cache := zsubs.NewNATSKVCacheWithBucket(bucket)

	err := cache.Set(ctx, "GET:plans", &zsubs.CacheEntry{})
	require.ErrorIs(t, err, errBucketDown)

	_, err = cache.Get(ctx, "GET:plans")
	require.ErrorIs(t, err, errBucketDown)
	assert.NotErrorIs(t, err, zsubs.ErrCacheKeyNotFound)

	assert.NoError(t, cache.Close())
}

func TestNewNATSKVCache_Validation(t *testing.T) {
	t.Parallel()

	_, err := zsubs.NewNATSKVCache(nil)
	require.ErrorIs(t, err, zsubs.ErrNATSConfigRequired)

	_, err = zsubs.NewNATSKVCache(&zsubs.NATSKVConfig{Bucket: "pages"})
	require.ErrorIs(t, err, zsubs.ErrNATSURLRequired)
}

func TestNATSKVCache_WithManager(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bucket := newMemoryBucket()
	manager := zsubs.NewCacheManager(zsubs.NewNATSKVCacheWithBucket(bucket), nil)

	require.NoError(t, manager.Set(ctx, "GET:customers?page=1", []byte("one"), 0))
	require.NoError(t, manager.Set(ctx, "GET:customers?page=2", []byte("two"), 0))
	require.NoError(t, manager.Set(ctx, "GET:plans", []byte("plans"), 0))

	removed, err := manager.InvalidatePrefix(ctx, "GET:customers")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, bucket.size())

	data, err := manager.Get(ctx, "GET:plans")
	require.NoError(t, err)
	assert.Equal(t, []byte("plans"), data)
}
