package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "hellosign:cache:"

// RedisStore keeps one entry in a Redis key with a matching expiry, so
// several machines can share a warm cache.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, key, baseURL, account string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		key:    redisKeyPrefix + sanitizeKey(key) + ":" + scope(baseURL, account),
		ttl:    ttl,
	}
}

// NewRedisStoreFromURL connects using a redis:// or rediss:// URL.
func NewRedisStoreFromURL(url, key, baseURL, account string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", envRedisURL, err)
	}
	return NewRedisStore(redis.NewClient(opts), key, baseURL, account, ttl), nil
}

func (s *RedisStore) Get(ctx context.Context, dst any) bool {
	if disabled() {
		return false
	}
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		return false
	}
	return decodeEntry(data, s.ttl, dst)
}

func (s *RedisStore) Put(ctx context.Context, items any) {
	if disabled() {
		return
	}
	data, err := encodeEntry(items, time.Now())
	if err != nil {
		return
	}
	_ = s.client.Set(ctx, s.key, data, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context) {
	_ = s.client.Del(ctx, s.key).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// ClearRedis deletes every cache key under the CLI's prefix and returns how
// many were removed.
func ClearRedis(ctx context.Context, client *redis.Client) (int, error) {
	var cursor uint64
	removed := 0
	for {
		keys, next, err := client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			n, err := client.Del(ctx, keys...).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return removed, err
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

// ClearRedisURL is ClearRedis for a redis:// URL.
func ClearRedisURL(ctx context.Context, url string) (int, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", envRedisURL, err)
	}
	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()
	return ClearRedis(ctx, client)
}

// RedisURL returns the configured Redis URL, if any.
func RedisURL() string {
	return os.Getenv(envRedisURL)
}
