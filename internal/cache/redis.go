package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/jobboard-cli/internal/model"
)

// DefaultKeyPrefix namespaces page entries in a shared Redis.
const DefaultKeyPrefix = "jobboard:page:"

// RedisCache is a PageCache backed by Redis string keys with expiry.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

// DialRedis connects to the Redis at url (redis://host:port/db) and verifies
// the connection.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, eris.New("cache: redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, eris.Wrap(err, "cache: parse redis url")
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "cache: redis ping")
	}
	return client, nil
}

// Get implements PageCache.
func (c *RedisCache) Get(ctx context.Context, key string) (*model.Page, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "cache: redis get")
	}
	return decodePage(data)
}

// Set implements PageCache. A non-positive ttl is a no-op.
func (c *RedisCache) Set(ctx context.Context, key string, page *model.Page, ttl time.Duration) error {
	if ttl <= 0 || page == nil {
		return nil
	}
	data, err := encodePage(page)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return eris.Wrap(err, "cache: redis set")
	}
	return nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
