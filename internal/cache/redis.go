package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"fleet-service/internal/config"
)

// RedisCache keeps recent counter values for cheap, possibly stale reads.
// It is never consulted when allocating a code.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache returns nil, nil when no address is configured.
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	return &RedisCache{client: client, prefix: "fleet:counter"}, nil
}

func (c *RedisCache) key(year int, codeType string) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, year, codeType)
}

// GetCounter reports ok=false on a cache miss.
func (c *RedisCache) GetCounter(ctx context.Context, year int, codeType string) (int64, bool, error) {
	raw, err := c.client.Get(ctx, c.key(year, codeType)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "failed to get counter from Redis")
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, errors.Wrapf(err, "corrupt cached counter %q", raw)
	}
	return value, true, nil
}

func (c *RedisCache) SetCounter(ctx context.Context, year int, codeType string, value int64, ttl time.Duration) error {
	err := c.client.Set(ctx, c.key(year, codeType), strconv.FormatInt(value, 10), ttl).Err()
	return errors.Wrap(err, "failed to cache counter")
}

func (c *RedisCache) DeleteCounter(ctx context.Context, year int, codeType string) error {
	err := c.client.Del(ctx, c.key(year, codeType)).Err()
	return errors.Wrap(err, "failed to drop cached counter")
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
