package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "newsbrief:digest:"

// Cache stores rendered digest bodies in Redis so repeated reads skip the
// database. The cache is optional; a nil *Cache disables it.
type Cache struct {
	client *redis.Client
}

func New(addr string) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// GetDigest returns the cached body for a date and whether it was present.
func (c *Cache) GetDigest(ctx context.Context, date string) (string, bool, error) {
	if c == nil {
		return "", false, nil
	}

	val, err := c.client.Get(ctx, keyPrefix+date).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get digest %s: %w", date, err)
	}
	return val, true, nil
}

func (c *Cache) SetDigest(ctx context.Context, date, body string, ttl time.Duration) error {
	if c == nil {
		return nil
	}

	if err := c.client.Set(ctx, keyPrefix+date, body, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache digest %s: %w", date, err)
	}
	return nil
}

// InvalidateDigest drops the cached body after a digest is regenerated or
// published.
func (c *Cache) InvalidateDigest(ctx context.Context, date string) error {
	if c == nil {
		return nil
	}

	if err := c.client.Del(ctx, keyPrefix+date).Err(); err != nil {
		return fmt.Errorf("failed to invalidate digest %s: %w", date, err)
	}
	return nil
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
