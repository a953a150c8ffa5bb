package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

const maxJitter = time.Minute

// NewRedisCache stores the menu under a key derived from namespace, which
// is normally the backend URL, so storefronts for different backends can
// share one Redis.
func NewRedisCache(client *redis.Client, namespace string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client:    client,
		namespace: namespace,
		baseTTL:   ttl,
	}
}

type RedisCache struct {
	client    *redis.Client
	namespace string
	baseTTL   time.Duration
}

func (r RedisCache) Get(ctx context.Context) ([]domain.MenuItem, error) {
	data, err := r.client.Get(ctx, cacheKey(r.namespace)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var items []domain.MenuItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal menu failed: %w", err)
	}
	return items, nil
}

func (r RedisCache) Set(ctx context.Context, items []domain.MenuItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal menu failed: %w", err)
	}

	// jitter spreads expiry of storefronts started together
	jitter := time.Duration(rand.Int63n(int64(maxJitter)))
	if err := r.client.Set(ctx, cacheKey(r.namespace), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, cacheKey(r.namespace)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(namespace string) string {
	return fmt.Sprintf("menu:%s", namespace)
}
