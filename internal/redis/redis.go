package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is a thin wrapper over Redis holding per-table state: carts, liked
// flags and staff sessions live under namespaced string keys.
type KV struct {
	client *redis.Client
}

func NewKV(url string) (*KV, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &KV{client: redis.NewClient(opts)}, nil
}

func (k *KV) Start(ctx context.Context) error {
	if err := k.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cannot ping redis: %w", err)
	}
	return nil
}

func (k *KV) Stop(ctx context.Context) error {
	return k.client.Close()
}

// Get returns the value for key, or "", false when the key does not exist.
func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := k.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cannot get %s: %w", key, err)
	}
	return val, true, nil
}

func (k *KV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := k.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cannot set %s: %w", key, err)
	}
	return nil
}

func (k *KV) Delete(ctx context.Context, key string) error {
	if err := k.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cannot delete %s: %w", key, err)
	}
	return nil
}
