// Package cache wraps a shared Redis client used for caching, sessions,
// rate limiting and queue backing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mkamalov/bazar/config"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent.
var ErrMiss = errors.New("cache: key not found")

var client *redis.Client

// Connect establishes the shared Redis connection. Call once at startup.
func Connect(ctx context.Context) error {
	client = redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})
	return client.Ping(ctx).Err()
}

// Client exposes the raw connection for packages that need Redis
// primitives beyond get/set (queues, rate limiting).
func Client() *redis.Client { return client }

// Close tears down the connection.
func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// Set stores a JSON-encoded value under key with the given TTL.
// A zero ttl means no expiry.
func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, ttl).Err()
}

// Get loads the value stored under key into dest. Returns ErrMiss when absent.
func Get(ctx context.Context, key string, dest interface{}) error {
	data, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Forget removes one or more keys.
func Forget(ctx context.Context, keys ...string) error {
	return client.Del(ctx, keys...).Err()
}

// Remember returns the cached value under key, computing and storing it
// via fn on a miss.
func Remember(ctx context.Context, key string, ttl time.Duration, dest interface{}, fn func() (interface{}, error)) error {
	if err := Get(ctx, key, dest); err == nil {
		return nil
	} else if !errors.Is(err, ErrMiss) {
		return err
	}

	value, err := fn()
	if err != nil {
		return err
	}
	if err := Set(ctx, key, value, ttl); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
