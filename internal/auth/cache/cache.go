// Package cache exposes the namespaced key-value facility used for ephemeral
// auth state: email-verification OTP entries and username reservations.
//
// Expiry is absence: a caller asking for an entry that was never written or
// whose TTL elapsed gets ErrCacheMiss, there is no separate expiry timestamp
// to check.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Logical namespaces. Keys are stored as "{namespace}:{key}".
const (
	NSEmailVerification    = "EMAIL_VERIFICATION"
	NSUsernameReservation  = "USERNAME_RESERVATION"
)

// ErrCacheMiss reports an absent (or expired) entry.
var ErrCacheMiss = errors.New("cache: miss")

// Cache is the narrow interface the auth services consume.
type Cache interface {
	Get(ctx context.Context, ns, key string) (string, error)
	Set(ctx context.Context, ns, key, value string) error
	SetWithExpiry(ctx context.Context, ns, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, ns, key string) error
	DeleteAllMatching(ctx context.Context, ns, pattern string) error
	Ping(ctx context.Context) error
}

// Redis implements Cache on a go-redis client.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func qualified(ns, key string) string { return ns + ":" + key }

func (c *Redis) Get(ctx context.Context, ns, key string) (string, error) {
	val, err := c.client.Get(ctx, qualified(ns, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("cache: get %s: %w", ns, err)
	}
	return val, nil
}

func (c *Redis) Set(ctx context.Context, ns, key, value string) error {
	if err := c.client.Set(ctx, qualified(ns, key), value, 0).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", ns, err)
	}
	return nil
}

func (c *Redis) SetWithExpiry(ctx context.Context, ns, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, qualified(ns, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", ns, err)
	}
	return nil
}

func (c *Redis) Delete(ctx context.Context, ns, key string) error {
	if err := c.client.Del(ctx, qualified(ns, key)).Err(); err != nil {
		return fmt.Errorf("cache: delete %s: %w", ns, err)
	}
	return nil
}

// DeleteAllMatching removes every key in the namespace matching the glob
// pattern. SCAN is used instead of KEYS so large keyspaces don't block Redis.
func (c *Redis) DeleteAllMatching(ctx context.Context, ns, pattern string) error {
	iter := c.client.Scan(ctx, 0, qualified(ns, pattern), 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache: delete matching %s: %w", ns, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache: scan %s: %w", ns, err)
	}
	return nil
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
