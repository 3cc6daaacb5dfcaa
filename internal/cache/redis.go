// Package cache keeps recent ESPN responses in Redis so repeated exports
// within a short window do not hit the upstream API again.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// envelope is the msgpack value stored under each key.
type envelope struct {
	Body     []byte `msgpack:"b"`
	StoredAt int64  `msgpack:"t"`
}

// RedisCache stores raw response bodies with a TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to redisURL and pings it.
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisCacheFromClient(client), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "gridiron:"}
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client so the stream publisher can
// share the connection.
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify the connection.
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Load returns the body stored under key. A miss is (nil, false, nil).
func (rc *RedisCache) Load(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := rc.client.Get(ctx, rc.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	body, err := decode(raw)
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// Store saves body under key for ttl.
func (rc *RedisCache) Store(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	raw, err := encode(body, time.Now())
	if err != nil {
		return err
	}
	return rc.client.Set(ctx, rc.prefix+key, raw, ttl).Err()
}

// Delete removes keys.
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = rc.prefix + k
	}
	return rc.client.Del(ctx, prefixed...).Err()
}

func encode(body []byte, now time.Time) ([]byte, error) {
	raw, err := msgpack.Marshal(envelope{Body: body, StoredAt: now.Unix()})
	if err != nil {
		return nil, fmt.Errorf("encode cache entry: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) ([]byte, error) {
	var env envelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return env.Body, nil
}
