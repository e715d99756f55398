package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

const DefaultPrefix = "motiontwin:plan:"

// Redis stores JSON-encoded values under a key prefix.
type Redis[V any] struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*redisOptions)

type redisOptions struct {
	prefix string
	ttl    time.Duration
}

// WithTTL sets the expiration of cached plans. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(o *redisOptions) {
		o.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}

// NewRedis connects a store to the server at address.
func NewRedis[V any](address, password string, db int, opts ...Option) *Redis[V] {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient[V](rdb, opts...)
}

// NewFromClient creates a store from an existing client.
func NewFromClient[V any](client *backend.Client, opts ...Option) *Redis[V] {
	o := redisOptions{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	return &Redis[V]{client: client, prefix: o.prefix, ttl: o.ttl}
}

func (s *Redis[V]) key(k string) string {
	return s.prefix + k
}

// Ping checks the server is reachable.
func (s *Redis[V]) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Redis[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var v V
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return v, false, nil
		}
		return v, false, fmt.Errorf("failed to get from redis: %w", err)
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("failed to unmarshal cached plan: %w", err)
	}
	return v, true, nil
}

func (s *Redis[V]) Put(ctx context.Context, key string, v V) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func (s *Redis[V]) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// Len counts the keys under the prefix with SCAN.
func (s *Redis[V]) Len(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan redis: %w", err)
	}
	return n, nil
}

func (s *Redis[V]) Close() error {
	return s.client.Close()
}
