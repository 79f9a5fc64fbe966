// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/aletheiaproj/aletheia/internal/provenance"
)

const redisKeyPrefix = "aletheia:result:"

// Redis stores results as JSON under a namespaced key.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis connects to a single redis server.
func NewRedis(addr, password string, db int) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	return NewRedisWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (*provenance.VerificationResult, bool, error) {
	payload, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var value provenance.VerificationResult
	if err := json.Unmarshal(payload, &value); err != nil {
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	if value.History == nil {
		value.History = []provenance.HistoryEvent{}
	}
	return &value, true, nil
}

func (r *Redis) Put(ctx context.Context, key string, value provenance.VerificationResult, ttl time.Duration) error {
	if err := r.client.Set(ctx, redisKeyPrefix+key, value.JSON(), ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Cache = (*Redis)(nil)
