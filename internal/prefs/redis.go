package prefs

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pable/rlstats/internal/filter"
)

// KeyPrefix namespaces the per-view hashes.
const KeyPrefix = "rlstats:state:"

// Redis keeps each view's query as a hash under KeyPrefix+view.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the server at redisURL and verifies it answers.
func NewRedis(redisURL string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// NewRedisClient wraps an existing client.
func NewRedisClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func stateKey(view string) string { return KeyPrefix + view }

func (r *Redis) Load(ctx context.Context, view string) (filter.Query, error) {
	m, err := r.client.HGetAll(ctx, stateKey(view)).Result()
	if err != nil {
		return nil, fmt.Errorf("load state %s: %w", view, err)
	}
	return filter.Query(m), nil
}

// Save replaces the hash atomically; an empty query just deletes it.
func (r *Redis) Save(ctx context.Context, view string, q filter.Query) error {
	key := stateKey(view)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		if len(q) > 0 {
			fields := make(map[string]any, len(q))
			for k, v := range q {
				fields[k] = v
			}
			p.HSet(ctx, key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save state %s: %w", view, err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
