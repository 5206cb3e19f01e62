package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps one profile as a Redis hash, so several operators
// can share credentials through a common instance.
type RedisRepository struct {
	rdb *redis.Client
	key string
}

// RedisKey is the hash name used for a profile namespace.
func RedisKey(namespace string) string {
	if namespace == "" {
		namespace = "default"
	}
	return "signpanel:profile:" + namespace
}

func NewRedisRepository(rdb *redis.Client, namespace string) *RedisRepository {
	return &RedisRepository{rdb: rdb, key: RedisKey(namespace)}
}

func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.HGet(ctx, r.key, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget %s: %w", key, err)
	}
	return v, nil
}

func (r *RedisRepository) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.HSet(ctx, r.key, key, value).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	if err := r.rdb.HDel(ctx, r.key, key).Err(); err != nil {
		return fmt.Errorf("redis hdel %s: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) Update(ctx context.Context, set map[string][]byte, del []string) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range set {
			pipe.HSet(ctx, r.key, k, v)
		}
		if len(del) > 0 {
			pipe.HDel(ctx, r.key, del...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis update: %w", err)
	}
	return nil
}

func (r *RedisRepository) List(ctx context.Context) (map[string][]byte, error) {
	all, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	result := make(map[string][]byte, len(all))
	for k, v := range all {
		result[k] = []byte(v)
	}
	return result, nil
}

func (r *RedisRepository) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *RedisRepository) Close() error {
	return r.rdb.Close()
}
