package fallback

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores each set as a Redis set keyed "namespace:key".
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV connects to the Redis server described by url
// (redis://[:password@]host:port/db).
func NewRedisKV(ctx context.Context, url string) (*RedisKV, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisKV{client: client}, nil
}

func redisKey(namespace, key string) string {
	return namespace + ":" + key
}

func (r *RedisKV) Members(ctx context.Context, namespace, key string) ([]string, error) {
	members, err := r.client.SMembers(ctx, redisKey(namespace, key)).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers: %w", err)
	}
	return members, nil
}

func (r *RedisKV) Replace(ctx context.Context, namespace, key string, members []string) error {
	k := redisKey(namespace, key)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		if len(members) > 0 {
			args := make([]interface{}, len(members))
			for i, m := range members {
				args[i] = m
			}
			pipe.SAdd(ctx, k, args...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace %s: %w", k, err)
	}
	return nil
}

func (r *RedisKV) Append(ctx context.Context, namespace, key, member string) error {
	k := redisKey(namespace, key)
	if err := r.client.SAdd(ctx, k, member).Err(); err != nil {
		return fmt.Errorf("sadd %s: %w", k, err)
	}
	return nil
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}
