package internal

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores bridge keys as <namespace>:<key> in Redis
type RedisKV struct {
	client    *redis.Client
	addr      string
	namespace string
}

// NewRedisKV creates a store for the server at addr. No connection is made
// until the first operation.
func NewRedisKV(addr string, db int, namespace string) *RedisKV {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return &RedisKV{client: client, addr: addr, namespace: namespace}
}

func (s *RedisKV) key(k string) string {
	return s.namespace + ":" + k
}

func (s *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StorageError{Path: s.addr + "/" + s.key(key), Op: "read", Err: err}
	}
	return val, true, nil
}

func (s *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return &StorageError{Path: s.addr + "/" + s.key(key), Op: "write", Err: err}
	}
	return nil
}

func (s *RedisKV) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return &StorageError{Path: s.addr + "/" + s.key(key), Op: "delete", Err: err}
	}
	return nil
}

// Ping checks that the server is reachable
func (s *RedisKV) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return &StorageError{Path: s.addr, Op: "open", Err: err}
	}
	return nil
}

func (s *RedisKV) Close() error {
	return s.client.Close()
}
