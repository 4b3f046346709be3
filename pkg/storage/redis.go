package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis backend configuration.
type RedisConfig struct {
	// Client is a pre-configured Redis client. If nil, a new client
	// is created from Addr, Password and DB, and owned by the store.
	Client redis.Cmdable

	// Addr is the Redis server address (host:port). Only used if
	// Client is nil.
	Addr string

	// Password for Redis authentication. Only used if Client is nil.
	Password string

	// DB is the Redis database number. Only used if Client is nil.
	DB int

	// KeyPrefix is prepended to all cache keys to avoid conflicts.
	// Default: "perscache:".
	KeyPrefix string
}

// Redis persists entries in Redis under prefix+tag+":"+hex(key). It
// satisfies both the blocking and the context-aware contracts; the
// blocking methods run with a background context.
type Redis struct {
	client    redis.Cmdable
	prefix    string
	ownClient *redis.Client
}

// NewRedis creates a Redis store. When config carries no client, one
// is created from the connection parameters and the connection is
// verified with a ping.
func NewRedis(config *RedisConfig) (*Redis, error) {
	if config == nil {
		return nil, errors.New("redis configuration is required")
	}

	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = "perscache:"
	}

	s := &Redis{prefix: prefix}
	if config.Client != nil {
		s.client = config.Client
		return s, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	s.client = client
	s.ownClient = client
	return s, nil
}

func (s *Redis) buildKey(tag string, key []byte) string {
	return s.prefix + tag + ":" + hex.EncodeToString(key)
}

func (s *Redis) GetContext(ctx context.Context, tag string, key []byte) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.buildKey(tag, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &Error{Op: "get", Tag: tag, Err: err}
	}
	return data, true, nil
}

func (s *Redis) SetContext(ctx context.Context, tag string, key, value []byte) error {
	// No expiration: entries live until their tag is deleted.
	if err := s.client.Set(ctx, s.buildKey(tag, key), value, 0).Err(); err != nil {
		return &Error{Op: "set", Tag: tag, Err: err}
	}
	return nil
}

func (s *Redis) DeleteTagContext(ctx context.Context, tag string) error {
	prefix := s.prefix + tag + ":"
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		k := iter.Val()
		// The hex fingerprint after the separator contains no ":",
		// so entries of a longer tag sharing this prefix still carry
		// one and are skipped.
		if strings.Contains(strings.TrimPrefix(k, prefix), ":") {
			continue
		}
		keys = append(keys, k)
	}
	if err := iter.Err(); err != nil {
		return &Error{Op: "delete-tag", Tag: tag, Err: err}
	}

	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return &Error{Op: "delete-tag", Tag: tag, Err: err}
		}
	}
	return nil
}

func (s *Redis) Get(tag string, key []byte) ([]byte, bool, error) {
	return s.GetContext(context.Background(), tag, key)
}

func (s *Redis) Set(tag string, key, value []byte) error {
	return s.SetContext(context.Background(), tag, key, value)
}

func (s *Redis) DeleteTag(tag string) error {
	return s.DeleteTagContext(context.Background(), tag)
}

func (s *Redis) Close() error {
	if s.ownClient != nil {
		return s.ownClient.Close()
	}
	return nil
}
