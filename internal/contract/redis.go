package contract

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps contract data in Redis under a key namespace.
type RedisStore struct {
	client    *redis.Client
	address   string
	namespace string
	logger    *zap.Logger
}

// NewRedisStore wraps an existing client. Every key is stored as namespace+key.
func NewRedisStore(client *redis.Client, address, namespace string, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client:    client,
		address:   address,
		namespace: namespace,
		logger:    logger,
	}
}

func (s *RedisStore) IsAvailable(ctx context.Context) (bool, error) {
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.logger.Warn("redis contract store ping failed", zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *RedisStore) Address() string {
	return s.address
}

func (s *RedisStore) GetData(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) SetData(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.namespace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.namespace+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
