package service

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/redis/go-redis/v9"
)

// KeyRegistry remembers the session public keys handed out by SignatureParams
// so CreateSession only accepts parameters this service issued.
type KeyRegistry interface {
	Remember(ctx context.Context, publicKey string, ttl time.Duration) error
	Known(ctx context.Context, publicKey string) (bool, error)
}

// keyDigest shortens a 2000 digit key to a fixed size lookup key.
func keyDigest(publicKey string) string {
	return crypto.Keccak256Hash([]byte(publicKey)).Hex()
}

// MemoryKeyRegistry keeps issued keys in process memory.
type MemoryKeyRegistry struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryKeyRegistry creates an empty in-process registry.
func NewMemoryKeyRegistry() *MemoryKeyRegistry {
	return &MemoryKeyRegistry{expires: make(map[string]time.Time), now: time.Now}
}

func (r *MemoryKeyRegistry) Remember(ctx context.Context, publicKey string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, exp := range r.expires {
		if !now.Before(exp) {
			delete(r.expires, k)
		}
	}
	r.expires[keyDigest(publicKey)] = now.Add(ttl)
	return nil
}

func (r *MemoryKeyRegistry) Known(ctx context.Context, publicKey string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.expires[keyDigest(publicKey)]
	return ok && r.now().Before(exp), nil
}

// RedisKeyRegistry shares issued keys between instances through Redis.
type RedisKeyRegistry struct {
	client    *redis.Client
	namespace string
}

// NewRedisKeyRegistry stores keys under "<namespace>:session_key:<digest>".
func NewRedisKeyRegistry(client *redis.Client, namespace string) *RedisKeyRegistry {
	return &RedisKeyRegistry{client: client, namespace: namespace}
}

func (r *RedisKeyRegistry) key(publicKey string) string {
	return r.namespace + ":session_key:" + keyDigest(publicKey)
}

func (r *RedisKeyRegistry) Remember(ctx context.Context, publicKey string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(publicKey), 1, ttl).Err()
}

func (r *RedisKeyRegistry) Known(ctx context.Context, publicKey string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(publicKey)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
