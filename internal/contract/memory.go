package contract

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps contract data in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	address string
	data    map[string][]byte
	down    bool
}

// NewMemoryStore creates an empty in-memory store reporting the given contract address.
func NewMemoryStore(address string) *MemoryStore {
	return &MemoryStore{
		address: address,
		data:    make(map[string][]byte),
	}
}

// SetAvailable toggles the value reported by IsAvailable.
func (s *MemoryStore) SetAvailable(available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = !available
}

func (s *MemoryStore) IsAvailable(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.down, nil
}

func (s *MemoryStore) Address() string {
	return s.address
}

func (s *MemoryStore) GetData(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return []byte{}, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStore) SetData(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return ErrUnavailable
	}
	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
	return nil
}

func (s *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
