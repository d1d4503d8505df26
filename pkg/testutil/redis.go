package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryStore is an in-memory stand-in for Redis satisfying cache.Store
type MemoryStore struct {
	mu      sync.Mutex
	Data    map[string]string
	TTLs    map[string]time.Duration
	PingErr error
	GetErr  error
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Data: make(map[string]string),
		TTLs: make(map[string]time.Duration),
	}
}

// Ping implements cache.Store
func (m *MemoryStore) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.PingErr)
}

// Set implements cache.Store
func (m *MemoryStore) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.Data[key] = string(v)
	default:
		m.Data[key] = fmt.Sprint(v)
	}
	m.TTLs[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

// Get implements cache.Store
func (m *MemoryStore) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return redis.NewStringResult("", m.GetErr)
	}
	v, ok := m.Data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

// Del implements cache.Store
func (m *MemoryStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := m.Data[key]; ok {
			n++
		}
		delete(m.Data, key)
	}
	return redis.NewIntResult(n, nil)
}

// Has reports whether key is stored
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Data[key]
	return ok
}
