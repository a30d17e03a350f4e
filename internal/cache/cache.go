// Package cache provides the key/value store used for best-effort
// persistence of snapshots and geocoding results.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrCacheMiss signals that a cache key was not found or has expired.
var ErrCacheMiss = errors.New("cache miss")

// Provider defines the minimal cache operations needed by the service.
type Provider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type item struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Provider with lazy expiry: entries are checked
// against their deadline on read, no background sweeper.
type Memory struct {
	clock clockwork.Clock

	mu   sync.RWMutex
	data map[string]item
}

func NewMemory(clock clockwork.Clock) *Memory {
	return &Memory{
		clock: clock,
		data:  make(map[string]item),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	it, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !it.expiresAt.IsZero() && m.clock.Now().After(it.expiresAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return it.value, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = m.clock.Now().Add(ttl)
	}

	m.mu.Lock()
	m.data[key] = item{value: value, expiresAt: expires}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Del(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}
