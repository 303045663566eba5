package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zetarewards/recognition-api/internal/cache"
)

var _ cache.Cache = (*MockCache)(nil)

// MockCache is an in-memory cache.Cache for testing.
// Setting Err makes every call fail with that error.
type MockCache struct {
	mu   sync.RWMutex
	data map[string]string

	Err  error
	Gets int
	Sets int
}

// NewMockCache creates a new mock cache
func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string]string)}
}

// Get retrieves a value from the mock cache. Missing keys return "".
func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Gets++
	if m.Err != nil {
		return "", m.Err
	}
	return m.data[key], nil
}

// Set stores a value in the mock cache. Expiration is ignored.
func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sets++
	if m.Err != nil {
		return m.Err
	}
	m.data[key] = fmt.Sprint(value)
	return nil
}

// Del deletes keys from the mock cache
func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// Health reports Err.
func (m *MockCache) Health(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Err
}

// Close does nothing.
func (m *MockCache) Close() error {
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MockCache) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
