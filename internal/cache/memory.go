package cache

import (
	"context"
	"sync"
)

// Memory keeps values in a mutex-guarded map. Values are returned as
// stored, so pointer values are shared between callers.
type Memory[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{items: make(map[string]V)}
}

func (m *Memory[V]) Get(ctx context.Context, key string) (V, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory[V]) Put(ctx context.Context, key string, v V) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = v
	return nil
}

func (m *Memory[V]) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory[V]) Len(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items), nil
}

func (m *Memory[V]) Close() error { return nil }
