package mocks

import (
	"context"
	"sync"

	"github.com/Sasmit28/CivicApp/domain"
)

// MockKeyValueStore implements domain.KeyValueStore over a map. The Func
// fields, when set, replace the map behavior.
type MockKeyValueStore struct {
	GetFunc    func(ctx context.Context, key string) (string, bool, error)
	SetFunc    func(ctx context.Context, key, value string) error
	RemoveFunc func(ctx context.Context, key string) error

	mu   sync.Mutex
	data map[string]string
}

// NewMockKeyValueStore creates an empty store
func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{data: make(map[string]string)}
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MockKeyValueStore) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockKeyValueStore) Remove(ctx context.Context, key string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Raw returns the stored value without going through the Func fields (test helper)
func (m *MockKeyValueStore) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// Put seeds a value (test helper)
func (m *MockKeyValueStore) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Compile-time interface compliance verification
var _ domain.KeyValueStore = (*MockKeyValueStore)(nil)
