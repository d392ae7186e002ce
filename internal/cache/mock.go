package cache

import (
	"context"
	"time"
)

// MockCache is an in-memory Cache for tests. Func fields override the
// default map-backed behaviour; every call is recorded.
type MockCache struct {
	PingFunc   func(ctx context.Context) error
	SetFunc    func(ctx context.Context, key, value string, expiration time.Duration) error
	GetFunc    func(ctx context.Context, key string) (string, bool, error)
	DelFunc    func(ctx context.Context, keys ...string) error
	ExistsFunc func(ctx context.Context, keys ...string) (bool, error)
	CloseFunc  func() error

	Data map[string]string

	// Track calls for testing
	SetCalls   []SetCall
	GetCalls   []string
	DelCalls   [][]string
	CloseCalls int
}

type SetCall struct {
	Key        string
	Value      string
	Expiration time.Duration
}

var _ Cache = (*MockCache)(nil)

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string]string)}
}

func (m *MockCache) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *MockCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Value: value, Expiration: expiration})
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	m.Data[key] = value
	return nil
}

func (m *MockCache) Get(ctx context.Context, key string) (string, bool, error) {
	m.GetCalls = append(m.GetCalls, key)
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	v, ok := m.Data[key]
	return v, ok, nil
}

func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	m.DelCalls = append(m.DelCalls, keys)
	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}
	for _, k := range keys {
		delete(m.Data, k)
	}
	return nil
}

func (m *MockCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, keys...)
	}
	for _, k := range keys {
		if _, ok := m.Data[k]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCache) Close() error {
	m.CloseCalls++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Reset clears recorded calls and stored data.
func (m *MockCache) Reset() {
	m.Data = make(map[string]string)
	m.SetCalls = nil
	m.GetCalls = nil
	m.DelCalls = nil
	m.CloseCalls = 0
}
