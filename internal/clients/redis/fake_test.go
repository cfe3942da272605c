package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type memStore struct {
	mu      sync.Mutex
	vals    map[string]string
	ttls    map[string]time.Duration
	failGet bool
}

func newMemStore() *memStore {
	return &memStore{vals: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(ctx context.Context, key string) *goredis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return goredis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := m.vals[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (m *memStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.vals[key] = string(v)
	case string:
		m.vals[key] = v
	}
	m.ttls[key] = expiration
	return goredis.NewStatusResult("OK", nil)
}

func (m *memStore) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.vals[k]; ok {
			delete(m.vals, k)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func (m *memStore) Incr(ctx context.Context, key string) *goredis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	if v, ok := m.vals[key]; ok {
		n = int64(len(v))
	}
	n++
	m.vals[key] = string(make([]byte, n))
	return goredis.NewIntResult(n, nil)
}

func (m *memStore) Expire(ctx context.Context, key string, expiration time.Duration) *goredis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttls[key] = expiration
	return goredis.NewBoolResult(true, nil)
}

func (m *memStore) TTL(ctx context.Context, key string) *goredis.DurationCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	return goredis.NewDurationResult(m.ttls[key], nil)
}
