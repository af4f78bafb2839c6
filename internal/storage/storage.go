// Package storage provides ephemeral key-value stores with per-key expiry,
// used to hold pending confirmation codes.
package storage

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// KV is a key-value store whose entries may expire.
type KV interface {
	// Get returns the value for key and whether it was present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A ttl of zero or less keeps it until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	// CompareAndSwap replaces the value under key with next only if the current
	// value equals old. A nil old matches a missing key and a nil next deletes
	// the key. It reports whether the swap happened.
	CompareAndSwap(ctx context.Context, key string, old, next []byte, ttl time.Duration) (bool, error)
}

type memoryItem struct {
	value   []byte
	expires time.Time
}

// MemoryKV is an in-process KV. It is only suitable for single-instance deployments.
type MemoryKV struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: make(map[string]memoryItem), now: time.Now}
}

// Get implements KV. Expired entries are removed on access.
func (k *MemoryKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	it, ok := k.lookup(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), it.value...), true, nil
}

// Set implements KV.
func (k *MemoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.store(key, value, ttl)
	return nil
}

// CompareAndSwap implements KV.
func (k *MemoryKV) CompareAndSwap(ctx context.Context, key string, old, next []byte, ttl time.Duration) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	it, ok := k.lookup(key)
	if ok != (old != nil) || !bytes.Equal(it.value, old) {
		return false, nil
	}
	if next == nil {
		delete(k.items, key)
		return true, nil
	}
	k.store(key, next, ttl)
	return true, nil
}

// lookup must be called with mu held.
func (k *MemoryKV) lookup(key string) (memoryItem, bool) {
	it, ok := k.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !it.expires.IsZero() && k.now().After(it.expires) {
		delete(k.items, key)
		return memoryItem{}, false
	}
	return it, true
}

func (k *MemoryKV) store(key string, value []byte, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = k.now().Add(ttl)
	}
	k.items[key] = memoryItem{value: append([]byte(nil), value...), expires: exp}
}

// Del implements KV.
func (k *MemoryKV) Del(ctx context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.items, key)
	return nil
}
