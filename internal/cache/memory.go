package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

// MemoryBackend is the ephemeral backend used for guest sessions. Records
// live only for the process lifetime and are never flushed to disk.
type MemoryBackend struct {
	c *gocache.Cache
}

// NewMemoryBackend creates an in-memory backend without expiration; the
// retention policy and session teardown bound its growth.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{c: gocache.New(gocache.NoExpiration, 0)}
}

func (m *MemoryBackend) Get(key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	raw, ok := v.([]byte)
	return raw, ok
}

func (m *MemoryBackend) Set(key string, value []byte) bool {
	m.c.Set(key, value, gocache.NoExpiration)
	return true
}

func (m *MemoryBackend) Remove(key string) {
	m.c.Delete(key)
}

func (m *MemoryBackend) Clear() {
	m.c.Flush()
}
