package assets

import (
	"context"
	"sync"
)

// Cache memoises resolved references. Byte sources are never cached.
type Cache struct {
	next Resolver

	mu    sync.RWMutex
	items map[string][]byte
}

// NewCache caches results from next, or from Default when next is nil.
func NewCache(next Resolver) *Cache {
	if next == nil {
		next = Default()
	}
	return &Cache{next: next, items: map[string][]byte{}}
}

func (c *Cache) Load(ctx context.Context, src Source) ([]byte, error) {
	if src.IsBytes() {
		return src.Bytes(), nil
	}
	if b := c.Get(src.Ref()); b != nil {
		return b, nil
	}
	b, err := c.next.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	c.Put(src.Ref(), b)
	return b, nil
}

// Put stores b under key.
func (c *Cache) Put(key string, b []byte) {
	if key == "" || b == nil {
		return
	}
	c.mu.Lock()
	c.items[key] = b
	c.mu.Unlock()
}

// Get returns a cached entry by key.
func (c *Cache) Get(key string) []byte {
	if key == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items[key]
}

// Invalidate drops key so the next Load refetches it.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}
