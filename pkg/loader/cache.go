package loader

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoises file bytes per CacheKey. Concurrent misses for the same
// key share one fetch.
type Cache struct {
	mu    sync.RWMutex
	data  map[string][]byte
	group singleflight.Group
}

func NewCache() *Cache {
	return &Cache{data: make(map[string][]byte)}
}

// Get returns the cached bytes for file or calls fetch once to fill them.
// Failed fetches are not cached.
func (c *Cache) Get(
	ctx context.Context,
	file NovelFile,
	fetch func(ctx context.Context) ([]byte, error),
) ([]byte, error) {
	key := CacheKey(file)

	c.mu.RLock()
	if cached, ok := c.data[key]; ok {
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		if cached, ok := c.data[key]; ok {
			c.mu.RUnlock()
			return cached, nil
		}
		c.mu.RUnlock()

		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.data[key] = data
		c.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Forget drops file from the cache.
func (c *Cache) Forget(file NovelFile) {
	key := CacheKey(file)
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	c.group.Forget(key)
}
