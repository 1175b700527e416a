package texture

import (
	"image"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Resolver resolves a texture reference to a decoded image, or nil.
type Resolver interface {
	Resolve(ref string) *image.NRGBA
}

// Cache is a concurrency-safe decoded-image cache backed by an Index.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
	// loads collapses concurrent decodes of the same path.
	loads singleflight.Group
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
	}
}

// Resolve loads and caches a texture by reference. Returns nil if it cannot be found or decoded.
func (c *Cache) Resolve(ref string) *image.NRGBA {
	path, ok := c.index.ResolvePath(ref)
	if !ok {
		return nil
	}
	img, _ := c.Load(path)
	return img
}

// Load decodes path once; later calls return the cached result, error included.
func (c *Cache) Load(path string) (*image.NRGBA, error) {
	c.mu.RLock()
	entry, ok := c.items[path]
	c.mu.RUnlock()
	if ok {
		return entry.img, entry.err
	}

	v, _, _ := c.loads.Do(path, func() (interface{}, error) {
		c.mu.RLock()
		entry, ok := c.items[path]
		c.mu.RUnlock()
		if ok {
			return entry, nil
		}
		img, err := LoadTexture(path)
		entry = &cacheEntry{img: img, err: err}
		c.mu.Lock()
		c.items[path] = entry
		c.mu.Unlock()
		return entry, nil
	})
	entry = v.(*cacheEntry)
	return entry.img, entry.err
}
