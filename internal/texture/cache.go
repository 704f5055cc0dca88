package texture

import "sync"

// Cache remembers conversions so an image shared by several materials or
// frames is converted once per destination.
type Cache struct {
	Converter Converter

	mu   sync.Mutex
	done map[cacheKey]cacheEntry
}

type cacheKey struct {
	src, destDir string
}

type cacheEntry struct {
	out string
	err error
}

// NewCache wraps c.
func NewCache(c Converter) *Cache {
	return &Cache{Converter: c, done: make(map[cacheKey]cacheEntry)}
}

// Convert implements Converter. Failures are remembered too.
func (c *Cache) Convert(src, destDir string, overwrite bool) (string, error) {
	key := cacheKey{src, destDir}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.done[key]; ok {
		return e.out, e.err
	}
	out, err := c.Converter.Convert(src, destDir, overwrite)
	c.done[key] = cacheEntry{out, err}
	return out, err
}

// Len returns the number of distinct conversions made.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.done)
}
