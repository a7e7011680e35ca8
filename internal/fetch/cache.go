package fetch

// Cache memoizes raw responses, or what was parsed out of them, by key (usually the
// url or the requested date). Only successful loads are stored.
//
// There is no invalidation, a cache lives exactly as long as the source instance
// that owns it, which is one process run. It is not safe for concurrent use.
type Cache[K comparable, V any] struct {
	entries map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: map[K]V{}}
}

// Get returns the cached value for key, calling load to fill it when absent.
func (c *Cache[K, V]) Get(key K, load func() (V, error)) (V, error) {
	if value, ok := c.entries[key]; ok {
		return value, nil
	}
	value, err := load()
	if err != nil {
		return value, err
	}
	c.entries[key] = value
	return value, nil
}

func (c *Cache[K, V]) Lookup(key K) (V, bool) {
	value, ok := c.entries[key]
	return value, ok
}

func (c *Cache[K, V]) Put(key K, value V) {
	c.entries[key] = value
}

func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}
