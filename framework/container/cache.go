package container

import (
	"sort"
	"sync"
)

// cache holds resolved service values for a single container.
//
// getOrCompute is not atomic with respect to compute: the lock is released
// while compute runs so factories can resolve other services. Two callers
// racing on the same missing key may both run compute; the first value
// stored wins and is returned to both.
type cache struct {
	mu     sync.RWMutex
	values map[string]any
}

func newCache() *cache {
	return &cache{values: make(map[string]any)}
}

func (c *cache) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// getOrCompute returns the cached value for key, or runs compute and stores
// its result. A compute error is returned as-is and nothing is stored.
// hit reports whether compute was skipped.
func (c *cache) getOrCompute(key string, compute func() (any, error)) (v any, hit bool, err error) {
	if v, ok := c.get(key); ok {
		return v, true, nil
	}

	v, err = compute()
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if stored, ok := c.values[key]; ok {
		return stored, false, nil
	}
	c.values[key] = v
	return v, false, nil
}

func (c *cache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]any)
}

func (c *cache) keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.values))
	for k := range c.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
