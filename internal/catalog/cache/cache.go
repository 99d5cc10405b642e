package cache

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/catalog"
	"github.com/awmpietro/golang-claim-evaluation-case/internal/claims"
)

// InMemory caches parsed catalogs by content hash. Once max entries are held,
// new catalogs are still parsed but not stored.
type InMemory struct {
	mu    sync.RWMutex
	max   int
	items map[string][]claims.Policy
	group singleflight.Group
}

func NewInMemory(max int) *InMemory {
	if max < 0 {
		max = 0
	}
	return &InMemory{
		max:   max,
		items: make(map[string][]claims.Policy, max),
	}
}

// GetOrCompute returns the cached catalog for doc or runs fn once for all
// concurrent callers of the same doc. Errors are not cached.
func (c *InMemory) GetOrCompute(doc string, fn func() ([]claims.Policy, error)) ([]claims.Policy, error) {
	key := catalog.Hash(doc)

	if v, ok := c.get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (result any, err error) {
		if v, ok := c.get(key); ok {
			return v, nil
		}

		defer func() {
			if r := recover(); r != nil {
				result = nil
				err = fmt.Errorf("catalog compute panicked: %v", r)
			}
		}()

		policies, err := fn()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if len(c.items) < c.max {
			c.items[key] = policies
		}
		c.mu.Unlock()

		return policies, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]claims.Policy), nil
}

func (c *InMemory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *InMemory) get(key string) ([]claims.Policy, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}
