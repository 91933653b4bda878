package condition

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheSize bounds how many distinct condition strings stay parsed
// at once; a bulk scan of many rules sharing a smaller set of conditions
// benefits most.
const defaultCacheSize = 256

// Cache memoizes Parse results keyed by the condition string, so the
// scan orchestrator parses each rule's condition once per cache rather
// than once per file; a bulk scan shares one cache across its files.
type Cache struct {
	lru *lru.Cache[string, *Node]
}

// NewCache creates a condition cache with the default capacity.
func NewCache() *Cache {
	c, err := lru.New[string, *Node](defaultCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// defaultCacheSize never is.
		panic(err)
	}
	return &Cache{lru: c}
}

// Get parses condition on first use and returns the cached tree on
// subsequent calls with the same string.
func (c *Cache) Get(cond string) (*Node, error) {
	if node, ok := c.lru.Get(cond); ok {
		return node, nil
	}
	node, err := Parse(cond)
	if err != nil {
		return nil, err
	}
	c.lru.Add(cond, node)
	return node, nil
}
