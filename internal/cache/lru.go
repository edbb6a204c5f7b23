package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUCache keeps validated diagrams in process memory, evicting the least
// recently used entry once size is reached and expiring entries after ttl.
type LRUCache struct {
	lru *expirable.LRU[string, string]
}

func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if size <= 0 {
		size = 1
	}
	return &LRUCache{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (c *LRUCache) Get(_ context.Context, key string) (string, bool, error) {
	val, ok := c.lru.Get(key)
	return val, ok, nil
}

func (c *LRUCache) Set(_ context.Context, key string, value string) error {
	c.lru.Add(key, value)
	return nil
}

func (c *LRUCache) Close() error {
	c.lru.Purge()
	return nil
}
