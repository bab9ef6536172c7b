package wdk

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache stores raw response bodies keyed by request path.
type Cache interface {
	Get(path string) ([]byte, bool)
	Put(path string, body []byte) error
	Delete(path string) error
}

// MemoryCache is a fixed-size in-process LRU Cache.
type MemoryCache struct {
	lru *lru.Cache[string, []byte]
}

// NewMemoryCache returns an LRU cache holding up to size responses.
func NewMemoryCache(size int) (*MemoryCache, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("wdk: memory cache: %w", err)
	}
	return &MemoryCache{lru: c}, nil
}

func (m *MemoryCache) Get(path string) ([]byte, bool) {
	return m.lru.Get(path)
}

func (m *MemoryCache) Put(path string, body []byte) error {
	m.lru.Add(path, body)
	return nil
}

func (m *MemoryCache) Delete(path string) error {
	m.lru.Remove(path)
	return nil
}

// Len returns the number of cached responses.
func (m *MemoryCache) Len() int { return m.lru.Len() }
