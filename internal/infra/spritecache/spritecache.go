// Package spritecache provides an LRU cache over decoded sprite pixel
// buffers. Index builds and copy-time fingerprinting hit the same cells
// repeatedly (layers, frames, subtype variants share cells), so caching the
// pixel function pays for itself on large asset sets. Not the source of
// truth: the underlying sprite reader is.
package spritecache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mapforge/crossid/internal/domain/catalog"
	"github.com/mapforge/crossid/internal/domain/fingerprint"
)

type cellKey struct {
	serverID catalog.ServerID
	subtype  int
	frame    int
	layer    int
	cellX    int
	cellY    int
}

type cellPixels struct {
	pixels []byte
	width  int
	height int
}

// Cache wraps a SpriteSource with a fixed-size LRU. It implements
// fingerprint.SpriteSource itself and may be substituted anywhere the
// underlying source is used.
type Cache struct {
	src    fingerprint.SpriteSource
	lru    *lru.Cache[cellKey, cellPixels]
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache over src holding up to size cells.
func New(src fingerprint.SpriteSource, size int) (*Cache, error) {
	l, err := lru.New[cellKey, cellPixels](size)
	if err != nil {
		return nil, err
	}
	return &Cache{src: src, lru: l}, nil
}

// SpritePixels returns the cached pixel buffer for a cell, resolving through
// the underlying source on a miss. Errors are never cached.
func (c *Cache) SpritePixels(def catalog.ItemDefinition, subtype int, frame, layer, cellX, cellY int) ([]byte, int, int, error) {
	key := cellKey{def.ServerID, subtype, frame, layer, cellX, cellY}
	if cached, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return cached.pixels, cached.width, cached.height, nil
	}
	pixels, w, h, err := c.src.SpritePixels(def, subtype, frame, layer, cellX, cellY)
	if err != nil {
		return nil, 0, 0, err
	}
	c.misses.Add(1)
	c.lru.Add(key, cellPixels{pixels: pixels, width: w, height: h})
	return pixels, w, h, nil
}

// Stats returns cache hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Purge drops every cached cell, for asset reloads.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached cells.
func (c *Cache) Len() int {
	return c.lru.Len()
}
