package models

import (
	"slices"
	"sync"
)

// ArtistCache records artist genre lookups for a single pipeline run.
//
// A missing entry means the artist has not been looked up; a present entry with no
// genres means the artist was looked up and has none.
type ArtistCache struct {
	mu      sync.RWMutex
	entries map[string][]string
}

// NewArtistCache creates an empty cache.
func NewArtistCache() *ArtistCache {
	return &ArtistCache{entries: make(map[string][]string)}
}

// Put stores the genres for an artist, replacing any earlier value.
func (c *ArtistCache) Put(artistID string, genres []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[artistID] = slices.Clone(genres)
}

// Genres returns a copy of the cached genres and whether the artist was cached.
func (c *ArtistCache) Genres(artistID string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	genres, ok := c.entries[artistID]
	return slices.Clone(genres), ok
}

// Has reports whether the artist has been looked up.
func (c *ArtistCache) Has(artistID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[artistID]
	return ok
}

// Len returns the number of cached artists.
func (c *ArtistCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
