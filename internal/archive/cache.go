package archive

import (
	"fmt"
	"strings"

	"github.com/hashicorp/golang-lru/arc/v2"
)

// DefaultPathCacheSize is enough to hold every path of a typical archive.
const DefaultPathCacheSize = 1 << 14

// PathCache memoizes IndexOf. Indices never change during a repack, so
// entries stay valid until the archive is closed or re-opened; call Purge
// then. Misses are not cached.
type PathCache struct {
	archive *Archive
	cache   *arc.ARCCache[string, int]
}

// NewPathCache creates a cache of at most size paths in front of a.
func NewPathCache(a *Archive, size int) (*PathCache, error) {
	cache, err := arc.NewARC[string, int](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create path cache: %w", err)
	}
	return &PathCache{archive: a, cache: cache}, nil
}

// IndexOf resolves path, consulting the cache first.
func (c *PathCache) IndexOf(path string) (int, error) {
	if err := c.archive.checkOpen(); err != nil {
		return -1, err
	}

	segments := NormalizePath(path)
	key := strings.Join(segments, "/")

	if index, ok := c.cache.Get(key); ok {
		return index, nil
	}

	index, err := c.archive.indexOf(segments, path)
	if err != nil {
		return -1, err
	}

	c.cache.Add(key, index)
	return index, nil
}

// Len returns the number of cached paths.
func (c *PathCache) Len() int {
	return c.cache.Len()
}

// Purge drops every cached path.
func (c *PathCache) Purge() {
	c.cache.Purge()
}
