package avatars

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/filex"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DiskCache holds normalized avatars as <dir>/<id>.png.
type DiskCache struct {
	dir string
}

func NewDiskCache(dir string) *DiskCache {
	return &DiskCache{dir: dir}
}

func (c *DiskCache) Path(userID string) string {
	return filepath.Join(c.dir, fileName(userID))
}

// Get returns the cached bytes, or ok=false when nothing is cached.
func (c *DiskCache) Get(userID string) (data []byte, ok bool, err error) {
	data, err = os.ReadFile(c.Path(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache: %w", err)
	}
	return data, true, nil
}

func (c *DiskCache) Put(userID string, data []byte) error {
	return filex.WriteFileAtomic(c.Path(userID), data, filePerm)
}

func (c *DiskCache) Remove(userID string) error {
	return filex.RemoveIfExists(c.Path(userID))
}

// MemoryCache is an expiring LRU in front of the disk cache. A nil
// *MemoryCache is valid and caches nothing.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		return nil
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *MemoryCache) Get(userID string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(userID)
}

func (c *MemoryCache) Add(userID string, data []byte) {
	if c == nil {
		return
	}
	c.lru.Add(userID, data)
}

func (c *MemoryCache) Remove(userID string) {
	if c == nil {
		return
	}
	c.lru.Remove(userID)
}
