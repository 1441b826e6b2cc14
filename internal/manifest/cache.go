package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"slotwise/internal/project"
)

// Bump when cachedFile changes shape.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores decoded manifests keyed by the digest of their bytes.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type cachedFile struct {
	Schema  uint16
	Format  uint8
	File    File
	Unknown []string
}

// OpenDiskCache opens a cache in dir, or under $XDG_CACHE_HOME/<app> (falling
// back to ~/.cache/<app>) when dir is empty.
func OpenDiskCache(dir, app string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "manifests", key.String()+".mp")
}

// Put writes a decoded manifest atomically.
func (c *DiskCache) Put(key project.Digest, format Format, f *File, unknown []string) (err error) {
	if c == nil || f == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = fmt.Errorf("failed to remove temp file: %w", rmErr)
		}
	}()

	payload := cachedFile{Schema: diskCacheSchemaVersion, Format: uint8(format), File: *f, Unknown: unknown}
	if err = msgpack.NewEncoder(tmp).Encode(&payload); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// Get reads a decoded manifest. Entries written with another schema or
// format are reported as misses.
func (c *DiskCache) Get(key project.Digest, format Format) (*File, []string, bool, error) {
	if c == nil {
		return nil, nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, false, nil
		}
		return nil, nil, false, err
	}
	defer f.Close()

	var payload cachedFile
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, nil, false, err
	}
	if payload.Schema != diskCacheSchemaVersion || payload.Format != uint8(format) {
		return nil, nil, false, nil
	}
	return &payload.File, payload.Unknown, true, nil
}

// DropAll removes every cached manifest.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
