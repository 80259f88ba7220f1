package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rubiojr/party/ast"
	"github.com/vmihailenco/msgpack/v5"
)

// cacheSchema is bumped whenever cacheEntry changes shape.
const cacheSchema uint16 = 1

// DefaultCacheMaxBytes caps the cache directory before eviction.
const DefaultCacheMaxBytes = 256 * 1024 * 1024

// Cache is a content-addressed store of compiled modules. Entries are
// msgpack files written through a temp file and an atomic rename. It is safe
// for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	dir      string
	MaxBytes int64
}

type cacheEntry struct {
	Schema   uint16
	Code     string
	Map      []byte // source map JSON, nil without source maps
	Requires []string
	Warnings []*ast.Error
}

// DefaultCacheDir returns $XDG_CACHE_HOME/party, or ~/.cache/party.
func DefaultCacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "party"), nil
}

// OpenCache opens the cache at dir, creating it if needed. An empty dir
// selects DefaultCacheDir.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultCacheDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, MaxBytes: DefaultCacheMaxBytes}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// cacheKey hashes everything the compiled output depends on.
func cacheKey(src []byte, path string, cfg BuildConfig) string {
	h := sha256.New()
	h.Write([]byte(Version))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(cfg.SourceMaps)))
	h.Write([]byte(strconv.FormatBool(cfg.Positions)))
	h.Write([]byte{0})
	h.Write(src)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) pathFor(key string) string {
	return filepath.Join(c.dir, "mods", key[:2], key+".mp")
}

// get reads the entry stored under key. Entries with another schema are
// misses. A hit refreshes the entry's modification time for eviction.
func (c *Cache) get(key string) (*cacheEntry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var e cacheEntry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, false, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}
	if e.Schema != cacheSchema {
		return nil, false, nil
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return &e, true, nil
}

// put stores e under key.
func (c *Cache) put(key string, e *cacheEntry) error {
	if c == nil {
		return nil
	}
	e.Schema = cacheSchema
	data, err := msgpack.Marshal(e)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Prune removes the least recently used entries until the cache holds at
// most MaxBytes. It returns the number of removed entries.
func (c *Cache) Prune() (int, error) {
	if c == nil || c.MaxBytes <= 0 {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	type entry struct {
		path    string
		size    int64
		modTime time.Time
	}
	var files []entry
	var total int64
	err := filepath.WalkDir(filepath.Join(c.dir, "mods"), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".mp" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, entry{path: path, size: info.Size(), modTime: info.ModTime()})
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	if total <= c.MaxBytes {
		return 0, nil
	}

	// Oldest first.
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})
	removed := 0
	for _, f := range files {
		if total <= c.MaxBytes {
			break
		}
		if err := os.Remove(f.path); err != nil {
			continue
		}
		total -= f.size
		removed++
	}
	return removed, nil
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "mods"))
}
