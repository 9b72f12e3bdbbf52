package compare

import (
	"os"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache memoizes fingerprint tuples keyed by declared type plus the
// file's content hash, so re-running a batch never re-parses an
// unchanged file. It can persist itself to disk between sessions.
type Cache struct {
	mu      sync.RWMutex
	path    string
	entries map[string]Properties
}

// NewCache creates a cache. A non-empty path enables Load/Save; an
// empty path keeps it purely in memory.
func NewCache(path string) *Cache {
	return &Cache{path: path, entries: make(map[string]Properties)}
}

func cacheKey(t FileType, fileHash string) string {
	return string(t) + ":" + fileHash
}

// Get returns the cached tuple for a type + content hash.
func (c *Cache) Get(t FileType, fileHash string) (Properties, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[cacheKey(t, fileHash)]
	return p, ok
}

// Put stores a tuple. Only successful extractions are cached.
func (c *Cache) Put(t FileType, fileHash string, props Properties) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(t, fileHash)] = props
}

// Load reads the persisted cache. A missing file is not an error.
func (c *Cache) Load() error {
	if c.path == "" {
		return nil
	}
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return msgpack.Unmarshal(data, &c.entries)
}

// Save writes the cache to disk.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}
	c.mu.RLock()
	data, err := msgpack.Marshal(c.entries)
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}
