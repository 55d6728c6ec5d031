package cache

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// AppName names the cache directory.
const AppName = "prompt-assembler"

// entry is the on-disk form of one cached value.
type entry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Cache is a directory of JSON entries that expire after a fixed TTL.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// New opens a cache in dir, creating it if needed. An empty dir selects
// [DefaultDir]. A zero ttl keeps entries forever.
func New(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Get decodes the entry stored under key into v. It reports false on a miss,
// an expired entry or an entry that no longer decodes.
func (c *Cache) Get(key string, v any) bool {
	path := c.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Key != key {
		return false
	}
	if c.expired(e) {
		os.Remove(path)
		return false
	}
	return json.Unmarshal(e.Value, v) == nil
}

// Put stores v under key, replacing any previous entry.
func (c *Cache) Put(key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling cache value: %w", err)
	}
	data, err := json.Marshal(entry{Key: key, Value: value, CreatedAt: c.now()})
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return os.Rename(tmp.Name(), c.entryPath(key))
}

// Clear removes every entry and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	var removed int
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) expired(e entry) bool {
	return c.ttl > 0 && c.now().Sub(e.CreatedAt) > c.ttl
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, HashKey(key)+".json")
}

// HashKey returns the hex SHA-256 of key.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// DefaultDir returns the platform cache directory for pa.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", AppName), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, AppName, "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", AppName, "cache"), nil
	default:
		return filepath.Join(home, ".cache", AppName), nil
	}
}
