// Package buildcache remembers content hashes of built models so unchanged
// models can be skipped.
package buildcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

const FileName = ".mesher-hashes.json"

// Cache maps model names to the hash of the inputs they were last built
// from. It is safe for concurrent use.
type Cache struct {
	mu     sync.Mutex
	path   string
	Hashes map[string]string `json:"hashes"`
}

// Load reads the cache stored in dir. A missing or unreadable cache yields
// an empty one, so everything gets rebuilt.
func Load(dir string) *Cache {
	c := &Cache{path: filepath.Join(dir, FileName), Hashes: make(map[string]string)}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return c
	}
	var stored Cache
	if err := json.Unmarshal(data, &stored); err != nil || stored.Hashes == nil {
		return c
	}
	c.Hashes = stored.Hashes
	return c
}

// Fresh reports whether name was last built from inputs hashing to hash.
func (c *Cache) Fresh(name, hash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Hashes[name] == hash
}

// Put records a successful build of name.
func (c *Cache) Put(name, hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Hashes[name] = hash
}

// Forget drops name so it is rebuilt next time.
func (c *Cache) Forget(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Hashes, name)
}

// Prune drops every entry not in names and returns the dropped names,
// sorted.
func (c *Cache) Prune(names []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var dropped []string
	for name := range c.Hashes {
		if !slices.Contains(names, name) {
			dropped = append(dropped, name)
			delete(c.Hashes, name)
		}
	}
	slices.Sort(dropped)
	return dropped
}

// Save writes the cache back to the directory it was loaded from.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}

	return nil
}

// Clean removes the cache file from dir.
func Clean(dir string) error {
	if err := os.Remove(filepath.Join(dir, FileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing hash cache: %w", err)
	}
	return nil
}

// HashFile computes the SHA256 hash of a file. Salt strings are mixed in
// first, so build settings that change the output can invalidate the hash.
func HashFile(path string, salt ...string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	for _, s := range salt {
		io.WriteString(h, s)
		h.Write([]byte{0})
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
