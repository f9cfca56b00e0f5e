package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when CachePayload format changes
const renderCacheSchemaVersion uint16 = 1

// Digest identifies a (bundle bytes, render options) pair.
type Digest = [sha256.Size]byte

// RenderCache stores rendered reports on disk, keyed by the digest of
// the bundle bytes plus the options that produced the output.
// Thread-safe for concurrent access.
type RenderCache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload is the serialized form of one cached render.
type CachePayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Format string
	Output string

	// Counts so a cache hit still feeds the batch tally.
	Errors   uint32
	Warnings uint32
}

// OpenRenderCache initializes the cache at the standard XDG location.
func OpenRenderCache(app string) (*RenderCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &RenderCache{dir: dir}, nil
}

// OpenRenderCacheAt initializes the cache in an explicit directory.
func OpenRenderCacheAt(dir string) (*RenderCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &RenderCache{dir: dir}, nil
}

// DigestFor computes the cache key for a bundle and an options
// fingerprint.
func DigestFor(bundleBytes []byte, fingerprint string) Digest {
	h := sha256.New()
	h.Write(bundleBytes)
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func (c *RenderCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "renders", hexKey+".mp")
}

// Put serializes and writes a payload to the cache.
func (c *RenderCache) Put(key Digest, payload *CachePayload) error {
	if c == nil {
		return nil
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
	defer func() {
		// After a successful rename the temp name is gone already.
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			fmt.Printf("failed to remove temp file: %v", rmErr)
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err = enc.Encode(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replace
	return os.Rename(f.Name(), p)
}

// Get reads a payload from the cache. A payload with a stale schema is
// treated as a miss.
func (c *RenderCache) Get(key Digest, out *CachePayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			panic(closeErr)
		}
	}()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	if out.Schema != renderCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *RenderCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
