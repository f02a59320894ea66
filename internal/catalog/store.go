package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// DefaultLockTimeout bounds how long a cache write waits for the file lock.
const DefaultLockTimeout = 2 * time.Second

// Fetcher retrieves the raw remote catalog document.
type Fetcher interface {
	FetchCatalog(ctx context.Context) ([]byte, error)
}

// LoadInfo describes where a loaded catalog came from.
type LoadInfo struct {
	// FromCache is true when the catalog was read from the cache file.
	FromCache bool

	// CacheWritten is true when a fetched catalog was persisted.
	CacheWritten bool

	// CacheErr holds a cache read or write problem that did not prevent loading.
	CacheErr error
}

// Store loads the catalog from the cache file, falling back to the fetcher
// on a miss. The first successful load is kept for the life of the Store.
type Store struct {
	// CachePath is the cache file location. Empty disables the cache.
	CachePath string

	Fetcher Fetcher

	// LockTimeout overrides DefaultLockTimeout when positive.
	LockTimeout time.Duration

	mu     sync.Mutex
	loaded *Catalog
	info   LoadInfo
}

// NewStore creates a Store.
func NewStore(cachePath string, fetcher Fetcher) *Store {
	return &Store{CachePath: cachePath, Fetcher: fetcher}
}

// Load returns the catalog, reading the cache or fetching and caching it.
// A missing, unreadable or undecodable cache file is a miss.
// Cache write failures are reported in LoadInfo and never fail the load.
func (s *Store) Load(ctx context.Context) (*Catalog, LoadInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded != nil {
		return s.loaded, s.info, nil
	}

	var info LoadInfo
	if s.CachePath != "" {
		cat, err := s.readCache()
		if err == nil {
			info.FromCache = true
			s.loaded, s.info = cat, info
			return cat, info, nil
		}
		if !os.IsNotExist(err) {
			info.CacheErr = err
		}
	}

	if s.Fetcher == nil {
		return nil, info, fmt.Errorf("catalog not cached and no fetcher configured")
	}

	data, err := s.Fetcher.FetchCatalog(ctx)
	if err != nil {
		return nil, info, err
	}

	cat, err := Decode(data)
	if err != nil {
		return nil, info, err
	}

	if s.CachePath != "" {
		written, err := s.writeCache(ctx, data)
		info.CacheWritten = written
		if err != nil {
			info.CacheErr = err
		}
	}

	s.loaded, s.info = cat, info
	return cat, info, nil
}

func (s *Store) readCache() (*Catalog, error) {
	data, err := os.ReadFile(s.CachePath)
	if err != nil {
		return nil, err
	}
	cat, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("cache %s: %w", s.CachePath, err)
	}
	return cat, nil
}

// writeCache persists data under an advisory lock.
// Returns false without error when another writer holds the lock.
func (s *Store) writeCache(ctx context.Context, data []byte) (bool, error) {
	dir := filepath.Dir(s.CachePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("create cache directory: %w", err)
	}

	timeout := s.LockTimeout
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fileLock := flock.New(s.CachePath + ".lock")
	locked, err := fileLock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil && lockCtx.Err() == nil {
		return false, fmt.Errorf("lock cache: %w", err)
	}
	if !locked {
		return false, nil
	}
	defer fileLock.Unlock() //nolint:errcheck

	tmp, err := os.CreateTemp(dir, ".data-*.json.tmp")
	if err != nil {
		return false, fmt.Errorf("create cache temp file: %w", err)
	}
	tempPath := tmp.Name()

	success := false
	defer func() {
		if tmp != nil {
			tmp.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return false, fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return false, fmt.Errorf("sync cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("close cache: %w", err)
	}
	tmp = nil

	if err := os.Rename(tempPath, s.CachePath); err != nil {
		return false, fmt.Errorf("finalize cache: %w", err)
	}

	success = true
	return true, nil
}
