package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const entryExt = ".json"

// Store errors.
var (
	ErrNotFound   = errors.New("cache entry not found")
	ErrExpired    = errors.New("cache entry expired")
	ErrInvalidKey = errors.New("cache key must be a non-empty name without path separators")
	ErrDisabled   = errors.New("cache is disabled")
)

// Store is a directory of JSON cache entries. It is safe for concurrent use.
// The zero value is a disabled store.
type Store struct {
	dir string
	ttl time.Duration
	now func() time.Time

	mu sync.RWMutex
}

// Open returns a store rooted at dir, creating the directory when needed.
// Entries written by Put live for ttl.
func Open(dir string, ttl time.Duration) (*Store, error) {
	if dir == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if err := ValidateTTL(ttl); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Store{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Enabled reports whether the store writes to disk.
func (s *Store) Enabled() bool {
	return s != nil && s.dir != ""
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// TTL returns the lifetime given to new entries.
func (s *Store) TTL() time.Duration {
	if s == nil {
		return 0
	}
	return s.ttl
}

// Get decodes the entry stored under key into v. It returns ErrNotFound for
// a missing entry and ErrExpired for one past its expiry, which is removed.
func (s *Store) Get(key string, v any) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.RLock()
	entry, err := readEntry(path)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	if entry.ExpiredAt(s.now()) {
		s.mu.Lock()
		_ = os.Remove(path)
		s.mu.Unlock()
		return ErrExpired
	}

	if err := json.Unmarshal(entry.Data, v); err != nil {
		return fmt.Errorf("decoding cache entry %s: %w", key, err)
	}
	return nil
}

// Put stores v under key, replacing any existing entry.
func (s *Store) Put(key string, v any) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache value: %w", err)
	}
	now := s.now()
	raw, err := json.Marshal(Entry{
		Key:       key,
		Data:      data,
		CreatedAt: now.UTC(),
		ExpiresAt: now.Add(s.ttl).UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// write then rename so readers never see a partial entry
	tmp, err := os.CreateTemp(s.dir, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("renaming cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry under key. Deleting a missing entry is not an error.
func (s *Store) Delete(key string) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *Store) Clear() (int, error) {
	return s.removeWhere(func(string) bool { return true })
}

// Prune removes expired and unreadable entries and returns how many were
// removed.
func (s *Store) Prune() (int, error) {
	if !s.Enabled() {
		return 0, ErrDisabled
	}
	now := s.now()
	return s.removeWhere(func(path string) bool {
		entry, err := readEntry(path)
		return err != nil || entry.ExpiredAt(now)
	})
}

// Stats reports the number of entries and their total size in bytes.
// Expired entries are counted until pruned.
func (s *Store) Stats() (int, int64, error) {
	if !s.Enabled() {
		return 0, 0, ErrDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.entries()
	if err != nil {
		return 0, 0, err
	}
	var size int64
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		size += info.Size()
	}
	return len(files), size, nil
}

func (s *Store) removeWhere(match func(path string) bool) (int, error) {
	if !s.Enabled() {
		return 0, ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.entries()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		if !match(f) {
			continue
		}
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("removing %s: %w", filepath.Base(f), err)
		}
		removed++
	}
	return removed, nil
}

// entries lists entry files. Callers hold mu.
func (s *Store) entries() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading cache directory: %w", err)
	}
	files := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != entryExt {
			continue
		}
		files = append(files, filepath.Join(s.dir, name))
	}
	return files, nil
}

func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\:`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+entryExt), nil
}

func readEntry(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	return &entry, nil
}
