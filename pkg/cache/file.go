package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileCache keeps one JSON file per entry under a directory, grouped by
// key kind so that layouts and debug views can be inspected apart:
//
//	<dir>/layout/3f/a9c1....json
//	<dir>/artifact/07/12be....json
type FileCache struct {
	dir string
}

// NewFileCache creates the directory if needed and returns a cache on it.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (e *fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Get returns the entry under key. Unreadable and expired entries are
// removed and reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e fileEntry
	if json.Unmarshal(raw, &e) != nil || e.Key != key || e.expired(time.Now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes the entry to a temporary file and renames it in place, so
// that a concurrent Get never sees half an entry.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	now := time.Now()
	e := fileEntry{Key: key, Data: data, CreatedAt: now}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes the entry under key.
func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Close does nothing.
func (c *FileCache) Close() error { return nil }

// Usage sums the entries of one kind.
type Usage struct {
	Kind    string
	Entries int
	Bytes   int64
	Expired int
}

// Stats reports the usage of every kind present in the cache, sorted by kind.
func (c *FileCache) Stats() ([]Usage, error) {
	byKind := map[string]*Usage{}
	now := time.Now()
	err := c.walk(func(kind, path string, info fs.FileInfo) {
		u := byKind[kind]
		if u == nil {
			u = &Usage{Kind: kind}
			byKind[kind] = u
		}
		u.Entries++
		u.Bytes += info.Size()
		if e, err := readEntry(path); err != nil || e.expired(now) {
			u.Expired++
		}
	})
	if err != nil {
		return nil, err
	}

	out := make([]Usage, 0, len(byKind))
	for _, u := range byKind {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

// Clear removes every entry and the directories holding them, and returns
// the number of entries removed.
func (c *FileCache) Clear() (int, error) {
	count := 0
	err := c.walk(func(_, path string, _ fs.FileInfo) {
		if os.Remove(path) == nil {
			count++
		}
	})
	if err != nil {
		return count, err
	}

	subdirs, err := os.ReadDir(c.dir)
	if err != nil {
		return count, err
	}
	for _, d := range subdirs {
		if err := os.RemoveAll(filepath.Join(c.dir, d.Name())); err != nil {
			return count, err
		}
	}
	return count, nil
}

// walk calls fn for every entry file with the kind directory it sits in.
// Files directly under the cache directory have an empty kind.
func (c *FileCache) walk(fn func(kind, path string, info fs.FileInfo)) error {
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == c.dir {
				return err
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(c.dir, path)
		kind, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
		if kind == filepath.ToSlash(rel) {
			kind = ""
		}
		fn(kind, path, info)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// path places key under its kind directory and a two-character shard of
// its hash.
func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, keyKind(key), h[:2], h[2:]+".json")
}

// keyKind is the key segment right before the hash, "misc" when the key
// has no kind.
func keyKind(key string) string {
	head, _, ok := cutLast(key, ":")
	if !ok {
		return "misc"
	}
	if _, kind, ok := cutLast(head, ":"); ok {
		return kind
	}
	return head
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}

func readEntry(path string) (*fileEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e fileEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

var _ Cache = (*FileCache)(nil)
