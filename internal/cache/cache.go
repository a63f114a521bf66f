// Package cache implements the content-addressed result cache rooted at
// <git-dir>/tidemark-cache/<namespace>/<key>.json (spec.md §4.8). Keys are
// derived from a canonical JSON encoding of the caller's key payload;
// writes are atomic via temp-file rename.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/frgrisk/tidemark/internal/tideerr"
)

// Store is a namespaced, optionally-disabled JSON cache.
type Store struct {
	root    string
	enabled bool
}

// New roots a Store at <gitDir>/tidemark-cache. When enabled is false,
// every Get misses and every Put is a no-op.
func New(gitDir string, enabled bool) *Store {
	return &Store{root: filepath.Join(gitDir, "tidemark-cache"), enabled: enabled}
}

// KeyFromPayload serializes payload to canonical JSON, hashes
// namespace || 0x00 || payload with SHA-256, and returns the lowercase hex
// digest. The payload's Go struct field order is its canonical byte order.
func KeyFromPayload(namespace string, payload any) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", tideerr.CacheFormat(err.Error())
	}

	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write(encoded)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get reads a cached value by namespace and key. A missing file is a miss
// (false, nil); a malformed file is a CacheFormat error, not a miss.
func (s *Store) Get(namespace, key string, out any) (bool, error) {
	if !s.enabled {
		return false, nil
	}

	path := s.pathFor(namespace, key)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, tideerr.IO(path, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return false, tideerr.CacheFormat(path + ": " + err.Error())
	}
	return true, nil
}

// Put writes value under namespace/key via a sibling temp file and an
// atomic rename, creating parent directories as needed. A no-op when the
// store is disabled.
func (s *Store) Put(namespace, key string, value any) error {
	if !s.enabled {
		return nil
	}

	dir := filepath.Join(s.root, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return tideerr.IO(dir, err)
	}

	path := s.pathFor(namespace, key)
	payload, err := json.Marshal(value)
	if err != nil {
		return tideerr.CacheFormat(err.Error())
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return tideerr.IO(dir, err)
	}
	tmp := tmpFile.Name()
	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		os.Remove(tmp)
		return tideerr.IO(tmp, err)
	}
	_, writeErr := tmpFile.Write(payload)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmp)
		return tideerr.IO(tmp, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return tideerr.IO(tmp, closeErr)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return tideerr.IO(path, err)
	}
	return nil
}

func (s *Store) pathFor(namespace, key string) string {
	return filepath.Join(s.root, namespace, key+".json")
}
