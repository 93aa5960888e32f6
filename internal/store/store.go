package store

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Store is a key/value wrapper over a directory of JSON documents. It is
// the single persistence surface for the portal: one store corresponds to
// one operator profile, the way browser local storage is scoped to one
// browser profile.
//
// All failures (IO, quota, corrupt entries) are logged and reported as a
// missing value or an unsuccessful write; they never propagate to callers.
type Store struct {
	fs     afero.Fs
	dir    string
	logger *zap.Logger
}

// New creates a store rooted at dir on the given filesystem
func New(fs afero.Fs, dir string, logger *zap.Logger) *Store {
	return &Store{
		fs:     fs,
		dir:    dir,
		logger: logger,
	}
}

// Get reads and decodes the value stored under key into out. It returns
// false when the key is absent or the stored entry cannot be decoded;
// a corrupt entry is treated identically to a missing one.
func (s *Store) Get(key string, out any) bool {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read entry", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("Discarding corrupt entry", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

// Set serializes value and writes it under key, replacing any previous
// entry whole. Returns false on serialization or write failure.
func (s *Store) Set(key string, value any) bool {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		s.logger.Error("Failed to serialize entry", zap.String("key", key), zap.Error(err))
		return false
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Error("Failed to create storage dir", zap.String("dir", s.dir), zap.Error(err))
		return false
	}

	if err := afero.WriteFile(s.fs, s.path(key), data, 0o644); err != nil {
		s.logger.Error("Failed to write entry", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

// Delete removes the entry under key. Missing entries are not an error.
func (s *Store) Delete(key string) {
	if err := s.fs.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to delete entry", zap.String("key", key), zap.Error(err))
	}
}

// Keys returns all stored keys with the given prefix, sorted.
func (s *Store) Keys(prefix string) []string {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to list entries", zap.Error(err))
		}
		return nil
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)
	return keys
}

// path maps a key to its backing file; keys are escaped so arbitrary
// client identifiers (emails) stay filesystem-safe and reversible.
func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}
