// Package cachestore implements the on-disk content-addressable cache. The
// directory layout mirrors the index path of each identity, so a populated
// cache resolves without any network activity. Writes are staged into a
// temporary file and renamed into place: a reader that sees an artifact at
// its final path always sees a complete artifact.
package cachestore

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Store is a cache directory keyed by index paths.
type Store struct {
	root   string
	logger *slog.Logger
}

// New creates a store rooted at dir. The directory is created lazily on the
// first materialize.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{root: dir, logger: logger}
}

// Root returns the cache directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the final on-disk location for an index path.
func (s *Store) Path(indexPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(indexPath))
}

// Exists reports whether the artifact for indexPath is already cached, and
// returns its location if so.
func (s *Store) Exists(indexPath string) (string, bool) {
	full := s.Path(indexPath)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", false
	}
	return full, true
}

// Materialize streams r into the cache under indexPath and returns the final
// path. The write is staged in a private temp file in the destination
// directory and renamed into place, so concurrent writers for the same key
// cannot expose a half-written artifact.
func (s *Store) Materialize(indexPath string, r io.Reader) (string, error) {
	final := s.Path(indexPath)

	dir := filepath.Dir(final)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write %s: %w", indexPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to finish %s: %w", indexPath, err)
	}

	if err := os.Rename(tmp.Name(), final); err != nil {
		_ = os.Remove(tmp.Name())
		// A concurrent writer may have won the rename; the artifact is
		// content-addressed, so theirs is as good as ours.
		if _, ok := s.Exists(indexPath); ok {
			return final, nil
		}
		return "", fmt.Errorf("failed to place %s: %w", indexPath, err)
	}

	s.logger.Debug("Cached artifact", "path", final)
	return final, nil
}

// MaterializeFile copies a local file into the cache under indexPath. Used
// for pointer-file redirections.
func (s *Store) MaterializeFile(indexPath, src string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open pointer target: %w", err)
	}
	defer func() { _ = f.Close() }()

	return s.Materialize(indexPath, f)
}
