package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNotStored is returned when a name has no stored file.
var ErrNotStored = errors.New("export not stored")

// LocalStorage keeps rendered exports on disk, one directory per owner.
type LocalStorage struct {
	root string
	now  func() time.Time
}

// NewLocalStorage creates root if needed.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		root = "./exports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create export root %s: %w", root, err)
	}
	return &LocalStorage{root: root, now: time.Now}, nil
}

// Save writes data under name, a slash separated path relative to the root.
// Readers never observe a partially written file.
func (s *LocalStorage) Save(name string, data []byte) (string, error) {
	target, err := s.path(name)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".partial-*")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("publish %s: %w", name, err)
	}
	return name, nil
}

// Open returns the stored file. The caller closes it.
func (s *LocalStorage) Open(name string) (*os.File, error) {
	target, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotStored)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

// CleanupOlderThan deletes files not modified within ttl, then removes owner
// directories left empty. It returns the deleted names, sorted.
func (s *LocalStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := s.now().Add(-ttl)
	var deleted []string
	var dirs []string

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != s.root {
				dirs = append(dirs, p)
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if rel, err := filepath.Rel(s.root, p); err == nil {
			deleted = append(deleted, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return deleted, fmt.Errorf("sweep %s: %w", s.root, err)
	}

	// Deepest first; os.Remove refuses non-empty directories.
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = os.Remove(dirs[i])
	}
	sort.Strings(deleted)
	return deleted, nil
}

// path maps a relative name into the root, rejecting anything that escapes it.
func (s *LocalStorage) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	escapes := clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))
	if name == "" || clean == "." || filepath.IsAbs(clean) || escapes {
		return "", fmt.Errorf("invalid export path %q", name)
	}
	return filepath.Join(s.root, clean), nil
}
