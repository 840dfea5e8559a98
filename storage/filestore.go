// Package storage persists the small integers the firmware remembers across
// power cycles. Values are stored as decimal text, one slot per key.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrBadKey is returned for keys that cannot name a slot
var ErrBadKey = errors.New("storage: invalid key")

// FileStore keeps each key in its own text file, <dir>/<key>.txt, so the
// values can be read and edited by hand on a mounted drive.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the file backing key
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+".txt")
}

// ReadInt reads the integer stored under key
func (s *FileStore) ReadInt(key string) (int, error) {
	if err := checkKey(key); err != nil {
		return 0, err
	}
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return v, nil
}

// WriteInt stores value under key. It returns only after the data has been
// synced, so callers may follow it with an action that resets the machine.
func (s *FileStore) WriteInt(key string, value int) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	path := s.Path(key)
	tmp, err := os.CreateTemp(s.dir, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.Itoa(value)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return syncDir(s.dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open store directory: %w", err)
	}
	defer d.Close()
	// Some filesystems refuse fsync on directories; the rename is still done
	_ = d.Sync()
	return nil
}

func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\.`) {
		return fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	return nil
}
