// Package storage persists template uploads and rendered document bytes
// behind opaque references.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Store reads and writes blobs by reference. References returned by Put are
// the only way to retrieve content later; callers persist them alongside the
// owning record.
type Store interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

// Local implements Store on the local filesystem rooted at a directory.
type Local struct {
	root string
}

// NewLocal creates the root directory if needed and returns a Local store.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, eris.Wrapf(err, "storage: create root %s", root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, eris.Wrap(err, "storage: resolve root")
	}
	return &Local{root: abs}, nil
}

// Put writes data under key and returns the reference. Writes go through a
// temp file and rename so readers never observe partial content.
func (l *Local) Put(ctx context.Context, key string, data []byte) (string, error) {
	path, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", eris.Wrapf(err, "storage: create dir for %s", key)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return "", eris.Wrapf(err, "storage: temp file for %s", key)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", eris.Wrapf(err, "storage: write %s", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", eris.Wrapf(err, "storage: close %s", key)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", eris.Wrapf(err, "storage: rename %s", key)
	}
	return key, nil
}

// Get reads the blob for a reference returned by Put.
func (l *Local) Get(ctx context.Context, ref string) ([]byte, error) {
	path, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "storage: read %s", ref)
	}
	return data, nil
}

// Delete removes a blob. Deleting a missing reference is not an error.
func (l *Local) Delete(ctx context.Context, ref string) error {
	path, err := l.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return eris.Wrapf(err, "storage: delete %s", ref)
	}
	return nil
}

// resolve maps a reference to an absolute path inside the root, rejecting
// traversal outside it.
func (l *Local) resolve(key string) (string, error) {
	if key == "" {
		return "", eris.New("storage: empty key")
	}
	path := filepath.Join(l.root, filepath.FromSlash(key))
	if path != l.root && !strings.HasPrefix(path, l.root+string(filepath.Separator)) {
		return "", eris.Errorf("storage: key escapes root: %s", key)
	}
	return path, nil
}
