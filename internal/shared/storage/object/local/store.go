package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-match/internal/shared/storage/object"
)

// Store keeps staged uploads under a directory on local disk.
type Store struct {
	root string
	now  func() time.Time
}

// New returns a Store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{root: dir, now: time.Now}
}

// Save streams r into a temporary file and renames it into place, so a
// reader never observes a partially written object.
func (s *Store) Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (object.Stored, error) {
	if err := ctx.Err(); err != nil {
		return object.Stored{}, err
	}
	key, err := object.NewKey(ownerID, fileName, s.now())
	if err != nil {
		return object.Stored{}, err
	}
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return object.Stored{}, fmt.Errorf("create owner dir: %w", err)
	}

	body, err := object.Sniff(r)
	if err != nil {
		return object.Stored{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return object.Stored{}, fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, body); err != nil {
		return object.Stored{}, fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return object.Stored{}, fmt.Errorf("close %s: %w", key, err)
	}
	if err := ctx.Err(); err != nil {
		return object.Stored{}, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return object.Stored{}, fmt.Errorf("commit %s: %w", key, err)
	}
	committed = true

	return object.Stored{Key: key, Size: body.N, ContentType: body.ContentType}, nil
}

// Open returns the stored file.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, object.ErrNotFound
	}
	return f, err
}

// Delete removes the stored file. Owner directories are left in place so a
// concurrent Save for the same owner never loses its parent directory.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return object.ErrNotFound
		}
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

var _ object.Store = (*Store)(nil)
