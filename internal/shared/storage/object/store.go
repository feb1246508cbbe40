package object

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"resume-match/internal/shared/util"
)

// ErrNotFound is returned by Open and Delete when the key does not exist.
var ErrNotFound = errors.New("object not found")

// Stored describes an object written by Save.
type Stored struct {
	Key         string
	Size        int64
	ContentType string
}

// Store stages uploaded files. Keys are opaque to callers.
type Store interface {
	Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (Stored, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds a collision-resistant key for an upload:
// <hashed owner>/<unix millis>-<random>_<sanitized name>.
func NewKey(ownerID, fileName string, now time.Time) (string, error) {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	name := fmt.Sprintf("%d-%s_%s", now.UTC().UnixMilli(), randomSuffix(), sanitized)
	return path.Join(util.OwnerPrefix(ownerID), name), nil
}

func randomSuffix() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
