package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"resume-match/internal/shared/storage/object"
)

// bucket is the subset of *storage.BucketHandle the store needs.
type bucket interface {
	NewWriter(ctx context.Context, name, contentType string) io.WriteCloser
	NewReader(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

type handle struct {
	b *storage.BucketHandle
}

func (h handle) NewWriter(ctx context.Context, name, contentType string) io.WriteCloser {
	w := h.b.Object(name).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	return w
}

func (h handle) NewReader(ctx context.Context, name string) (io.ReadCloser, error) {
	return h.b.Object(name).NewReader(ctx)
}

func (h handle) Delete(ctx context.Context, name string) error {
	return h.b.Object(name).Delete(ctx)
}

// Store implements object.Store on Google Cloud Storage.
type Store struct {
	client *storage.Client
	bucket bucket
	name   string
	prefix string
	now    func() time.Time
}

// New creates a GCS-backed object store using application default credentials.
func New(ctx context.Context, bucketName, prefix string) (*Store, error) {
	if strings.TrimSpace(bucketName) == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	s := newWithBucket(handle{b: client.Bucket(bucketName)}, bucketName, prefix)
	s.client = client
	return s, nil
}

func newWithBucket(b bucket, name, prefix string) *Store {
	return &Store{
		bucket: b,
		name:   name,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
		now:    time.Now,
	}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Save uploads the reader under the owner's namespace.
func (s *Store) Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (object.Stored, error) {
	if err := ctx.Err(); err != nil {
		return object.Stored{}, err
	}
	key, err := object.NewKey(ownerID, fileName, s.now())
	if err != nil {
		return object.Stored{}, err
	}
	objectName := s.objectName(key)

	body, err := object.Sniff(r)
	if err != nil {
		return object.Stored{}, err
	}

	w := s.bucket.NewWriter(ctx, objectName, body.ContentType)
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return object.Stored{}, fmt.Errorf("gcs write bucket=%s object=%s: %w", s.name, objectName, err)
	}
	if err := w.Close(); err != nil {
		return object.Stored{}, fmt.Errorf("gcs finalize bucket=%s object=%s: %w", s.name, objectName, err)
	}
	return object.Stored{Key: key, Size: body.N, ContentType: body.ContentType}, nil
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	objectName := s.objectName(key)
	rc, err := s.bucket.NewReader(ctx, objectName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, object.ErrNotFound
		}
		return nil, fmt.Errorf("gcs read bucket=%s object=%s: %w", s.name, objectName, err)
	}
	return rc, nil
}

// Delete removes a stored object.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	objectName := s.objectName(key)
	if err := s.bucket.Delete(ctx, objectName); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return object.ErrNotFound
		}
		return fmt.Errorf("gcs delete bucket=%s object=%s: %w", s.name, objectName, err)
	}
	return nil
}

func (s *Store) objectName(key string) string {
	return object.JoinPrefix(s.prefix, key)
}

var _ object.Store = (*Store)(nil)
