package gcs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"cloud.google.com/go/storage"

	"resume-match/internal/shared/storage/object"
)

type memWriter struct {
	bytes.Buffer
	onClose func([]byte)
}

func (w *memWriter) Close() error {
	w.onClose(w.Bytes())
	return nil
}

type memBucket struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (b *memBucket) NewWriter(_ context.Context, name, contentType string) io.WriteCloser {
	b.contentTypes[name] = contentType
	return &memWriter{onClose: func(data []byte) {
		b.objects[name] = append([]byte(nil), data...)
	}}
}

func (b *memBucket) NewReader(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := b.objects[name]
	if !ok {
		return nil, storage.ErrObjectNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *memBucket) Delete(_ context.Context, name string) error {
	if _, ok := b.objects[name]; !ok {
		return storage.ErrObjectNotExist
	}
	delete(b.objects, name)
	return nil
}

func TestSaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	mem := newMemBucket()
	store := newWithBucket(mem, "resumes", "/staging/")

	stored, err := store.Save(ctx, "user-1", "cv.pdf", strings.NewReader("%PDF-1.5 content"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	objectName := "staging/" + stored.Key
	if string(mem.objects[objectName]) != "%PDF-1.5 content" {
		t.Fatalf("unexpected stored bytes under %q: %v", objectName, mem.objects)
	}
	if mem.contentTypes[objectName] != "application/pdf" {
		t.Fatalf("unexpected content type %q", mem.contentTypes[objectName])
	}

	rc, err := store.Open(ctx, stored.Key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rc.Close()

	if err := store.Delete(ctx, stored.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, stored.Key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Open(ctx, stored.Key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), " ", ""); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}
