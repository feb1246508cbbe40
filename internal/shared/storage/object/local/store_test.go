package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"resume-match/internal/shared/storage/object"
)

func TestSaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	payload := []byte("%PDF-1.4 fake resume body")
	stored, err := store.Save(ctx, "user-1", "resume.pdf", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if stored.Size != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), stored.Size)
	}
	if stored.ContentType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", stored.ContentType)
	}
	if !strings.HasSuffix(stored.Key, "_resume.pdf") {
		t.Fatalf("unexpected key %q", stored.Key)
	}

	rc, err := store.Open(ctx, stored.Key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, payload) {
		t.Fatalf("unexpected content %q", got)
	}

	if err := store.Delete(ctx, stored.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, stored.Key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, stored.Key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	store := New(t.TempDir())
	for _, key := range []string{"../outside", "/etc/passwd", ""} {
		if err := store.Delete(context.Background(), key); err == nil || errors.Is(err, object.ErrNotFound) {
			t.Fatalf("expected invalid key error for %q, got %v", key, err)
		}
	}
}

func TestSaveHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := New(t.TempDir())
	if _, err := store.Save(ctx, "user-1", "cv.pdf", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	stored, err := store.Save(context.Background(), "user-1", "cv.docx", strings.NewReader("PK\x03\x04 body"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	ownerDir := filepath.Join(dir, filepath.Dir(filepath.FromSlash(stored.Key)))
	entries, err := os.ReadDir(ownerDir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || strings.HasPrefix(entries[0].Name(), ".upload-") {
		t.Fatalf("expected only the committed file, got %v", entries)
	}
}

func TestConcurrentSaveAndDeleteForOneOwner(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	const workers, rounds = 8, 200
	var wg sync.WaitGroup
	errs := make(chan error, workers*rounds)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				stored, err := store.Save(ctx, "owner-1", "cv.pdf", strings.NewReader("%PDF-1.4 body"))
				if err != nil {
					errs <- err
					continue
				}
				if err := store.Delete(ctx, stored.Key); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	var failed []error
	for err := range errs {
		failed = append(failed, err)
	}
	if len(failed) > 0 {
		t.Fatalf("%d of %d save/delete pairs failed; first: %v", len(failed), workers*rounds, failed[0])
	}
}
