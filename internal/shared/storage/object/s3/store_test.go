package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resume-match/internal/shared/storage/object"
)

type fakeS3 struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = body
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(body)))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestSanitizeMetadata(t *testing.T) {
	if got := sanitizeMetadata("Résumé final.pdf"); got != "R_sum_ final.pdf" {
		t.Fatalf("unexpected metadata value %q", got)
	}
	if got := sanitizeMetadata(strings.Repeat("a", 300)); len(got) != 256 {
		t.Fatalf("expected truncation to 256, got %d", len(got))
	}
}

func TestSaveOpenDeleteWithPrefix(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := newWithClient(fake, "bucket", "uploads/", "")

	stored, err := store.Save(ctx, "user-1", "cv.pdf", strings.NewReader("%PDF-1.7 body"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.HasPrefix(stored.Key, "uploads/") {
		t.Fatalf("returned key should not include the bucket prefix: %q", stored.Key)
	}
	if _, ok := fake.objects["uploads/"+stored.Key]; !ok {
		t.Fatalf("expected object under prefix, have %v", fake.objects)
	}
	if fake.puts[0].ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 encryption without a KMS key")
	}
	if stored.Size != int64(len("%PDF-1.7 body")) || aws.ToInt64(fake.puts[0].ContentLength) != stored.Size {
		t.Fatalf("unexpected size %d", stored.Size)
	}
	if fake.puts[0].Metadata["original-name"] != "cv.pdf" {
		t.Fatalf("expected original name metadata, got %v", fake.puts[0].Metadata)
	}

	rc, err := store.Open(ctx, stored.Key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rc.Close()

	if err := store.Delete(ctx, stored.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, stored.Key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveUsesKMSKey(t *testing.T) {
	fake := newFakeS3()
	store := newWithClient(fake, "bucket", "", "kms-123")
	if _, err := store.Save(context.Background(), "user-1", "cv.docx", strings.NewReader("PK")); err != nil {
		t.Fatalf("save: %v", err)
	}
	put := fake.puts[0]
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(put.SSEKMSKeyId) != "kms-123" {
		t.Fatalf("expected KMS encryption, got %v %v", put.ServerSideEncryption, aws.ToString(put.SSEKMSKeyId))
	}
}
