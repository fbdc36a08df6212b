package storage

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new disk store: %v", err)
	}
	handle, err := s.Write(ctx, []byte("Hello Webstack!"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if handle == "" {
		t.Fatalf("expected handle")
	}
	got, err := s.Read(ctx, handle)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "Hello Webstack!" {
		t.Fatalf("unexpected content %q", got)
	}
	if err := s.Delete(ctx, handle); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Read(ctx, handle); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound after delete, got %v", err)
	}
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new disk store: %v", err)
	}
	for _, handle := range []string{"", "..", "../etc/passwd", "a/b"} {
		if _, err := s.Read(context.Background(), handle); !errors.Is(err, ErrBlobNotFound) {
			t.Fatalf("handle %q: expected ErrBlobNotFound, got %v", handle, err)
		}
	}
}

func TestMinioStoreRoundTrip(t *testing.T) {
	endpoint := os.Getenv("FILES_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("FILES_TEST_MINIO_ENDPOINT not set")
	}
	s, err := NewMinioStore(endpoint, os.Getenv("FILES_TEST_MINIO_ACCESS_KEY"), os.Getenv("FILES_TEST_MINIO_SECRET_KEY"), "files-manager-test", false)
	if err != nil {
		t.Fatalf("new minio store: %v", err)
	}
	ctx := context.Background()
	key, err := s.Write(ctx, []byte("blob"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := s.Read(ctx, key)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "blob" {
		t.Fatalf("unexpected content %q", got)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
