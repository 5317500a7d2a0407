package fs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"clubsheet/internal/blob"
)

func TestFilesystemStorePutGetList(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	info, err := s.Put(ctx, "club/20240101/Income.csv", strings.NewReader("id,date\n"), blob.PutOptions{ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 8 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "club/20240101/Income.csv", strings.NewReader(""), blob.PutOptions{}); !errors.Is(err, blob.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	got, rc, err := s.Get(ctx, "club/20240101/Income.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "id,date\n" || got.ContentType != "text/csv" {
		t.Fatalf("unexpected blob %q %+v", b, got)
	}
	list, err := s.List(ctx, "club/")
	if err != nil || len(list) != 1 || list[0].Key != "club/20240101/Income.csv" {
		t.Fatalf("unexpected list %+v (%v)", list, err)
	}
}

func TestFilesystemStoreRejectsTraversalAndMissing(t *testing.T) {
	ctx := context.Background()
	s, _ := New(t.TempDir())
	for _, key := range []string{"", "../escape", "/abs", "x.meta"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), blob.PutOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
	if _, err := s.Head(ctx, "missing"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ok, err := s.Delete(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected missing delete to be a no-op, got %v %v", ok, err)
	}
}
