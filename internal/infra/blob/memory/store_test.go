package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"clubsheet/internal/blob"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	if s.Driver() != blob.DriverMemory {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
	info, err := s.Put(ctx, "archives/1/Member.csv", strings.NewReader("id,name\n"), blob.PutOptions{ContentType: "text/csv", Metadata: map[string]string{"sheet": "Member"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 8 || info.Metadata["sheet"] != "Member" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "archives/1/Member.csv", strings.NewReader("x"), blob.PutOptions{}); !errors.Is(err, blob.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	_, rc, err := s.Get(ctx, "archives/1/Member.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "id,name\n" {
		t.Fatalf("unexpected body %q", body)
	}
	_, _ = s.Put(ctx, "archives/2/Member.csv", strings.NewReader("y"), blob.PutOptions{})
	_, _ = s.Put(ctx, "other/x", strings.NewReader("z"), blob.PutOptions{})
	list, _ := s.List(ctx, "archives/")
	if len(list) != 2 || list[0].Key != "archives/1/Member.csv" {
		t.Fatalf("unexpected list %+v", list)
	}
	if ok, _ := s.Delete(ctx, "archives/1/Member.csv"); !ok {
		t.Fatalf("expected delete to report existing blob")
	}
	if _, err := s.Head(ctx, "archives/1/Member.csv"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
