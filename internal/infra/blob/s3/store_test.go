package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"clubsheet/internal/blob"
)

func TestMockedStoreFlow(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests()
	info, err := store.Put(ctx, "club/1/Member.csv", bytes.NewReader([]byte("id,name\n")), blob.PutOptions{ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "club/1/Member.csv" || info.Size != 8 {
		t.Fatalf("unexpected info %#v", info)
	}
	if _, err := store.Put(ctx, "club/1/Member.csv", bytes.NewReader([]byte("x")), blob.PutOptions{}); !errors.Is(err, blob.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	_, rc, err := store.Get(ctx, "club/1/Member.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "id,name\n" {
		t.Fatalf("get mismatch: %q", data)
	}
	list, err := store.List(ctx, "club/")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %+v", err, list)
	}
	if ok, err := store.Delete(ctx, "club/1/Member.csv"); !ok || err != nil {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, _ := store.Delete(ctx, "club/1/Member.csv"); ok {
		t.Fatalf("expected second delete to report missing")
	}
}

func TestMockedStoreMissingKey(t *testing.T) {
	store := NewMockForTests()
	if _, err := store.Head(context.Background(), "nope"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from head, got %v", err)
	}
	if store.Driver() != blob.DriverS3 || store.Bucket() != "mock-bucket" {
		t.Fatalf("unexpected driver/bucket")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
	s, err := New(context.Background(), Config{Bucket: "archives", Region: "eu-west-1", AccessKeyID: "AKIA", SecretAccessKey: "x", Endpoint: "http://localhost:9000", PathStyle: true})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Bucket() != "archives" {
		t.Fatalf("unexpected bucket %s", s.Bucket())
	}
}

func TestDecodeAWSChunked(t *testing.T) {
	got, ok := decodeAWSChunked([]byte("5;chunk-signature=abc\r\nhello\r\n0\r\nx-amz-checksum-crc32:AAAA\r\n\r\n"))
	if !ok || string(got) != "hello" {
		t.Fatalf("unexpected decode %q %v", got, ok)
	}
	if _, ok := decodeAWSChunked([]byte("zz\r\n")); ok {
		t.Fatalf("expected invalid size rejection")
	}
}
