package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorderCountsResults(t *testing.T) {
	r := NewPrometheusRecorder()
	ctx := context.Background()
	r.Observe(ctx, "add_member", true, 5*time.Millisecond)
	r.Observe(ctx, "add_member", false, time.Millisecond)
	r.Observe(ctx, "add_member", true, time.Millisecond)
	r.Observe(ctx, "", true, time.Millisecond)

	if got := testutil.ToFloat64(r.results.WithLabelValues("add_member", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(r.results.WithLabelValues("add_member", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
	if n := testutil.CollectAndCount(r.durations); n != 1 {
		t.Fatalf("expected one histogram series, got %d", n)
	}
}

func TestPrometheusRecorderWritesTextfile(t *testing.T) {
	r := NewPrometheusRecorder()
	r.Observe(context.Background(), "refresh_all", true, time.Millisecond)
	path := filepath.Join(t.TempDir(), "clubsheet.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(raw), `clubsheet_operations_total{operation="refresh_all",status="success"} 1`) {
		t.Fatalf("unexpected textfile contents:\n%s", raw)
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewJSONTracer(&buf)
	ctx, span := tr.Start(context.Background(), "collect_dues")
	id, ok := SpanID(ctx)
	if !ok || id == "" {
		t.Fatalf("expected span id on context")
	}
	span.End(errors.New("boom"))

	entries := tr.Entries()
	if len(entries) != 1 || entries[0].Status != "error" || entries[0].Error != "boom" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	var decoded TraceEntry
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode span: %v", err)
	}
	if decoded.SpanID != id || decoded.Operation != "collect_dues" {
		t.Fatalf("unexpected encoded span %+v", decoded)
	}
}

func TestNoop(t *testing.T) {
	var n Noop
	n.Observe(context.Background(), "x", true, 0)
	ctx, span := n.Start(context.Background(), "x")
	span.End(nil)
	if _, ok := SpanID(ctx); ok {
		t.Fatalf("expected noop tracer to leave context alone")
	}
}
