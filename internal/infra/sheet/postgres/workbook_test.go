package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestNewWorkbookWrapsOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) {
		return nil, errors.New("boom")
	})
	defer restore()
	_, err := NewWorkbook(context.Background(), "")
	if err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
}

func TestNewWorkbookAgainstLiveDatabase(t *testing.T) {
	dsn := os.Getenv("CLUBSHEET_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CLUBSHEET_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	wb, err := NewWorkbook(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = wb.Close() })
	g, err := wb.CreateSheet(ctx, "Recipient", []string{"id", "name"})
	if err != nil {
		t.Fatalf("create sheet: %v", err)
	}
	if err := g.ReplaceBody(ctx, [][]string{{"0", "venue"}}); err != nil {
		t.Fatalf("replace body: %v", err)
	}
	reloaded, err := NewWorkbook(ctx, dsn)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	rg, err := reloaded.Sheet(ctx, "Recipient")
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	vals, _ := rg.Values(ctx)
	if len(vals) != 2 || vals[1][1] != "venue" {
		t.Fatalf("unexpected values %v", vals)
	}
}
