package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteWorkbookPersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "club.db")
	wb, err := NewWorkbook(ctx, path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	g, err := wb.CreateSheet(ctx, "PaymentType", []string{"id", "name"})
	if err != nil {
		t.Fatalf("create sheet: %v", err)
	}
	if err := g.SetValues(ctx, 1, 0, [][]string{{"0", "cash"}, {"1", "venmo"}, {"2", "check"}}); err != nil {
		t.Fatalf("set values: %v", err)
	}
	if err := g.DeleteRow(ctx, 2); err != nil {
		t.Fatalf("delete row: %v", err)
	}
	if _, err := wb.CreateSheet(ctx, "Account Info", []string{"Quarter", "On Hand"}); err != nil {
		t.Fatalf("create view sheet: %v", err)
	}
	if err := wb.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := NewWorkbook(ctx, path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	names, _ := reloaded.ListSheets(ctx)
	if len(names) != 2 || names[0] != "PaymentType" || names[1] != "Account Info" {
		t.Fatalf("expected sheets in creation order, got %v", names)
	}
	rg, err := reloaded.Sheet(ctx, "PaymentType")
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	vals, _ := rg.Values(ctx)
	if len(vals) != 3 || vals[1][1] != "cash" || vals[2][1] != "check" {
		t.Fatalf("unexpected reloaded values %v", vals)
	}
}

func TestSQLiteWorkbookMirrorsGridAsTable(t *testing.T) {
	ctx := context.Background()
	wb, err := NewWorkbook(ctx, filepath.Join(t.TempDir(), "club.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = wb.Close() })
	g, err := wb.CreateSheet(ctx, "Attendance", []string{"id", "date", "memberIds", "quarterId"})
	if err != nil {
		t.Fatalf("create sheet: %v", err)
	}
	if err := g.SetValues(ctx, 1, 0, [][]string{{"0", "1700000000000", "1,2", "8095"}}); err != nil {
		t.Fatalf("set values: %v", err)
	}
	var members string
	if err := wb.DB().QueryRow(`SELECT member_ids FROM sheet_attendance WHERE row_idx = 1`).Scan(&members); err != nil {
		t.Fatalf("query mirrored table: %v", err)
	}
	if members != "1,2" {
		t.Fatalf("expected member_ids 1,2, got %q", members)
	}
	if wb.Path() == "" || wb.Driver() != "sqlite" {
		t.Fatalf("unexpected path/driver %q %q", wb.Path(), wb.Driver())
	}
}
