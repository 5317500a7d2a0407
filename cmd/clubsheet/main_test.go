package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clubsheet/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.FromEnv()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.SQLitePath = filepath.Join(dir, "club.db")
	cfg.Blob.Driver = "fs"
	cfg.Blob.FSRoot = filepath.Join(dir, "archives")
	cfg.SendGrid = config.SendGrid{}
	cfg.MetricsFile = ""
	return cfg
}

func execute(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), cfg, args, &out)
	return out.String(), err
}

func mustExecute(t *testing.T, cfg config.Config, args ...string) string {
	t.Helper()
	out, err := execute(t, cfg, args...)
	if err != nil {
		if strings.Contains(err.Error(), "open sqlite") {
			t.Skipf("sqlite unavailable: %v", err)
		}
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestClubWorkflow(t *testing.T) {
	cfg := testConfig(t)
	out := mustExecute(t, cfg, "init", "--quarter", "spring", "--year", "2024", "--member-fee", "30", "--officer-fee", "15")
	if !strings.Contains(out, "Spring 2024") {
		t.Fatalf("unexpected init output %q", out)
	}
	mustExecute(t, cfg, "member", "add", "ann", "--officer", "--email", "ann@club.test")
	mustExecute(t, cfg, "member", "add", "bob")
	mustExecute(t, cfg, "dues", "collect", "ann,bob", "--payment-type", "venmo")
	mustExecute(t, cfg, "expense", "add", "--amount", "12.50", "--recipient", "Hall", "--description", "rent")

	out = mustExecute(t, cfg, "table", "select", "Income", "amount")
	if !strings.Contains(out, "1500") || !strings.Contains(out, "3000") {
		t.Fatalf("expected dues incomes, got %q", out)
	}
	out = mustExecute(t, cfg, "table", "where", "Member", "row.officer AND row.currentDuesPaid")
	if !strings.Contains(out, "ann") || strings.Contains(out, "bob") {
		t.Fatalf("unexpected filter output %q", out)
	}

	out = mustExecute(t, cfg, "transfer", "create", "--income", "0,1", "--expense", "0")
	if !strings.Contains(out, "statement 0") {
		t.Fatalf("unexpected transfer output %q", out)
	}
	mustExecute(t, cfg, "transfer", "confirm", "0")
	out = mustExecute(t, cfg, "quarter", "next")
	if !strings.Contains(out, "Summer 2024") {
		t.Fatalf("unexpected quarter output %q", out)
	}
}

func TestArchiveCommands(t *testing.T) {
	cfg := testConfig(t)
	mustExecute(t, cfg, "init")
	mustExecute(t, cfg, "member", "add", "ann")
	snapshot := strings.TrimSpace(mustExecute(t, cfg, "archive", "export"))
	if snapshot == "" {
		t.Fatalf("expected snapshot id")
	}
	mustExecute(t, cfg, "member", "remove", "ann")
	out := mustExecute(t, cfg, "archive", "list")
	if strings.TrimSpace(out) != snapshot {
		t.Fatalf("expected %s listed, got %q", snapshot, out)
	}
	mustExecute(t, cfg, "archive", "import", snapshot)
	out = mustExecute(t, cfg, "table", "select", "Member", "name")
	if !strings.Contains(out, "ann") {
		t.Fatalf("expected ann restored, got %q", out)
	}
	out = mustExecute(t, cfg, "archive", "delete", snapshot)
	if !strings.Contains(out, "deleted") {
		t.Fatalf("unexpected delete output %q", out)
	}
	if out := mustExecute(t, cfg, "archive", "list"); strings.TrimSpace(out) != "" {
		t.Fatalf("expected no snapshots after delete, got %q", out)
	}
	if _, err := execute(t, cfg, "archive", "delete", snapshot); err == nil {
		t.Fatalf("expected deleting a missing snapshot to fail")
	}
}

func TestMemberAndNameCommands(t *testing.T) {
	cfg := testConfig(t)
	mustExecute(t, cfg, "init")
	mustExecute(t, cfg, "member", "add", "ann")
	mustExecute(t, cfg, "member", "add", "annie")
	mustExecute(t, cfg, "member", "status", "ann", "--officer", "--active=false")
	mustExecute(t, cfg, "member", "contact", "ann", "--phone", "555-123-4567", "--carrier", "Verizon", "--send-receipt")
	out := mustExecute(t, cfg, "table", "where", "Member", `row.officer AND !row.active`)
	if !strings.Contains(out, "5551234567@vtext.com") {
		t.Fatalf("expected ann's status and text address, got %q", out)
	}
	if _, err := execute(t, cfg, "member", "status", "ann"); err == nil {
		t.Fatalf("expected status without flags to fail")
	}
	mustExecute(t, cfg, "member", "merge", "ann", "annie")
	out = mustExecute(t, cfg, "table", "select", "Member", "name")
	if strings.Contains(out, "annie") {
		t.Fatalf("expected annie merged away, got %q", out)
	}

	mustExecute(t, cfg, "expense", "add", "--amount", "5", "--recipient", "Hall", "--payment-type", "csh")
	mustExecute(t, cfg, "expense", "add", "--amount", "6", "--recipient", "The Hall")
	mustExecute(t, cfg, "paymenttype", "merge", "cash", "csh")
	mustExecute(t, cfg, "recipient", "merge", "Hall", "The Hall")
	mustExecute(t, cfg, "recipient", "rename", "Hall", "Town Hall")
	mustExecute(t, cfg, "paymenttype", "rename", "cash", "check")
	out = mustExecute(t, cfg, "table", "select", "Recipient", "name")
	if !strings.Contains(out, "Town Hall") || strings.Contains(out, "The Hall") {
		t.Fatalf("unexpected recipients %q", out)
	}
	out = mustExecute(t, cfg, "table", "select", "PaymentType", "name")
	if !strings.Contains(out, "check") || strings.Contains(out, "csh") {
		t.Fatalf("unexpected payment types %q", out)
	}
}

func readMetrics(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(raw)
}

func TestErrorsAndMetricsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsFile = filepath.Join(t.TempDir(), "clubsheet.prom")
	mustExecute(t, cfg, "init")
	if _, err := execute(t, cfg, "member", "rename", "ghost", "casper"); err == nil {
		t.Fatalf("expected rename of unknown member to fail")
	}
	if got := readMetrics(t, cfg.MetricsFile); !strings.Contains(got, `clubsheet_operations_total{operation="rename_member",status="error"} 1`) {
		t.Fatalf("expected failed rename recorded, got:\n%s", got)
	}
	// The failed command must release the database for the next one.
	mustExecute(t, cfg, "member", "add", "ann")
	if _, err := execute(t, cfg, "table", "select", "Nope"); err == nil {
		t.Fatalf("expected unknown table to fail")
	}
	mustExecute(t, cfg, "refresh")
	if got := readMetrics(t, cfg.MetricsFile); !strings.Contains(got, `clubsheet_operations_total{operation="refresh_all",status="success"} 1`) {
		t.Fatalf("unexpected metrics:\n%s", got)
	}
}

func TestParseMoney(t *testing.T) {
	cases := map[string]int64{"30": 3000, "$12.50": 1250, "0.1": 10, "19.999": 2000}
	for in, want := range cases {
		got, err := parseMoney(in)
		if err != nil || got != want {
			t.Fatalf("parseMoney(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	if _, err := parseMoney("ten"); err == nil {
		t.Fatalf("expected error for non-number")
	}
}
