package sqlstore

import "testing"

func TestTableAndColumnNames(t *testing.T) {
	cases := map[string]string{
		"PaymentType":      "sheet_payment_type",
		"Account Info":     "sheet_account_info",
		"All Transactions": "sheet_all_transactions",
	}
	for in, want := range cases {
		got, err := TableName(in)
		if err != nil || got != want {
			t.Fatalf("expected %s for %q, got %s (%v)", want, in, got, err)
		}
	}
	cols, err := ColumnNames([]string{"id", "dateJoined", "Amount Owed"})
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	if cols[1] != "date_joined" || cols[2] != "amount_owed" {
		t.Fatalf("unexpected columns %v", cols)
	}
	if _, err := ColumnNames([]string{"dateJoined", "date_joined"}); err == nil {
		t.Fatalf("expected collision error")
	}
	if _, err := ColumnNames([]string{"row_idx"}); err == nil {
		t.Fatalf("expected reserved column error")
	}
	if _, err := TableName("Drop;Table"); err == nil {
		t.Fatalf("expected invalid identifier error")
	}
}

func TestDialectPlaceholders(t *testing.T) {
	if got := Postgres.params(1, 3); got[0] != "$1" || got[2] != "$3" {
		t.Fatalf("unexpected postgres params %v", got)
	}
	if got := SQLite.params(1, 2); got[0] != "?" || got[1] != "?" {
		t.Fatalf("unexpected sqlite params %v", got)
	}
}
