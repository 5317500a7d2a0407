package sheet

import "testing"

func TestCompareCellsNumericBeforeLexical(t *testing.T) {
	if CompareCells("9", "10") >= 0 {
		t.Fatalf("expected numeric comparison 9 < 10")
	}
	if CompareCells("apple", "banana") >= 0 {
		t.Fatalf("expected lexical comparison")
	}
	if CompareCells("5", "abc") >= 0 || CompareCells("abc", "5") <= 0 {
		t.Fatalf("expected numbers to sort before text")
	}
	if CompareCells("2.50", "2.5") != 0 {
		t.Fatalf("expected numerically equal cells to compare equal")
	}
}

func TestSortRowsMultiKeyStable(t *testing.T) {
	rows := [][]string{
		{"0", "b", "2"},
		{"1", "a", "2"},
		{"2", "b", "1"},
		{"3", "a", "10"},
	}
	SortRows(rows, []SortKey{{Column: 1, Ascending: true}, {Column: 2, Ascending: false}})
	want := []string{"3", "1", "0", "2"}
	for i, id := range want {
		if rows[i][0] != id {
			t.Fatalf("expected row %d to be id %s, got %v", i, id, rows)
		}
	}
}
