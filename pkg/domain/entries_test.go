package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestEntryToArraySkipsUnsetFields(t *testing.T) {
	patch := Member{ID: Ptr(NewInt(3)), CurrentDuesPaid: Ptr(True)}
	got := ToArray(patch)
	if strings.Join(got, "|") != "3|1" {
		t.Fatalf("expected only set fields, got %v", got)
	}
	if Len(patch) != 11 {
		t.Fatalf("expected member arity 11, got %d", Len(patch))
	}
	if id, ok := EntryID(patch); !ok || id.Int() != 3 {
		t.Fatalf("expected id 3, got %v %v", id, ok)
	}
	if _, ok := EntryID(Member{Name: Ptr(NewString("x"))}); ok {
		t.Fatalf("expected no id")
	}
}

func TestEntryArities(t *testing.T) {
	cases := map[Table]Entry{
		TableMember:      Member{},
		TableIncome:      Income{},
		TableExpense:     Expense{},
		TableRecipient:   Recipient{},
		TablePaymentType: PaymentType{},
		TableStatement:   Statement{},
		TableAttendance:  Attendance{},
	}
	want := map[Table]int{
		TableMember: 11, TableIncome: 6, TableExpense: 7, TableRecipient: 2,
		TablePaymentType: 2, TableStatement: 3, TableAttendance: 4,
	}
	for table, e := range cases {
		if e.Table() != table {
			t.Fatalf("expected %s, got %s", table, e.Table())
		}
		if len(e.Fields()) != want[table] || Len(e) != want[table] {
			t.Fatalf("expected %s arity %d, got %d/%d", table, want[table], len(e.Fields()), Len(e))
		}
	}
}

func TestDecodeAttendance(t *testing.T) {
	a, err := DecodeAttendance([]string{"2", "86400000", "1,5", "8097"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.ID.Int() != 2 || a.MemberIDs.Len() != 2 || a.QuarterID.Quarter() != Spring || a.QuarterID.Year() != 2024 {
		t.Fatalf("unexpected attendance %+v", a)
	}
	if strings.Join(ToArray(a), "|") != "2|86400000|1,5|8097" {
		t.Fatalf("unexpected re-encoding %v", ToArray(a))
	}
	if _, err := DecodeAttendance([]string{"2", "0"}); !errors.Is(err, ErrIllegalArgument) {
		t.Fatalf("expected arity failure, got %v", err)
	}
	if _, err := DecodeMember([]string{"0", "Joe", "0", "0", "a@b.com", "0", "0", "0", "0", "0", "yes"}); !errors.Is(err, ErrIllegalArgument) {
		t.Fatalf("expected bad boolean failure, got %v", err)
	}
}

func TestTableSchema(t *testing.T) {
	if TablePaymentType.String() != "PaymentType" {
		t.Fatalf("unexpected name %q", TablePaymentType)
	}
	tbl, err := ParseTable("Attendance")
	if err != nil || tbl != TableAttendance {
		t.Fatalf("expected Attendance, got %v (%v)", tbl, err)
	}
	if _, err := ParseTable("Members"); !errors.Is(err, ErrIllegalArgument) {
		t.Fatalf("expected unknown table failure, got %v", err)
	}
	if i, err := TableExpense.ColumnIndex(ColRecipientID); err != nil || i != 5 {
		t.Fatalf("expected recipientId at 5, got %d (%v)", i, err)
	}
	if _, err := TableExpense.ColumnIndex("memo"); !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("expected field not found, got %v", err)
	}
	if TableClubInfo.HasID() || !TableMember.HasID() {
		t.Fatalf("unexpected HasID")
	}
	if KindOf(NoMatchFoundf("x")) != KindNoMatchFound || KindOf(errors.New("io")) != KindUnknown {
		t.Fatalf("unexpected kinds")
	}
}

func TestClubInfoRow(t *testing.T) {
	q, _ := NewQuarter(Fall, 2023)
	info := ClubInfo{MemberFee: NewInt(2000), OfficerFee: NewInt(1000), DaysUntilFeeRequired: NewInt(3), CurrentQuarter: q}
	back, err := DecodeClubInfo(info.Row())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back != info {
		t.Fatalf("expected %+v, got %+v", info, back)
	}
	if info.DuesFor(true).Int() != 1000 || info.DuesFor(false).Int() != 2000 {
		t.Fatalf("unexpected dues")
	}
}
