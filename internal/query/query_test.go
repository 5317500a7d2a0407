package query

import (
	"context"
	"errors"
	"testing"

	"clubsheet/internal/infra/sheet/memory"
	"clubsheet/internal/sheet"
	"clubsheet/internal/table"
	"clubsheet/pkg/domain"
)

func member(name string, owed int64, officer, active bool) domain.Member {
	return domain.Member{
		Name:            domain.Ptr(domain.NewString(name)),
		DateJoined:      domain.Ptr(domain.DateFromMillis(0)),
		AmountOwed:      domain.Ptr(domain.NewInt(owed)),
		Email:           domain.Ptr(domain.NewString(name + "@club.test")),
		Performing:      domain.Ptr(domain.False),
		Active:          domain.Ptr(domain.NewBool(active)),
		Officer:         domain.Ptr(domain.NewBool(officer)),
		CurrentDuesPaid: domain.Ptr(domain.False),
		NotifyPoll:      domain.Ptr(domain.False),
		SendReceipt:     domain.Ptr(domain.False),
	}
}

func seed(t *testing.T) sheet.Workbook {
	t.Helper()
	ctx := context.Background()
	wb := memory.New()
	for _, tbl := range domain.Tables() {
		if _, err := table.Ensure(ctx, wb, tbl); err != nil {
			t.Fatalf("ensure %s: %v", tbl, err)
		}
	}
	g, _ := table.Open(ctx, wb, domain.TableMember)
	if _, err := table.Append(ctx, g, []domain.Member{
		member("ann", 0, false, true),
		member("bob", 1250, true, true),
		member("cy", 400, false, false),
	}); err != nil {
		t.Fatalf("append members: %v", err)
	}
	q, _ := domain.NewQuarter(domain.Fall, 2024)
	info := domain.ClubInfo{
		MemberFee:            domain.NewInt(3000),
		OfficerFee:           domain.NewInt(2000),
		DaysUntilFeeRequired: domain.NewInt(14),
		CurrentQuarter:       q,
	}
	ci, _ := table.Open(ctx, wb, domain.TableClubInfo)
	if err := table.SetSingleton(ctx, ci, info.Row()); err != nil {
		t.Fatalf("club info: %v", err)
	}
	return wb
}

func TestClubInfoRequiresSingleRow(t *testing.T) {
	ctx := context.Background()
	wb := seed(t)
	info, err := ClubInfo(ctx, wb)
	if err != nil {
		t.Fatalf("club info: %v", err)
	}
	if info.CurrentQuarter.DateString() != "Fall 2024" {
		t.Fatalf("unexpected quarter %s", info.CurrentQuarter.DateString())
	}
	empty := memory.New()
	if _, err := table.Ensure(ctx, empty, domain.TableClubInfo); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := ClubInfo(ctx, empty); !errors.Is(err, domain.ErrAssertion) {
		t.Fatalf("expected assertion on empty club info, got %v", err)
	}
}

func TestDuesAndAmountOwed(t *testing.T) {
	ctx := context.Background()
	wb := seed(t)
	dues, err := DuesValues(ctx, wb, "bob", "ann")
	if err != nil {
		t.Fatalf("dues: %v", err)
	}
	if dues[0].Int() != 2000 || dues[1].Int() != 3000 {
		t.Fatalf("expected officer 2000 and member 3000, got %v", dues)
	}
	owed, err := AmountOwed(ctx, wb, "cy", "bob")
	if err != nil {
		t.Fatalf("owed: %v", err)
	}
	if owed[0].Int() != 400 || owed[1].Int() != 1250 {
		t.Fatalf("unexpected owed %v", owed)
	}
	if _, err := AmountOwed(ctx, wb, "zed"); !errors.Is(err, domain.ErrNoMatchFound) {
		t.Fatalf("expected no match, got %v", err)
	}
}

func TestIDLookups(t *testing.T) {
	ctx := context.Background()
	wb := seed(t)
	ids, err := MemberIDs(ctx, wb, "cy", "ann")
	if err != nil {
		t.Fatalf("member ids: %v", err)
	}
	if ids[0].Int() != 2 || ids[1].Int() != 0 {
		t.Fatalf("unexpected ids %v", ids)
	}
	all, err := AllMemberIDs(ctx, wb)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 ids, got %v (%v)", all, err)
	}
	if _, err := PaymentTypeIDs(ctx, wb, "venmo"); !errors.Is(err, domain.ErrNoMatchFound) {
		t.Fatalf("expected no match on empty payment types, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	ctx := context.Background()
	wb := seed(t)
	rows, err := Filter(ctx, wb, domain.TableMember, `row.active AND row.amountOwed > 0`)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(rows) != 1 || rows[0][1] != "bob" {
		t.Fatalf("expected only bob, got %v", rows)
	}
	rows, err = Filter(ctx, wb, domain.TableMember, `row.name = "ann" OR row.name.startsWith("c")`)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected ann and cy, got %v", rows)
	}
	rg, _ := table.Open(ctx, wb, domain.TableRecipient)
	if _, err := table.Append(ctx, rg, []domain.Recipient{
		{Name: domain.Ptr(domain.NewString("Tom AND Jerry"))},
		{Name: domain.Ptr(domain.NewString("a = b"))},
	}); err != nil {
		t.Fatalf("append recipients: %v", err)
	}
	rows, err = Filter(ctx, wb, domain.TableRecipient, `row.name == "Tom AND Jerry" OR row.name = 'a = b'`)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected both quoted names to match, got %v", rows)
	}
	if _, err := Filter(ctx, wb, domain.TableMember, `row.amountOwed + 1`); !errors.Is(err, domain.ErrIllegalArgument) {
		t.Fatalf("expected non-bool filter rejected, got %v", err)
	}
	if _, err := Filter(ctx, wb, domain.TableMember, `row.(`); !errors.Is(err, domain.ErrIllegalArgument) {
		t.Fatalf("expected syntax error rejected, got %v", err)
	}
}

func TestSanitizeSkipsQuotedLiterals(t *testing.T) {
	cases := map[string]string{
		`row.a AND row.b OR row.c = 1`:    `row.a && row.b || row.c == 1`,
		`row.name == "Tom AND Jerry"`:     `row.name == "Tom AND Jerry"`,
		`row.d = 'x = y' AND row.e`:       `row.d == 'x = y' && row.e`,
		`row.n == "say \"OR\" " OR row.m`: `row.n == "say \"OR\" " || row.m`,
		`row.n == "unterminated AND`:      `row.n == "unterminated AND`,
	}
	for in, want := range cases {
		if got := sanitize(in); got != want {
			t.Fatalf("sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDuesRequired(t *testing.T) {
	ctx := context.Background()
	wb := seed(t)
	info, err := ClubInfo(ctx, wb)
	if err != nil {
		t.Fatalf("club info: %v", err)
	}
	info.DaysUntilFeeRequired = domain.NewInt(2)
	ci, _ := table.Open(ctx, wb, domain.TableClubInfo)
	if err := table.SetSingleton(ctx, ci, info.Row()); err != nil {
		t.Fatalf("club info: %v", err)
	}
	g, _ := table.Open(ctx, wb, domain.TableAttendance)
	q := info.CurrentQuarter
	day := func(d int64) *domain.DateValue { return domain.Ptr(domain.DateFromMillis(d * 86_400_000)) }
	if _, err := table.Append(ctx, g, []domain.Attendance{
		{Date: day(1), MemberIDs: domain.Ptr(domain.NewIntList(0, 1, 2)), QuarterID: &q},
		{Date: day(2), MemberIDs: domain.Ptr(domain.NewIntList(0, 2)), QuarterID: &q},
		{Date: day(2), MemberIDs: domain.Ptr(domain.NewIntList(1)), QuarterID: &q},
		{Date: day(3), MemberIDs: domain.Ptr(domain.NewIntList(1)), QuarterID: domain.Ptr(q.Next())},
	}); err != nil {
		t.Fatalf("append attendance: %v", err)
	}
	days, err := AttendanceDays(ctx, wb, q)
	if err != nil {
		t.Fatalf("attendance days: %v", err)
	}
	if days[0] != 2 || days[1] != 2 || days[2] != 2 {
		t.Fatalf("unexpected day counts %v", days)
	}
	owing, err := DuesRequired(ctx, wb)
	if err != nil {
		t.Fatalf("dues required: %v", err)
	}
	if len(owing) != 2 || owing[0].Name.String() != "ann" || owing[1].Name.String() != "bob" {
		t.Fatalf("expected active unpaid ann and bob, got %+v", owing)
	}
}
