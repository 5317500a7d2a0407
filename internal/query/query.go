// Package query holds the typed reads the club operations and views share.
package query

import (
	"context"

	"clubsheet/internal/sheet"
	"clubsheet/internal/table"
	"clubsheet/pkg/domain"
)

// ClubInfo reads the settings row. The ClubInfo table must hold exactly one.
func ClubInfo(ctx context.Context, wb sheet.Workbook) (domain.ClubInfo, error) {
	rows, err := scan(ctx, wb, domain.TableClubInfo, domain.DecodeClubInfo)
	if err != nil {
		return domain.ClubInfo{}, err
	}
	if len(rows) != 1 {
		return domain.ClubInfo{}, domain.Assertionf("club info has %d rows, want 1", len(rows))
	}
	return rows[0], nil
}

func scan[E any](ctx context.Context, wb sheet.Workbook, t domain.Table, decode func([]string) (E, error)) ([]E, error) {
	g, err := table.Open(ctx, wb, t)
	if err != nil {
		return nil, err
	}
	return table.Scan(ctx, g, decode)
}

// Members decodes every member row.
func Members(ctx context.Context, wb sheet.Workbook) ([]domain.Member, error) {
	return scan(ctx, wb, domain.TableMember, domain.DecodeMember)
}

// Incomes decodes every income row.
func Incomes(ctx context.Context, wb sheet.Workbook) ([]domain.Income, error) {
	return scan(ctx, wb, domain.TableIncome, domain.DecodeIncome)
}

// Expenses decodes every expense row.
func Expenses(ctx context.Context, wb sheet.Workbook) ([]domain.Expense, error) {
	return scan(ctx, wb, domain.TableExpense, domain.DecodeExpense)
}

// Recipients decodes every recipient row.
func Recipients(ctx context.Context, wb sheet.Workbook) ([]domain.Recipient, error) {
	return scan(ctx, wb, domain.TableRecipient, domain.DecodeRecipient)
}

// PaymentTypes decodes every payment type row.
func PaymentTypes(ctx context.Context, wb sheet.Workbook) ([]domain.PaymentType, error) {
	return scan(ctx, wb, domain.TablePaymentType, domain.DecodePaymentType)
}

// Statements decodes every statement row.
func Statements(ctx context.Context, wb sheet.Workbook) ([]domain.Statement, error) {
	return scan(ctx, wb, domain.TableStatement, domain.DecodeStatement)
}

// Attendances decodes every attendance row.
func Attendances(ctx context.Context, wb sheet.Workbook) ([]domain.Attendance, error) {
	return scan(ctx, wb, domain.TableAttendance, domain.DecodeAttendance)
}

// idsByName resolves names against a table's name column.
func idsByName(ctx context.Context, wb sheet.Workbook, t domain.Table, names []string) ([]domain.IntValue, error) {
	g, err := table.Open(ctx, wb, t)
	if err != nil {
		return nil, err
	}
	rows := make([][]domain.Value, len(names))
	for i, n := range names {
		rows[i] = []domain.Value{domain.NewString(n)}
	}
	return table.IDsFromValues(ctx, g, []string{domain.ColName}, rows)
}

// MemberIDs resolves member names to ids, NoMatchFound on the first miss.
func MemberIDs(ctx context.Context, wb sheet.Workbook, names ...string) ([]domain.IntValue, error) {
	return idsByName(ctx, wb, domain.TableMember, names)
}

// RecipientIDs resolves recipient names to ids.
func RecipientIDs(ctx context.Context, wb sheet.Workbook, names ...string) ([]domain.IntValue, error) {
	return idsByName(ctx, wb, domain.TableRecipient, names)
}

// PaymentTypeIDs resolves payment type names to ids.
func PaymentTypeIDs(ctx context.Context, wb sheet.Workbook, names ...string) ([]domain.IntValue, error) {
	return idsByName(ctx, wb, domain.TablePaymentType, names)
}

// AllMemberIDs lists every member id in row order.
func AllMemberIDs(ctx context.Context, wb sheet.Workbook) ([]domain.IntValue, error) {
	g, err := table.Open(ctx, wb, domain.TableMember)
	if err != nil {
		return nil, err
	}
	raw, err := table.Select(ctx, g, domain.ColID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.IntValue, len(raw))
	for i, s := range raw {
		if out[i], err = domain.ParseInt(s); err != nil {
			return nil, domain.Assertionf("member row %d has id %q", i+1, s)
		}
	}
	return out, nil
}

// membersByName indexes members by name; the first row wins on duplicates.
func membersByName(ctx context.Context, wb sheet.Workbook, names []string) ([]domain.Member, error) {
	all, err := Members(ctx, wb)
	if err != nil {
		return nil, err
	}
	index := make(map[string]domain.Member, len(all))
	for _, m := range all {
		if _, ok := index[m.Name.String()]; !ok {
			index[m.Name.String()] = m
		}
	}
	out := make([]domain.Member, len(names))
	for i, n := range names {
		m, ok := index[n]
		if !ok {
			return nil, domain.NoMatchFoundf("no member named %q", n)
		}
		out[i] = m
	}
	return out, nil
}

// MembersByName returns the stored members with the given names, in order.
func MembersByName(ctx context.Context, wb sheet.Workbook, names ...string) ([]domain.Member, error) {
	return membersByName(ctx, wb, names)
}

// AmountOwed returns each named member's outstanding balance in cents.
func AmountOwed(ctx context.Context, wb sheet.Workbook, names ...string) ([]domain.IntValue, error) {
	members, err := membersByName(ctx, wb, names)
	if err != nil {
		return nil, err
	}
	out := make([]domain.IntValue, len(members))
	for i, m := range members {
		out[i] = *m.AmountOwed
	}
	return out, nil
}

// DuesValues returns the fee each named member owes for a quarter: the
// officer fee for officers and the member fee otherwise.
func DuesValues(ctx context.Context, wb sheet.Workbook, names ...string) ([]domain.IntValue, error) {
	info, err := ClubInfo(ctx, wb)
	if err != nil {
		return nil, err
	}
	members, err := membersByName(ctx, wb, names)
	if err != nil {
		return nil, err
	}
	out := make([]domain.IntValue, len(members))
	for i, m := range members {
		out[i] = info.DuesFor(m.Officer.Bool())
	}
	return out, nil
}
