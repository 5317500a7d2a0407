package views

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"clubsheet/internal/query"
	"clubsheet/internal/sheet"
	"clubsheet/pkg/domain"
)

const unreconciled = domain.Unreconciled

const venmo = "venmo"

func paymentTypeNames(ctx context.Context, wb sheet.Workbook) (map[int64]string, error) {
	types, err := query.PaymentTypes(ctx, wb)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(types))
	for _, p := range types {
		out[p.ID.Int()] = title(p.Name.String())
	}
	return out, nil
}

func recipientNames(ctx context.Context, wb sheet.Workbook) (map[int64]string, error) {
	rs, err := query.Recipients(ctx, wb)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(rs))
	for _, r := range rs {
		out[r.ID.Int()] = r.Name.String()
	}
	return out, nil
}

func venmoID(ctx context.Context, wb sheet.Workbook) (int64, error) {
	ids, err := query.PaymentTypeIDs(ctx, wb, venmo)
	if errors.Is(err, domain.ErrNoMatchFound) {
		return -1, nil
	}
	if err != nil {
		return 0, err
	}
	return ids[0].Int(), nil
}

func buildAccountInfo(ctx context.Context, wb sheet.Workbook) ([][]string, error) {
	info, err := query.ClubInfo(ctx, wb)
	if err != nil {
		return nil, err
	}
	venmoType, err := venmoID(ctx, wb)
	if err != nil {
		return nil, err
	}
	incomes, err := query.Incomes(ctx, wb)
	if err != nil {
		return nil, err
	}
	expenses, err := query.Expenses(ctx, wb)
	if err != nil {
		return nil, err
	}
	var bank, venmoBal, onHand int64
	add := func(amount, paymentType, statement int64) {
		switch {
		case statement != unreconciled:
			bank += amount
		case paymentType == venmoType:
			venmoBal += amount
		default:
			onHand += amount
		}
	}
	for _, in := range incomes {
		add(in.Amount.Int(), in.PaymentTypeID.Int(), in.StatementID.Int())
	}
	for _, ex := range expenses {
		add(-ex.Amount.Int(), ex.PaymentTypeID.Int(), ex.StatementID.Int())
	}
	return [][]string{{
		info.CurrentQuarter.DateString(),
		money(bank + venmoBal + onHand),
		money(bank),
		money(venmoBal),
		money(onHand),
	}}, nil
}

func buildMembers(ctx context.Context, wb sheet.Workbook) ([][]string, error) {
	info, err := query.ClubInfo(ctx, wb)
	if err != nil {
		return nil, err
	}
	members, err := query.Members(ctx, wb)
	if err != nil {
		return nil, err
	}
	days, err := query.AttendanceDays(ctx, wb, info.CurrentQuarter)
	if err != nil {
		return nil, err
	}
	var active, inactive []domain.Member
	for _, m := range members {
		if m.Active.Bool() {
			active = append(active, m)
		} else {
			inactive = append(inactive, m)
		}
	}
	byName := func(a, b domain.Member) int {
		return strings.Compare(strings.ToLower(a.Name.String()), strings.ToLower(b.Name.String()))
	}
	slices.SortStableFunc(active, func(a, b domain.Member) int {
		if ya, yb := a.DateJoined.Time().Year(), b.DateJoined.Time().Year(); ya != yb {
			return ya - yb
		}
		return byName(a, b)
	})
	slices.SortStableFunc(inactive, byName)
	rows := make([][]string, 0, len(members))
	for _, m := range append(active, inactive...) {
		rows = append(rows, []string{
			title(m.Name.String()),
			m.DateJoined.DateString(),
			money(m.AmountOwed.Int()),
			yesNo(m.CurrentDuesPaid.Bool()),
			strconv.Itoa(days[m.ID.Int()]),
		})
	}
	return rows, nil
}

// txn is one income or expense row of a transaction view.
type txn struct {
	date        domain.DateValue
	amount      int64
	description string
	recipient   string
	paymentType string
	inAccount   bool
}

func newestFirst(a, b txn) int {
	switch {
	case a.date.Millis() > b.date.Millis():
		return -1
	case a.date.Millis() < b.date.Millis():
		return 1
	default:
		return 0
	}
}

func incomeTxns(ctx context.Context, wb sheet.Workbook, types map[int64]string) ([]txn, error) {
	incomes, err := query.Incomes(ctx, wb)
	if err != nil {
		return nil, err
	}
	out := make([]txn, len(incomes))
	for i, in := range incomes {
		out[i] = txn{
			date:        *in.Date,
			amount:      in.Amount.Int(),
			description: in.Description.String(),
			paymentType: types[in.PaymentTypeID.Int()],
			inAccount:   in.StatementID.Int() != unreconciled,
		}
	}
	return out, nil
}

func expenseTxns(ctx context.Context, wb sheet.Workbook, types, recipients map[int64]string) ([]txn, error) {
	expenses, err := query.Expenses(ctx, wb)
	if err != nil {
		return nil, err
	}
	out := make([]txn, len(expenses))
	for i, ex := range expenses {
		out[i] = txn{
			date:        *ex.Date,
			amount:      ex.Amount.Int(),
			description: ex.Description.String(),
			recipient:   recipients[ex.RecipientID.Int()],
			paymentType: types[ex.PaymentTypeID.Int()],
			inAccount:   ex.StatementID.Int() != unreconciled,
		}
	}
	return out, nil
}

func buildIncomes(ctx context.Context, wb sheet.Workbook) ([][]string, error) {
	types, err := paymentTypeNames(ctx, wb)
	if err != nil {
		return nil, err
	}
	txns, err := incomeTxns(ctx, wb, types)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(txns, newestFirst)
	rows := make([][]string, len(txns))
	for i, t := range txns {
		rows[i] = []string{t.date.DateString(), money(t.amount), t.description, t.paymentType, yesNo(t.inAccount)}
	}
	return rows, nil
}

func buildExpenses(ctx context.Context, wb sheet.Workbook) ([][]string, error) {
	types, err := paymentTypeNames(ctx, wb)
	if err != nil {
		return nil, err
	}
	recipients, err := recipientNames(ctx, wb)
	if err != nil {
		return nil, err
	}
	txns, err := expenseTxns(ctx, wb, types, recipients)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(txns, newestFirst)
	return txnRows(txns), nil
}

func txnRows(txns []txn) [][]string {
	rows := make([][]string, len(txns))
	for i, t := range txns {
		rows[i] = []string{t.date.DateString(), money(t.amount), t.description, t.recipient, t.paymentType, yesNo(t.inAccount)}
	}
	return rows
}

func buildAllTransactions(ctx context.Context, wb sheet.Workbook) ([][]string, error) {
	types, err := paymentTypeNames(ctx, wb)
	if err != nil {
		return nil, err
	}
	recipients, err := recipientNames(ctx, wb)
	if err != nil {
		return nil, err
	}
	incomes, err := incomeTxns(ctx, wb, types)
	if err != nil {
		return nil, err
	}
	expenses, err := expenseTxns(ctx, wb, types, recipients)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		expenses[i].amount = -expenses[i].amount
	}
	all := append(incomes, expenses...)
	slices.SortStableFunc(all, newestFirst)
	return txnRows(all), nil
}

func buildStatements(ctx context.Context, wb sheet.Workbook) ([][]string, error) {
	statements, err := query.Statements(ctx, wb)
	if err != nil {
		return nil, err
	}
	types, err := paymentTypeNames(ctx, wb)
	if err != nil {
		return nil, err
	}
	incomes, err := query.Incomes(ctx, wb)
	if err != nil {
		return nil, err
	}
	expenses, err := query.Expenses(ctx, wb)
	if err != nil {
		return nil, err
	}
	totals := make(map[int64]int64)
	firstType := make(map[int64]int64)
	contribute := func(statement, amount, paymentType int64) {
		if statement == unreconciled {
			return
		}
		if _, ok := firstType[statement]; !ok {
			firstType[statement] = paymentType
		}
		totals[statement] += amount
	}
	for _, in := range incomes {
		contribute(in.StatementID.Int(), in.Amount.Int(), in.PaymentTypeID.Int())
	}
	for _, ex := range expenses {
		contribute(ex.StatementID.Int(), -ex.Amount.Int(), ex.PaymentTypeID.Int())
	}
	slices.SortStableFunc(statements, func(a, b domain.Statement) int {
		return newestFirst(txn{date: *a.Date}, txn{date: *b.Date})
	})
	rows := make([][]string, len(statements))
	for i, s := range statements {
		id := s.ID.Int()
		paymentType := ""
		if pt, ok := firstType[id]; ok {
			paymentType = types[pt]
		}
		rows[i] = []string{s.Date.DateString(), money(totals[id]), paymentType, yesNo(s.Confirmed.Bool())}
	}
	return rows, nil
}
