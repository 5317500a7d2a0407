// Package views rebuilds the read-only report grids derived from the club
// tables. Each view is recomputed wholesale by the refresh graph whenever
// one of the tables it reads is dirty.
package views

import (
	"context"
	"fmt"
	"strconv"

	"go.alis.build/alog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clubsheet/internal/refresh"
	"clubsheet/internal/sheet"
	"clubsheet/pkg/domain"
)

// View names double as grid names.
const (
	AccountInfo     = "Account Info"
	Members         = "Members"
	Incomes         = "Incomes"
	Expenses        = "Expenses"
	AllTransactions = "All Transactions"
	Statements      = "Statements"
)

// View is one derived grid.
type View struct {
	Name   string
	Header []string
	Deps   []domain.Table
	build  func(ctx context.Context, wb sheet.Workbook) ([][]string, error)
}

// All returns every view in refresh registration order.
func All() []View {
	return []View{
		{
			Name:   AccountInfo,
			Header: []string{"Quarter", "Total", "Bank", "Venmo", "On Hand"},
			Deps:   []domain.Table{domain.TableIncome, domain.TableExpense, domain.TablePaymentType, domain.TableClubInfo},
			build:  buildAccountInfo,
		},
		{
			Name:   Members,
			Header: []string{"Name", "Date Joined", "Amount Owed", "Dues Paid", "Attendance"},
			Deps:   []domain.Table{domain.TableMember, domain.TableAttendance, domain.TableClubInfo},
			build:  buildMembers,
		},
		{
			Name:   Incomes,
			Header: []string{"Date", "Amount", "Description", "Payment Type", "In Account"},
			Deps:   []domain.Table{domain.TableIncome, domain.TablePaymentType},
			build:  buildIncomes,
		},
		{
			Name:   Expenses,
			Header: []string{"Date", "Amount", "Description", "Recipient", "Payment Type", "In Account"},
			Deps:   []domain.Table{domain.TableExpense, domain.TablePaymentType, domain.TableRecipient},
			build:  buildExpenses,
		},
		{
			Name:   AllTransactions,
			Header: []string{"Date", "Amount", "Description", "Recipient", "Payment Type", "In Account"},
			Deps:   []domain.Table{domain.TableIncome, domain.TableExpense, domain.TablePaymentType, domain.TableRecipient},
			build:  buildAllTransactions,
		},
		{
			Name:   Statements,
			Header: []string{"Date", "Amount", "Payment Type", "Confirmed"},
			Deps:   []domain.Table{domain.TableStatement, domain.TableIncome, domain.TableExpense, domain.TablePaymentType},
			build:  buildStatements,
		},
	}
}

// Ensure creates every view grid that is missing.
func Ensure(ctx context.Context, wb sheet.Workbook) error {
	for _, v := range All() {
		if _, err := wb.CreateSheet(ctx, v.Name, v.Header); err != nil {
			return fmt.Errorf("create view %s: %w", v.Name, err)
		}
	}
	return nil
}

// Rebuild recomputes v and replaces its grid body.
func Rebuild(ctx context.Context, wb sheet.Workbook, v View) error {
	rows, err := v.build(ctx, wb)
	if err != nil {
		return err
	}
	g, err := wb.CreateSheet(ctx, v.Name, v.Header)
	if err != nil {
		return fmt.Errorf("open view %s: %w", v.Name, err)
	}
	if err := g.ReplaceBody(ctx, rows); err != nil {
		return fmt.Errorf("write view %s: %w", v.Name, err)
	}
	alog.Debugf(ctx, "rebuilt view %s with %d rows", v.Name, len(rows))
	return nil
}

// Register adds one refresh routine per view, bound to wb.
func Register(g *refresh.Graph, wb sheet.Workbook) error {
	for _, v := range All() {
		r := refresh.Routine{
			Name: v.Name,
			Run:  func(ctx context.Context) error { return Rebuild(ctx, wb, v) },
		}
		if err := g.Register(r, v.Deps...); err != nil {
			return err
		}
	}
	return nil
}

// title capitalizes display names. Casers keep state, so each call gets its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// money renders cents as a decimal amount.
func money(cents int64) string {
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
