package club

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.alis.build/alog"

	"clubsheet/internal/notify"
	"clubsheet/internal/query"
	"clubsheet/internal/refresh"
	"clubsheet/pkg/domain"
)

// Transaction describes money moving in or out. A zero Date means now.
type Transaction struct {
	Date        time.Time
	AmountCents int64
	Description string
	PaymentType string
	// Recipient is required for expenses and ignored for incomes.
	Recipient string
}

func (s *Service) date(t time.Time) *domain.DateValue {
	if t.IsZero() {
		return s.today()
	}
	return domain.Ptr(domain.NewDate(t))
}

func normalizePaymentType(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// lookupOrAppend resolves a name to an id, appending a new row built by
// create when no row has that name yet.
func lookupOrAppend[E domain.Entry](ctx context.Context, s *Service, log *refresh.Log, name string,
	lookup func(context.Context, string) ([]domain.IntValue, error), create func(string) E) (domain.IntValue, error) {
	if name == "" {
		return domain.IntValue{}, domain.IllegalArgumentf("empty name")
	}
	ids, err := lookup(ctx, name)
	if err == nil {
		return ids[0], nil
	}
	if !errors.Is(err, domain.ErrNoMatchFound) {
		return domain.IntValue{}, err
	}
	ids, err = appendRows(ctx, s, log, create(name))
	if err != nil {
		return domain.IntValue{}, err
	}
	alog.Infof(ctx, "added %s %q with id %s", create(name).Table(), name, ids[0])
	return ids[0], nil
}

func (s *Service) paymentTypeID(ctx context.Context, log *refresh.Log, name string) (domain.IntValue, error) {
	lookup := func(ctx context.Context, n string) ([]domain.IntValue, error) {
		return query.PaymentTypeIDs(ctx, s.wb, n)
	}
	create := func(n string) domain.PaymentType {
		return domain.PaymentType{Name: domain.Ptr(domain.NewString(n))}
	}
	return lookupOrAppend(ctx, s, log, normalizePaymentType(name), lookup, create)
}

func (s *Service) recipientID(ctx context.Context, log *refresh.Log, name string) (domain.IntValue, error) {
	lookup := func(ctx context.Context, n string) ([]domain.IntValue, error) {
		return query.RecipientIDs(ctx, s.wb, n)
	}
	create := func(n string) domain.Recipient {
		return domain.Recipient{Name: domain.Ptr(domain.NewString(n))}
	}
	return lookupOrAppend(ctx, s, log, strings.TrimSpace(name), lookup, create)
}

func requirePositive(amount int64) error {
	if amount <= 0 {
		return domain.IllegalArgumentf("amount must be positive, got %d", amount)
	}
	return nil
}

// AddIncome records money received, adding its payment type if new.
func (s *Service) AddIncome(ctx context.Context, tx Transaction) (domain.IntValue, error) {
	var id domain.IntValue
	err := s.run(ctx, "add_income", func(ctx context.Context, log *refresh.Log) error {
		if err := requirePositive(tx.AmountCents); err != nil {
			return err
		}
		pt, err := s.paymentTypeID(ctx, log, tx.PaymentType)
		if err != nil {
			return err
		}
		ids, err := appendRows(ctx, s, log, domain.Income{
			Date:          s.date(tx.Date),
			Amount:        domain.Ptr(domain.NewInt(tx.AmountCents)),
			Description:   domain.Ptr(domain.NewString(tx.Description)),
			PaymentTypeID: &pt,
			StatementID:   domain.Ptr(domain.NewInt(domain.Unreconciled)),
		})
		if err != nil {
			return err
		}
		id = ids[0]
		return nil
	})
	return id, err
}

// AddExpense records money paid out, adding its payment type and recipient
// if new.
func (s *Service) AddExpense(ctx context.Context, tx Transaction) (domain.IntValue, error) {
	var id domain.IntValue
	err := s.run(ctx, "add_expense", func(ctx context.Context, log *refresh.Log) error {
		if err := requirePositive(tx.AmountCents); err != nil {
			return err
		}
		if strings.TrimSpace(tx.Recipient) == "" {
			return domain.IllegalArgumentf("expense needs a recipient")
		}
		pt, err := s.paymentTypeID(ctx, log, tx.PaymentType)
		if err != nil {
			return err
		}
		rc, err := s.recipientID(ctx, log, tx.Recipient)
		if err != nil {
			return err
		}
		ids, err := appendRows(ctx, s, log, domain.Expense{
			Date:          s.date(tx.Date),
			Amount:        domain.Ptr(domain.NewInt(tx.AmountCents)),
			Description:   domain.Ptr(domain.NewString(tx.Description)),
			PaymentTypeID: &pt,
			RecipientID:   &rc,
			StatementID:   domain.Ptr(domain.NewInt(domain.Unreconciled)),
		})
		if err != nil {
			return err
		}
		id = ids[0]
		return nil
	})
	return id, err
}

// payment is one member paying one amount.
type payment struct {
	member      domain.Member
	amount      int64
	description string
}

// recordPayments appends one income per payment and sends receipts to the
// members who asked for them. Receipt failures are logged only.
func (s *Service) recordPayments(ctx context.Context, log *refresh.Log, paymentType string, payments []payment) error {
	pt, err := s.paymentTypeID(ctx, log, paymentType)
	if err != nil {
		return err
	}
	date := s.today()
	incomes := make([]domain.Income, len(payments))
	for i, p := range payments {
		incomes[i] = domain.Income{
			Date:          date,
			Amount:        domain.Ptr(domain.NewInt(p.amount)),
			Description:   domain.Ptr(domain.NewString(p.description)),
			PaymentTypeID: &pt,
			StatementID:   domain.Ptr(domain.NewInt(domain.Unreconciled)),
		}
	}
	if _, err := appendRows(ctx, s, log, incomes...); err != nil {
		return err
	}
	for _, p := range payments {
		if !p.member.SendReceipt.Bool() {
			continue
		}
		r := notify.Receipt{
			Name:        p.member.Name.String(),
			Email:       p.member.Email.String(),
			AmountCents: p.amount,
			Description: p.description,
			Date:        date.Time(),
		}
		if err := s.notifier.SendReceipt(ctx, r); err != nil {
			alog.Warnf(ctx, "receipt for %s not sent: %v", r.Name, err)
		}
	}
	return nil
}

// CollectDues records this quarter's dues for each named member at their
// officer or member rate and marks them paid.
func (s *Service) CollectDues(ctx context.Context, names []string, paymentType string) error {
	return s.run(ctx, "collect_dues", func(ctx context.Context, log *refresh.Log) error {
		if len(names) == 0 {
			return domain.IllegalArgumentf("no members named")
		}
		if err := requireDistinct("member", names); err != nil {
			return err
		}
		info, err := query.ClubInfo(ctx, s.wb)
		if err != nil {
			return err
		}
		members, err := query.MembersByName(ctx, s.wb, names...)
		if err != nil {
			return err
		}
		dues, err := query.DuesValues(ctx, s.wb, names...)
		if err != nil {
			return err
		}
		payments := make([]payment, len(members))
		patches := make([]domain.Member, len(members))
		for i, m := range members {
			if m.CurrentDuesPaid.Bool() {
				return domain.IllegalArgumentf("%s already paid dues for %s", m.Name, info.CurrentQuarter.DateString())
			}
			payments[i] = payment{
				member:      m,
				amount:      dues[i].Int(),
				description: fmt.Sprintf("%s dues: %s", info.CurrentQuarter.DateString(), m.Name),
			}
			patches[i] = domain.Member{ID: m.ID, CurrentDuesPaid: domain.Ptr(domain.True)}
		}
		if err := s.recordPayments(ctx, log, paymentType, payments); err != nil {
			return err
		}
		return updateRows(ctx, s, log, patches...)
	})
}

// AddMemberIOU adds amount to each named member's balance.
func (s *Service) AddMemberIOU(ctx context.Context, names []string, amountCents int64, description string) error {
	return s.run(ctx, "add_member_iou", func(ctx context.Context, log *refresh.Log) error {
		if err := requirePositive(amountCents); err != nil {
			return err
		}
		if err := requireDistinct("member", names); err != nil {
			return err
		}
		members, err := query.MembersByName(ctx, s.wb, names...)
		if err != nil {
			return err
		}
		patches := make([]domain.Member, len(members))
		for i, m := range members {
			patches[i] = domain.Member{ID: m.ID, AmountOwed: domain.Ptr(m.AmountOwed.Add(amountCents))}
		}
		alog.Debugf(ctx, "iou %q of %d for %d members", description, amountCents, len(members))
		return updateRows(ctx, s, log, patches...)
	})
}

// ResolveMemberIOU records each named member paying off their whole balance.
func (s *Service) ResolveMemberIOU(ctx context.Context, names []string, paymentType string) error {
	return s.run(ctx, "resolve_member_iou", func(ctx context.Context, log *refresh.Log) error {
		if err := requireDistinct("member", names); err != nil {
			return err
		}
		members, err := query.MembersByName(ctx, s.wb, names...)
		if err != nil {
			return err
		}
		payments := make([]payment, len(members))
		patches := make([]domain.Member, len(members))
		for i, m := range members {
			owed := m.AmountOwed.Int()
			if owed <= 0 {
				return domain.IllegalArgumentf("%s owes nothing", m.Name)
			}
			payments[i] = payment{member: m, amount: owed, description: fmt.Sprintf("IOU: %s", m.Name)}
			patches[i] = domain.Member{ID: m.ID, AmountOwed: domain.Ptr(domain.NewInt(0))}
		}
		if err := s.recordPayments(ctx, log, paymentType, payments); err != nil {
			return err
		}
		return updateRows(ctx, s, log, patches...)
	})
}

func requireUnreconciled(kind string, id, statement domain.IntValue) error {
	if statement.Int() != domain.Unreconciled {
		return domain.IllegalArgumentf("%s %s is already on statement %s", kind, id, statement)
	}
	return nil
}

// TransferFunds moves the given incomes and expenses onto a new unconfirmed
// statement and returns its id.
func (s *Service) TransferFunds(ctx context.Context, incomeIDs, expenseIDs []int64) (domain.IntValue, error) {
	var id domain.IntValue
	err := s.run(ctx, "transfer_funds", func(ctx context.Context, log *refresh.Log) error {
		if len(incomeIDs)+len(expenseIDs) == 0 {
			return domain.IllegalArgumentf("transfer needs at least one income or expense")
		}
		incomes, err := selectByID(ctx, s, domain.TableIncome, incomeIDs, domain.DecodeIncome)
		if err != nil {
			return err
		}
		expenses, err := selectByID(ctx, s, domain.TableExpense, expenseIDs, domain.DecodeExpense)
		if err != nil {
			return err
		}
		for _, in := range incomes {
			if err := requireUnreconciled("income", *in.ID, *in.StatementID); err != nil {
				return err
			}
		}
		for _, ex := range expenses {
			if err := requireUnreconciled("expense", *ex.ID, *ex.StatementID); err != nil {
				return err
			}
		}
		ids, err := appendRows(ctx, s, log, domain.Statement{Date: s.today(), Confirmed: domain.Ptr(domain.False)})
		if err != nil {
			return err
		}
		id = ids[0]
		incomePatches := make([]domain.Income, len(incomes))
		for i, in := range incomes {
			incomePatches[i] = domain.Income{ID: in.ID, StatementID: &id}
		}
		expensePatches := make([]domain.Expense, len(expenses))
		for i, ex := range expenses {
			expensePatches[i] = domain.Expense{ID: ex.ID, StatementID: &id}
		}
		if err := updateRows(ctx, s, log, incomePatches...); err != nil {
			return err
		}
		return updateRows(ctx, s, log, expensePatches...)
	})
	return id, err
}

// ConfirmTransfer marks statements as confirmed by the bank.
func (s *Service) ConfirmTransfer(ctx context.Context, statementIDs []int64) error {
	return s.run(ctx, "confirm_transfer", func(ctx context.Context, log *refresh.Log) error {
		if len(statementIDs) == 0 {
			return domain.IllegalArgumentf("no statements named")
		}
		patches := make([]domain.Statement, len(statementIDs))
		for i, n := range statementIDs {
			patches[i] = domain.Statement{ID: domain.Ptr(domain.NewInt(n)), Confirmed: domain.Ptr(domain.True)}
		}
		return updateRows(ctx, s, log, patches...)
	})
}
