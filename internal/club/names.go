package club

import (
	"context"
	"errors"
	"slices"
	"strings"

	"clubsheet/internal/query"
	"clubsheet/internal/refresh"
	"clubsheet/pkg/domain"
)

type idLookup func(ctx context.Context, names ...string) ([]domain.IntValue, error)

func (s *Service) memberIDs(ctx context.Context, names ...string) ([]domain.IntValue, error) {
	return query.MemberIDs(ctx, s.wb, names...)
}

func (s *Service) paymentTypeIDs(ctx context.Context, names ...string) ([]domain.IntValue, error) {
	return query.PaymentTypeIDs(ctx, s.wb, names...)
}

func (s *Service) recipientIDs(ctx context.Context, names ...string) ([]domain.IntValue, error) {
	return query.RecipientIDs(ctx, s.wb, names...)
}

// renameEntry gives the row named from the name to. A name already in use is
// rejected; the caller should merge instead.
func renameEntry[E domain.Entry](ctx context.Context, s *Service, log *refresh.Log, kind, from, to string,
	lookup idLookup, build func(domain.IntValue, string) E) error {
	if to == "" {
		return domain.IllegalArgumentf("new %s name is empty", kind)
	}
	ids, err := lookup(ctx, from)
	if err != nil {
		return err
	}
	if to == from {
		return nil
	}
	_, err = lookup(ctx, to)
	if err == nil {
		return domain.IllegalArgumentf("%s %q already exists, merge %q into it instead", kind, to, from)
	}
	if !errors.Is(err, domain.ErrNoMatchFound) {
		return err
	}
	return updateRows(ctx, s, log, build(ids[0], to))
}

// RenamePaymentType changes a payment type's name. Names are lowercased.
func (s *Service) RenamePaymentType(ctx context.Context, from, to string) error {
	return s.run(ctx, "rename_payment_type", func(ctx context.Context, log *refresh.Log) error {
		build := func(id domain.IntValue, name string) domain.PaymentType {
			return domain.PaymentType{ID: &id, Name: domain.Ptr(domain.NewString(name))}
		}
		return renameEntry(ctx, s, log, "payment type", normalizePaymentType(from), normalizePaymentType(to), s.paymentTypeIDs, build)
	})
}

// RenameRecipient changes a recipient's name.
func (s *Service) RenameRecipient(ctx context.Context, from, to string) error {
	return s.run(ctx, "rename_recipient", func(ctx context.Context, log *refresh.Log) error {
		build := func(id domain.IntValue, name string) domain.Recipient {
			return domain.Recipient{ID: &id, Name: domain.Ptr(domain.NewString(name))}
		}
		return renameEntry(ctx, s, log, "recipient", strings.TrimSpace(from), strings.TrimSpace(to), s.recipientIDs, build)
	})
}

// mergeTargets resolves the row to keep and the rows folded into it. into is
// dropped from aliases; nothing left to fold is an error.
func mergeTargets(ctx context.Context, kind string, aliases []string, into string, lookup idLookup) (domain.IntValue, map[int64]bool, error) {
	var rest []string
	for _, a := range aliases {
		if a != into {
			rest = append(rest, a)
		}
	}
	if len(rest) == 0 {
		return domain.IntValue{}, nil, domain.IllegalArgumentf("no %s to merge into %q", kind, into)
	}
	if err := requireDistinct(kind, rest); err != nil {
		return domain.IntValue{}, nil, err
	}
	target, err := lookup(ctx, into)
	if err != nil {
		return domain.IntValue{}, nil, err
	}
	ids, err := lookup(ctx, rest...)
	if err != nil {
		return domain.IntValue{}, nil, err
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id.Int()] = true
	}
	return target[0], set, nil
}

func idEntries[E domain.Entry](set map[int64]bool, build func(*domain.IntValue) E) []E {
	keys := make([]int64, 0, len(set))
	for n := range set {
		keys = append(keys, n)
	}
	slices.Sort(keys)
	out := make([]E, len(keys))
	for i, n := range keys {
		out[i] = build(domain.Ptr(domain.NewInt(n)))
	}
	return out
}

// MergeMember folds the alias members into the member named into. Their
// attendance, balance and dues-paid flag move to it and their rows are
// removed.
func (s *Service) MergeMember(ctx context.Context, aliases []string, into string) error {
	return s.run(ctx, "merge_member", func(ctx context.Context, log *refresh.Log) error {
		target, set, err := mergeTargets(ctx, "member", aliases, into, s.memberIDs)
		if err != nil {
			return err
		}
		members, err := query.Members(ctx, s.wb)
		if err != nil {
			return err
		}
		var owed int64
		var kept domain.Member
		paid := false
		for _, m := range members {
			switch {
			case m.ID.Int() == target.Int():
				kept = m
			case set[m.ID.Int()]:
				owed += m.AmountOwed.Int()
				paid = paid || m.CurrentDuesPaid.Bool()
			}
		}
		patch := domain.Member{ID: &target, AmountOwed: domain.Ptr(kept.AmountOwed.Add(owed))}
		if paid && !kept.CurrentDuesPaid.Bool() {
			patch.CurrentDuesPaid = domain.Ptr(domain.True)
		}
		if err := updateRows(ctx, s, log, patch); err != nil {
			return err
		}

		attendances, err := query.Attendances(ctx, s.wb)
		if err != nil {
			return err
		}
		var patches []domain.Attendance
		for _, a := range attendances {
			ids := a.MemberIDs.Ints()
			if !slices.ContainsFunc(ids, func(n int64) bool { return set[n] }) {
				continue
			}
			ids = slices.DeleteFunc(ids, func(n int64) bool { return set[n] })
			ids = append(ids, target.Int())
			slices.Sort(ids)
			patches = append(patches, domain.Attendance{ID: a.ID, MemberIDs: domain.Ptr(domain.NewIntList(slices.Compact(ids)...))})
		}
		if err := updateRows(ctx, s, log, patches...); err != nil {
			return err
		}
		return removeRows(ctx, s, log, idEntries(set, func(id *domain.IntValue) domain.Member {
			return domain.Member{ID: id}
		})...)
	})
}

// MergePaymentType points every income and expense paid with an alias at
// the payment type named into, then removes the aliases.
func (s *Service) MergePaymentType(ctx context.Context, aliases []string, into string) error {
	return s.run(ctx, "merge_payment_type", func(ctx context.Context, log *refresh.Log) error {
		normalized := make([]string, len(aliases))
		for i, a := range aliases {
			normalized[i] = normalizePaymentType(a)
		}
		target, set, err := mergeTargets(ctx, "payment type", normalized, normalizePaymentType(into), s.paymentTypeIDs)
		if err != nil {
			return err
		}
		incomes, err := query.Incomes(ctx, s.wb)
		if err != nil {
			return err
		}
		var incomePatches []domain.Income
		for _, in := range incomes {
			if set[in.PaymentTypeID.Int()] {
				incomePatches = append(incomePatches, domain.Income{ID: in.ID, PaymentTypeID: &target})
			}
		}
		if err := updateRows(ctx, s, log, incomePatches...); err != nil {
			return err
		}
		expenses, err := query.Expenses(ctx, s.wb)
		if err != nil {
			return err
		}
		var expensePatches []domain.Expense
		for _, ex := range expenses {
			if set[ex.PaymentTypeID.Int()] {
				expensePatches = append(expensePatches, domain.Expense{ID: ex.ID, PaymentTypeID: &target})
			}
		}
		if err := updateRows(ctx, s, log, expensePatches...); err != nil {
			return err
		}
		return removeRows(ctx, s, log, idEntries(set, func(id *domain.IntValue) domain.PaymentType {
			return domain.PaymentType{ID: id}
		})...)
	})
}

// MergeRecipient points every expense paid to an alias at the recipient
// named into, then removes the aliases.
func (s *Service) MergeRecipient(ctx context.Context, aliases []string, into string) error {
	return s.run(ctx, "merge_recipient", func(ctx context.Context, log *refresh.Log) error {
		trimmed := make([]string, len(aliases))
		for i, a := range aliases {
			trimmed[i] = strings.TrimSpace(a)
		}
		target, set, err := mergeTargets(ctx, "recipient", trimmed, strings.TrimSpace(into), s.recipientIDs)
		if err != nil {
			return err
		}
		expenses, err := query.Expenses(ctx, s.wb)
		if err != nil {
			return err
		}
		var patches []domain.Expense
		for _, ex := range expenses {
			if set[ex.RecipientID.Int()] {
				patches = append(patches, domain.Expense{ID: ex.ID, RecipientID: &target})
			}
		}
		if err := updateRows(ctx, s, log, patches...); err != nil {
			return err
		}
		return removeRows(ctx, s, log, idEntries(set, func(id *domain.IntValue) domain.Recipient {
			return domain.Recipient{ID: id}
		})...)
	})
}
