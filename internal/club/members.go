package club

import (
	"context"
	"errors"
	"strings"

	"clubsheet/internal/query"
	"clubsheet/internal/refresh"
	"clubsheet/pkg/domain"
)

// withDefaults fills the fields a new member may leave unset: joined today,
// nothing owed, active, dues unpaid and every flag off.
func (s *Service) withDefaults(m domain.Member) (domain.Member, error) {
	if m.ID != nil {
		return m, domain.IllegalArgumentf("new member already has id %s", m.ID)
	}
	if m.Name == nil || strings.TrimSpace(m.Name.String()) == "" {
		return m, domain.IllegalArgumentf("new member needs a name")
	}
	m.Name = domain.Ptr(domain.NewString(strings.TrimSpace(m.Name.String())))
	if m.DateJoined == nil {
		m.DateJoined = s.today()
	}
	if m.AmountOwed == nil {
		m.AmountOwed = domain.Ptr(domain.NewInt(0))
	}
	if m.Email == nil {
		m.Email = domain.Ptr(domain.NewString(""))
	}
	if m.Active == nil {
		m.Active = domain.Ptr(domain.True)
	}
	for _, f := range []**domain.BoolValue{&m.Performing, &m.Officer, &m.CurrentDuesPaid, &m.NotifyPoll, &m.SendReceipt} {
		if *f == nil {
			*f = domain.Ptr(domain.False)
		}
	}
	return m, nil
}

// requireDistinct rejects a batch that names the same row twice.
func requireDistinct(kind string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return domain.IllegalArgumentf("%s %q listed twice", kind, n)
		}
		seen[n] = true
	}
	return nil
}

func (s *Service) requireNewNames(ctx context.Context, names []string) error {
	if err := requireDistinct("member", names); err != nil {
		return err
	}
	for _, n := range names {
		_, err := query.MemberIDs(ctx, s.wb, n)
		if err == nil {
			return domain.IllegalArgumentf("member %q already exists", n)
		}
		if !errors.Is(err, domain.ErrNoMatchFound) {
			return err
		}
	}
	return nil
}

func (s *Service) addMembers(ctx context.Context, log *refresh.Log, members []domain.Member) ([]domain.IntValue, error) {
	names := make([]string, len(members))
	for i, m := range members {
		filled, err := s.withDefaults(m)
		if err != nil {
			return nil, err
		}
		members[i] = filled
		names[i] = filled.Name.String()
	}
	if err := s.requireNewNames(ctx, names); err != nil {
		return nil, err
	}
	return appendRows(ctx, s, log, members...)
}

// AddMember appends a member, filling unset fields with defaults. Names are
// unique.
func (s *Service) AddMember(ctx context.Context, m domain.Member) (domain.IntValue, error) {
	var id domain.IntValue
	err := s.run(ctx, "add_member", func(ctx context.Context, log *refresh.Log) error {
		ids, err := s.addMembers(ctx, log, []domain.Member{m})
		if err != nil {
			return err
		}
		id = ids[0]
		return nil
	})
	return id, err
}

// RenameMember changes a member's name in place.
func (s *Service) RenameMember(ctx context.Context, from, to string) error {
	return s.run(ctx, "rename_member", func(ctx context.Context, log *refresh.Log) error {
		build := func(id domain.IntValue, name string) domain.Member {
			return domain.Member{ID: &id, Name: domain.Ptr(domain.NewString(name))}
		}
		return renameEntry(ctx, s, log, "member", from, strings.TrimSpace(to), s.memberIDs, build)
	})
}

// RemoveMember deletes the named members' rows.
func (s *Service) RemoveMember(ctx context.Context, names ...string) error {
	return s.run(ctx, "remove_member", func(ctx context.Context, log *refresh.Log) error {
		ids, err := query.MemberIDs(ctx, s.wb, names...)
		if err != nil {
			return err
		}
		targets := make([]domain.Member, len(ids))
		for i := range ids {
			targets[i] = domain.Member{ID: &ids[i]}
		}
		return removeRows(ctx, s, log, targets...)
	})
}

// MemberStatus holds the status flags to change. Nil leaves a flag as is.
type MemberStatus struct {
	Performing *bool
	Active     *bool
	Officer    *bool
}

func flag(b *bool) *domain.BoolValue {
	if b == nil {
		return nil
	}
	return domain.Ptr(domain.NewBool(*b))
}

// UpdateMemberStatus sets a member's performing, active and officer flags.
func (s *Service) UpdateMemberStatus(ctx context.Context, name string, st MemberStatus) error {
	return s.run(ctx, "update_member_status", func(ctx context.Context, log *refresh.Log) error {
		if st.Performing == nil && st.Active == nil && st.Officer == nil {
			return domain.IllegalArgumentf("status of %q: nothing to change", name)
		}
		ids, err := query.MemberIDs(ctx, s.wb, name)
		if err != nil {
			return err
		}
		return updateRows(ctx, s, log, domain.Member{
			ID:         &ids[0],
			Performing: flag(st.Performing),
			Active:     flag(st.Active),
			Officer:    flag(st.Officer),
		})
	})
}

// UpdateContactSettings changes where and whether a member is contacted.
func (s *Service) UpdateContactSettings(ctx context.Context, name string, c ContactSettings) error {
	return s.run(ctx, "update_contact_settings", func(ctx context.Context, log *refresh.Log) error {
		email, err := c.address()
		if err != nil {
			return err
		}
		if email == nil && c.NotifyPoll == nil && c.SendReceipt == nil {
			return domain.IllegalArgumentf("contact settings of %q: nothing to change", name)
		}
		ids, err := query.MemberIDs(ctx, s.wb, name)
		if err != nil {
			return err
		}
		return updateRows(ctx, s, log, domain.Member{
			ID:          &ids[0],
			Email:       email,
			NotifyPoll:  flag(c.NotifyPoll),
			SendReceipt: flag(c.SendReceipt),
		})
	})
}

// DuesRequired lists the members who must pay before attending again.
func (s *Service) DuesRequired(ctx context.Context) ([]string, error) {
	members, err := query.DuesRequired(ctx, s.wb)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name.String()
	}
	return names, nil
}
