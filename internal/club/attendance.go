package club

import (
	"context"
	"slices"
	"strings"
	"time"

	"clubsheet/internal/query"
	"clubsheet/internal/refresh"
	"clubsheet/internal/table"
	"clubsheet/pkg/domain"
)

func selectByID[E any](ctx context.Context, s *Service, t domain.Table, ids []int64, decode func([]string) (E, error)) ([]E, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	g, err := s.grid(ctx, t)
	if err != nil {
		return nil, err
	}
	keys := make([]domain.IntValue, len(ids))
	for i, n := range ids {
		keys[i] = domain.NewInt(n)
	}
	indices, err := table.IndicesFromIDs(ctx, g, keys)
	if err != nil {
		return nil, err
	}
	body, err := table.SelectAll(ctx, g)
	if err != nil {
		return nil, err
	}
	out := make([]E, len(indices))
	for i, idx := range indices {
		if out[i], err = decode(body[idx]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// TakeAttendance records who was present on date in the current quarter.
// Names in newMembers are added as inactive members first and count as
// present; a new name that is already a member is simply marked present.
// Present ids are stored in ascending order followed by the new ones.
func (s *Service) TakeAttendance(ctx context.Context, date time.Time, present, newMembers []string) (domain.IntValue, error) {
	var id domain.IntValue
	err := s.run(ctx, "take_attendance", func(ctx context.Context, log *refresh.Log) error {
		if len(present)+len(newMembers) == 0 {
			return domain.IllegalArgumentf("attendance needs at least one member")
		}
		info, err := query.ClubInfo(ctx, s.wb)
		if err != nil {
			return err
		}
		members, err := query.Members(ctx, s.wb)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(members))
		for _, m := range members {
			known[m.Name.String()] = true
		}
		present = slices.Clone(present)
		var fresh []domain.Member
		for _, n := range newMembers {
			n = strings.TrimSpace(n)
			if known[n] {
				present = append(present, n)
				continue
			}
			fresh = append(fresh, domain.Member{
				Name:       domain.Ptr(domain.NewString(n)),
				DateJoined: s.date(date),
				Active:     domain.Ptr(domain.False),
			})
		}
		slices.Sort(present)
		present = slices.Compact(present)

		var ids []int64
		if len(present) > 0 {
			found, err := query.MemberIDs(ctx, s.wb, present...)
			if err != nil {
				return err
			}
			for _, v := range found {
				ids = append(ids, v.Int())
			}
			slices.Sort(ids)
		}
		if len(fresh) > 0 {
			added, err := s.addMembers(ctx, log, fresh)
			if err != nil {
				return err
			}
			for _, v := range added {
				ids = append(ids, v.Int())
			}
		}
		rows, err := appendRows(ctx, s, log, domain.Attendance{
			Date:      s.date(date),
			MemberIDs: domain.Ptr(domain.NewIntList(ids...)),
			QuarterID: &info.CurrentQuarter,
		})
		if err != nil {
			return err
		}
		id = rows[0]
		return nil
	})
	return id, err
}

// NextQuarter advances the club to the following quarter and clears every
// member's dues-paid flag.
func (s *Service) NextQuarter(ctx context.Context) (domain.QuarterValue, error) {
	var next domain.QuarterValue
	err := s.run(ctx, "next_quarter", func(ctx context.Context, log *refresh.Log) error {
		info, err := query.ClubInfo(ctx, s.wb)
		if err != nil {
			return err
		}
		info.CurrentQuarter = info.CurrentQuarter.Next()
		g, err := s.grid(ctx, domain.TableClubInfo)
		if err != nil {
			return err
		}
		if err := table.SetSingleton(ctx, g, info.Row()); err != nil {
			return err
		}
		log.Include(domain.TableClubInfo)
		next = info.CurrentQuarter
		members, err := query.Members(ctx, s.wb)
		if err != nil {
			return err
		}
		var patches []domain.Member
		for _, m := range members {
			if m.CurrentDuesPaid.Bool() {
				patches = append(patches, domain.Member{ID: m.ID, CurrentDuesPaid: domain.Ptr(domain.False)})
			}
		}
		return updateRows(ctx, s, log, patches...)
	})
	return next, err
}
