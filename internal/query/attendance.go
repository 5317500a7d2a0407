package query

import (
	"context"
	"time"

	"clubsheet/internal/sheet"
	"clubsheet/pkg/domain"
)

// AttendanceDays counts, per member id, the distinct UTC days the member was
// present during quarter q.
func AttendanceDays(ctx context.Context, wb sheet.Workbook, q domain.QuarterValue) (map[int64]int, error) {
	attendances, err := Attendances(ctx, wb)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]map[time.Time]struct{})
	for _, a := range attendances {
		if a.QuarterID.ID() != q.ID() {
			continue
		}
		d := a.Date.Time().Truncate(24 * time.Hour)
		for _, id := range a.MemberIDs.Ints() {
			if seen[id] == nil {
				seen[id] = make(map[time.Time]struct{})
			}
			seen[id][d] = struct{}{}
		}
	}
	out := make(map[int64]int, len(seen))
	for id, days := range seen {
		out[id] = len(days)
	}
	return out, nil
}

// DuesRequired lists active members who have not paid for the current
// quarter but have attended at least DaysUntilFeeRequired days of it.
func DuesRequired(ctx context.Context, wb sheet.Workbook) ([]domain.Member, error) {
	info, err := ClubInfo(ctx, wb)
	if err != nil {
		return nil, err
	}
	days, err := AttendanceDays(ctx, wb, info.CurrentQuarter)
	if err != nil {
		return nil, err
	}
	members, err := Members(ctx, wb)
	if err != nil {
		return nil, err
	}
	var out []domain.Member
	for _, m := range members {
		if !m.Active.Bool() || m.CurrentDuesPaid.Bool() {
			continue
		}
		if int64(days[m.ID.Int()]) >= info.DaysUntilFeeRequired.Int() {
			out = append(out, m)
		}
	}
	return out, nil
}
