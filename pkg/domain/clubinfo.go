package domain

// ClubInfo holds the club-wide settings. It has no id and is stored as the
// single data row of the ClubInfo table.
type ClubInfo struct {
	MemberFee            IntValue
	OfficerFee           IntValue
	DaysUntilFeeRequired IntValue
	CurrentQuarter       QuarterValue
}

// Row encodes the settings in header order.
func (c ClubInfo) Row() []string {
	return []string{
		c.MemberFee.String(),
		c.OfficerFee.String(),
		c.DaysUntilFeeRequired.String(),
		c.CurrentQuarter.String(),
	}
}

// DecodeClubInfo decodes the stored settings row.
func DecodeClubInfo(row []string) (ClubInfo, error) {
	v, err := ParseRow(TableClubInfo, row)
	if err != nil {
		return ClubInfo{}, err
	}
	return ClubInfo{
		MemberFee:            v[0].(IntValue),
		OfficerFee:           v[1].(IntValue),
		DaysUntilFeeRequired: v[2].(IntValue),
		CurrentQuarter:       v[3].(QuarterValue),
	}, nil
}

// DuesFor returns the fee owed by a member with the given officer flag.
func (c ClubInfo) DuesFor(officer bool) IntValue {
	if officer {
		return c.OfficerFee
	}
	return c.MemberFee
}
