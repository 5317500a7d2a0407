package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Quarter is the academic quarter within a year.
type Quarter int

const (
	Winter Quarter = iota
	Spring
	Summer
	Fall
)

var quarterNames = [...]string{Winter: "Winter", Spring: "Spring", Summer: "Summer", Fall: "Fall"}

func (q Quarter) Valid() bool { return q >= Winter && q <= Fall }

func (q Quarter) String() string {
	if !q.Valid() {
		return fmt.Sprintf("Quarter(%d)", int(q))
	}
	return quarterNames[q]
}

// ParseQuarterName maps "Winter", "spring", ... to a Quarter.
func ParseQuarterName(s string) (Quarter, error) {
	for i, name := range quarterNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return Quarter(i), nil
		}
	}
	return 0, IllegalArgumentf("%q is not a quarter", s)
}

// QuarterValue is a (quarter, year) pair encoded as year*4 + quarter.
type QuarterValue struct {
	quarter Quarter
	year    int
}

// NewQuarter validates q and year.
func NewQuarter(q Quarter, year int) (QuarterValue, error) {
	if !q.Valid() {
		return QuarterValue{}, IllegalArgumentf("invalid quarter %d", int(q))
	}
	if year < 0 {
		return QuarterValue{}, IllegalArgumentf("negative year %d", year)
	}
	return QuarterValue{quarter: q, year: year}, nil
}

// QuarterFromID decodes the integer encoding.
func QuarterFromID(id int64) (QuarterValue, error) {
	if id < 0 {
		return QuarterValue{}, IllegalArgumentf("negative quarter id %d", id)
	}
	return QuarterValue{quarter: Quarter(id % 4), year: int(id / 4)}, nil
}

// ParseQuarter decodes the stored integer form.
func ParseQuarter(s string) (QuarterValue, error) {
	n, err := ParseInt(s)
	if err != nil {
		return QuarterValue{}, IllegalArgumentf("%q is not a quarter id", s)
	}
	return QuarterFromID(n.Int())
}

// Quarter returns the season.
func (v QuarterValue) Quarter() Quarter { return v.quarter }
// Year returns the calendar year.
func (v QuarterValue) Year() int { return v.year }
// ID returns the year*4 + quarter encoding.
func (v QuarterValue) ID() int64 { return int64(v.year)*4 + int64(v.quarter) }
func (v QuarterValue) String() string { return strconv.FormatInt(v.ID(), 10) }
func (v QuarterValue) Type() ValueType { return TypeQuarter }

// DateString renders e.g. "Winter 2024".
func (v QuarterValue) DateString() string {
	return fmt.Sprintf("%s %d", v.quarter, v.year)
}

// Next advances one quarter; Fall wraps to Winter of the following year.
func (v QuarterValue) Next() QuarterValue {
	if v.quarter == Fall {
		return QuarterValue{quarter: Winter, year: v.year + 1}
	}
	return QuarterValue{quarter: v.quarter + 1, year: v.year}
}

// QuarterOf returns the quarter containing t: Winter is January to March.
func QuarterOf(t time.Time) QuarterValue {
	t = t.UTC()
	return QuarterValue{quarter: Quarter((int(t.Month()) - 1) / 3), year: t.Year()}
}
