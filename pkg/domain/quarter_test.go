package domain

import (
	"errors"
	"testing"
	"time"
)

func TestQuarterEncodingRoundTrip(t *testing.T) {
	for _, year := range []int{0, 1, 1999, 2024} {
		for q := Winter; q <= Fall; q++ {
			v, err := NewQuarter(q, year)
			if err != nil {
				t.Fatalf("new quarter: %v", err)
			}
			if v.ID() != int64(year)*4+int64(q) {
				t.Fatalf("expected id %d, got %d", int64(year)*4+int64(q), v.ID())
			}
			got, err := ParseQuarter(v.String())
			if err != nil {
				t.Fatalf("parse %q: %v", v.String(), err)
			}
			if got.Quarter() != q || got.Year() != year {
				t.Fatalf("expected %s %d, got %s %d", q, year, got.Quarter(), got.Year())
			}
		}
	}
}

func TestQuarterNextWraps(t *testing.T) {
	fall, _ := NewQuarter(Fall, 2023)
	next := fall.Next()
	if next.Quarter() != Winter || next.Year() != 2024 {
		t.Fatalf("expected Winter 2024, got %s", next.DateString())
	}
	spring, _ := NewQuarter(Spring, 2023)
	if n := spring.Next(); n.Quarter() != Summer || n.Year() != 2023 {
		t.Fatalf("expected Summer 2023, got %s", n.DateString())
	}
}

func TestQuarterRejectsInvalid(t *testing.T) {
	if _, err := ParseQuarter("-1"); !errors.Is(err, ErrIllegalArgument) {
		t.Fatalf("expected negative id rejection, got %v", err)
	}
	if _, err := NewQuarter(Quarter(4), 2020); !errors.Is(err, ErrIllegalArgument) {
		t.Fatalf("expected invalid quarter rejection, got %v", err)
	}
	if _, err := NewQuarter(Fall, -3); !errors.Is(err, ErrIllegalArgument) {
		t.Fatalf("expected negative year rejection, got %v", err)
	}
	if q, err := ParseQuarterName("spring"); err != nil || q != Spring {
		t.Fatalf("expected Spring, got %v (%v)", q, err)
	}
}

func TestQuarterOf(t *testing.T) {
	cases := map[time.Month]Quarter{time.January: Winter, time.April: Spring, time.September: Summer, time.December: Fall}
	for m, want := range cases {
		q := QuarterOf(time.Date(2025, m, 15, 0, 0, 0, 0, time.UTC))
		if q.Quarter() != want || q.Year() != 2025 {
			t.Fatalf("month %s: expected %s 2025, got %s", m, want, q.DateString())
		}
	}
}
