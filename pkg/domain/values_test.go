package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestValueRoundTrip(t *testing.T) {
	q, err := NewQuarter(Summer, 2024)
	if err != nil {
		t.Fatalf("new quarter: %v", err)
	}
	f, err := NewFloat(12.375)
	if err != nil {
		t.Fatalf("new float: %v", err)
	}
	values := []Value{
		NewString("Joe, Jr."),
		NewString(""),
		NewInt(-42),
		NewInt(0),
		f,
		NewDate(time.Date(2023, time.March, 4, 5, 6, 7, 8_000_000, time.UTC)),
		True,
		False,
		q,
		NewIntList(3, 1, 4),
		NewIntList(),
	}
	for _, v := range values {
		got, err := ParseValue(v.Type(), v.String())
		if err != nil {
			t.Fatalf("parse %s %q: %v", v.Type(), v.String(), err)
		}
		if got.String() != v.String() {
			t.Fatalf("expected %s round trip of %q, got %q", v.Type(), v.String(), got.String())
		}
	}
}

func TestIntParsing(t *testing.T) {
	v, err := ParseInt(" 17 ")
	if err != nil || v.Int() != 17 {
		t.Fatalf("expected 17, got %v (%v)", v.Int(), err)
	}
	if v, err := ParseInt("5.0"); err != nil || v.Int() != 5 {
		t.Fatalf("expected integral float text to parse, got %v (%v)", v.Int(), err)
	}
	for _, bad := range []string{"", "abc", "5.5", "1e400"} {
		if _, err := ParseInt(bad); !errors.Is(err, ErrIllegalArgument) {
			t.Fatalf("expected illegal argument for %q, got %v", bad, err)
		}
	}
	if _, err := IntFromFloat(2.5); !errors.Is(err, ErrIllegalArgument) {
		t.Fatalf("expected non-integral float rejection, got %v", err)
	}
	for _, big := range []string{"9223372036854775808", "-9223372036854775809", "9223372036854775808.0", "9.3e18"} {
		if v, err := ParseInt(big); !errors.Is(err, ErrIllegalArgument) {
			t.Fatalf("expected overflow rejection for %q, got %d (%v)", big, v.Int(), err)
		}
	}
	if _, err := IntFromFloat(math.Exp2(63)); !errors.Is(err, ErrIllegalArgument) {
		t.Fatalf("expected 2^63 to be rejected, got %v", err)
	}
	if v, err := ParseInt("-9223372036854775808"); err != nil || v.Int() != math.MinInt64 {
		t.Fatalf("expected min int64 to parse, got %d (%v)", v.Int(), err)
	}
}

func TestBoolSingletons(t *testing.T) {
	if NewBool(true) != True || NewBool(false) != False {
		t.Fatalf("expected shared singletons")
	}
	if True.String() != "1" || False.String() != "0" {
		t.Fatalf("unexpected canonical booleans %q %q", True, False)
	}
	for _, bad := range []string{"true", "TRUE", "", "2"} {
		if _, err := ParseBool(bad); !errors.Is(err, ErrIllegalArgument) {
			t.Fatalf("expected illegal argument for %q, got %v", bad, err)
		}
	}
}

func TestDateCanonicalForm(t *testing.T) {
	d := DateFromMillis(0)
	if d.String() != "0" {
		t.Fatalf("expected epoch to encode as 0, got %q", d.String())
	}
	if d.DateString() != "01/01/1970" {
		t.Fatalf("unexpected date string %q", d.DateString())
	}
	if _, err := ParseDate("yesterday"); !errors.Is(err, ErrIllegalArgument) {
		t.Fatalf("expected illegal argument, got %v", err)
	}
}

func TestIntListEmptyString(t *testing.T) {
	l, err := ParseIntList("")
	if err != nil {
		t.Fatalf("parse empty list: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty list, got %v", l.Ints())
	}
	l, err = ParseIntList("4,8,15")
	if err != nil {
		t.Fatalf("parse list: %v", err)
	}
	if got := l.Ints(); len(got) != 3 || got[2] != 15 || !l.Contains(8) {
		t.Fatalf("unexpected list %v", got)
	}
	if _, err := ParseIntList("1,,2"); !errors.Is(err, ErrIllegalArgument) {
		t.Fatalf("expected illegal argument for blank element, got %v", err)
	}
}

func TestFloatRejectsNonFinite(t *testing.T) {
	if _, err := ParseFloat("NaN"); !errors.Is(err, ErrIllegalArgument) {
		t.Fatalf("expected NaN rejection, got %v", err)
	}
	if _, err := ParseFloat("twelve"); !errors.Is(err, ErrIllegalArgument) {
		t.Fatalf("expected non-numeric rejection, got %v", err)
	}
}
