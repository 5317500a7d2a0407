package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Value is an immutable typed cell. String returns the canonical encoding
// stored in a grid; the matching Parse function is its left inverse.
type Value interface {
	String() string
	Type() ValueType
}

// ValueType identifies a Value variant.
type ValueType int

const (
	TypeString ValueType = iota
	TypeInt
	TypeFloat
	TypeDate
	TypeBool
	TypeQuarter
	TypeIntList
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeDate:
		return "date"
	case TypeBool:
		return "bool"
	case TypeQuarter:
		return "quarter"
	case TypeIntList:
		return "intlist"
	default:
		return "unknown"
	}
}

// ParseValue decodes s as the given variant.
func ParseValue(t ValueType, s string) (Value, error) {
	switch t {
	case TypeString:
		return NewString(s), nil
	case TypeInt:
		return ParseInt(s)
	case TypeFloat:
		return ParseFloat(s)
	case TypeDate:
		return ParseDate(s)
	case TypeBool:
		return ParseBool(s)
	case TypeQuarter:
		return ParseQuarter(s)
	case TypeIntList:
		return ParseIntList(s)
	default:
		return nil, IllegalArgumentf("unknown value type %d", int(t))
	}
}

// StringValue wraps opaque text.
type StringValue struct{ s string }

// NewString wraps s.
func NewString(s string) StringValue { return StringValue{s: s} }

func (v StringValue) String() string { return v.s }
func (v StringValue) Type() ValueType { return TypeString }

// IntValue wraps a signed integer.
type IntValue struct{ n int64 }

// NewInt wraps n.
func NewInt(n int64) IntValue { return IntValue{n: n} }

// IntFromFloat converts an integral float; fractional or non-finite input fails.
func IntFromFloat(f float64) (IntValue, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return IntValue{}, IllegalArgumentf("%v is not an integer", f)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return IntValue{}, IllegalArgumentf("%v overflows int64", f)
	}
	return IntValue{n: int64(f)}, nil
}

// ParseInt accepts decimal integer text; integral decimal forms such as "5.0"
// are accepted, fractional ones are not.
func ParseInt(s string) (IntValue, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return IntValue{n: n}, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return IntValue{}, IllegalArgumentf("%q overflows int64", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return IntValue{}, IllegalArgumentf("%q is not an integer", s)
	}
	return IntFromFloat(f)
}

// Int returns the wrapped integer.
func (v IntValue) Int() int64 { return v.n }
func (v IntValue) String() string { return strconv.FormatInt(v.n, 10) }
func (v IntValue) Type() ValueType { return TypeInt }
// Add returns v plus d.
func (v IntValue) Add(d int64) IntValue { return IntValue{n: v.n + d} }

// FloatValue wraps a finite float.
type FloatValue struct{ f float64 }

// NewFloat wraps f, rejecting NaN and infinities.
func NewFloat(f float64) (FloatValue, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return FloatValue{}, IllegalArgumentf("%v is not finite", f)
	}
	return FloatValue{f: f}, nil
}

// ParseFloat decodes a finite decimal number.
func ParseFloat(s string) (FloatValue, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return FloatValue{}, IllegalArgumentf("%q is not a number", s)
	}
	return NewFloat(f)
}

// Float returns the wrapped number.
func (v FloatValue) Float() float64 { return v.f }
func (v FloatValue) String() string { return strconv.FormatFloat(v.f, 'f', -1, 64) }
func (v FloatValue) Type() ValueType { return TypeFloat }

// DateValue wraps an instant with millisecond precision. The canonical form is
// milliseconds since the Unix epoch.
type DateValue struct{ ms int64 }

// DateLayout is the human month/day/year rendering used by views.
const DateLayout = "01/02/2006"

// NewDate truncates t to milliseconds.
func NewDate(t time.Time) DateValue { return DateValue{ms: t.UnixMilli()} }

// DateFromMillis wraps milliseconds since the Unix epoch.
func DateFromMillis(ms int64) DateValue { return DateValue{ms: ms} }

// ParseDate decodes epoch milliseconds.
func ParseDate(s string) (DateValue, error) {
	n, err := ParseInt(s)
	if err != nil {
		return DateValue{}, IllegalArgumentf("%q is not an epoch millisecond date", s)
	}
	return DateValue{ms: n.Int()}, nil
}

// Time returns the instant in UTC.
func (v DateValue) Time() time.Time { return time.UnixMilli(v.ms).UTC() }
// Millis returns milliseconds since the Unix epoch.
func (v DateValue) Millis() int64 { return v.ms }
func (v DateValue) String() string { return strconv.FormatInt(v.ms, 10) }
func (v DateValue) Type() ValueType { return TypeDate }

// DateString renders the date as month/day/year in UTC.
func (v DateValue) DateString() string { return v.Time().Format(DateLayout) }

// BoolValue encodes as "1" or "0".
type BoolValue struct{ b bool }

var (
	True  = BoolValue{b: true}
	False = BoolValue{b: false}
)

// NewBool returns True or False.
func NewBool(b bool) BoolValue {
	if b {
		return True
	}
	return False
}

// ParseBool accepts only "1" and "0".
func ParseBool(s string) (BoolValue, error) {
	switch s {
	case "1":
		return True, nil
	case "0":
		return False, nil
	default:
		return BoolValue{}, IllegalArgumentf("%q is not a boolean", s)
	}
}

// Bool returns the wrapped flag.
func (v BoolValue) Bool() bool { return v.b }
func (v BoolValue) Type() ValueType { return TypeBool }

func (v BoolValue) String() string {
	if v.b {
		return "1"
	}
	return "0"
}

// IntListValue is an ordered list of integers, comma-joined on the wire.
type IntListValue struct{ ns []int64 }

// NewIntList copies ns.
func NewIntList(ns ...int64) IntListValue {
	return IntListValue{ns: append([]int64(nil), ns...)}
}

// ParseIntList decodes comma-joined integers. The empty string is the empty
// list.
func ParseIntList(s string) (IntListValue, error) {
	if strings.TrimSpace(s) == "" {
		return IntListValue{}, nil
	}
	parts := strings.Split(s, ",")
	ns := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := ParseInt(p)
		if err != nil {
			return IntListValue{}, IllegalArgumentf("int list %q: element %q is not an integer", s, p)
		}
		ns = append(ns, n.Int())
	}
	return IntListValue{ns: ns}, nil
}

// Ints returns a copy of the list.
func (v IntListValue) Ints() []int64 { return append([]int64(nil), v.ns...) }
// Len returns the number of elements.
func (v IntListValue) Len() int { return len(v.ns) }
func (v IntListValue) Type() ValueType { return TypeIntList }

// Contains reports whether n is in the list.
func (v IntListValue) Contains(n int64) bool {
	for _, x := range v.ns {
		if x == n {
			return true
		}
	}
	return false
}

func (v IntListValue) String() string {
	parts := make([]string, len(v.ns))
	for i, n := range v.ns {
		parts[i] = strconv.FormatInt(n, 10)
	}
	return strings.Join(parts, ",")
}

// Ptr returns a pointer to v, for populating optional entry fields.
func Ptr[T Value](v T) *T { return &v }
