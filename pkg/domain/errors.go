package domain

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the flat error taxonomy shared by the table engine and
// its callers.
type ErrorKind int

const (
	// KindUnknown marks errors that did not originate from the domain layer,
	// such as storage or network failures.
	KindUnknown ErrorKind = iota
	KindFieldNotFound
	KindIllegalArgument
	KindAssertion
	KindNoMatchFound
)

// Sentinel errors. Every domain error matches exactly one of these with
// errors.Is.
var (
	ErrFieldNotFound   = errors.New("field not found")
	ErrIllegalArgument = errors.New("illegal argument")
	ErrAssertion       = errors.New("assertion failed")
	ErrNoMatchFound    = errors.New("no match found")
)

func (k ErrorKind) String() string {
	switch k {
	case KindFieldNotFound:
		return "FieldNotFound"
	case KindIllegalArgument:
		return "IllegalArgument"
	case KindAssertion:
		return "Assertion"
	case KindNoMatchFound:
		return "NoMatchFound"
	default:
		return "Unknown"
	}
}

// KindOf reports which taxonomy bucket err belongs to.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrFieldNotFound):
		return KindFieldNotFound
	case errors.Is(err, ErrIllegalArgument):
		return KindIllegalArgument
	case errors.Is(err, ErrAssertion):
		return KindAssertion
	case errors.Is(err, ErrNoMatchFound):
		return KindNoMatchFound
	default:
		return KindUnknown
	}
}

// FieldNotFoundf reports a column name missing from a header.
func FieldNotFoundf(format string, args ...any) error {
	return kindError(ErrFieldNotFound, format, args...)
}

// IllegalArgumentf reports malformed or absent required input.
func IllegalArgumentf(format string, args ...any) error {
	return kindError(ErrIllegalArgument, format, args...)
}

// Assertionf reports a caller-guaranteed invariant that did not hold.
func Assertionf(format string, args ...any) error {
	return kindError(ErrAssertion, format, args...)
}

// NoMatchFoundf reports a keyed lookup that found no row.
func NoMatchFoundf(format string, args ...any) error {
	return kindError(ErrNoMatchFound, format, args...)
}

func kindError(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
