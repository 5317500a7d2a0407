package sqlstore

import (
	"strconv"

	"clubsheet/internal/sheet"
)

// Dialect captures the few SQL differences between the supported backends.
type Dialect struct {
	Driver      sheet.Driver
	placeholder func(n int) string
}

// SQLite uses positional "?" parameters.
var SQLite = Dialect{Driver: sheet.DriverSQLite, placeholder: func(int) string { return "?" }}

// Postgres uses numbered "$n" parameters.
var Postgres = Dialect{Driver: sheet.DriverPostgres, placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}

func (d Dialect) params(from, count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = d.placeholder(from + i)
	}
	return out
}
