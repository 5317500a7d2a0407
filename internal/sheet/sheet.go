// Package sheet defines the tabular storage abstraction the table engine runs
// against: named grids of string cells whose first row is the header.
package sheet

import (
	"context"
	"errors"
)

// Driver identifies a workbook backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ErrSheetNotFound is returned when a workbook has no grid with the requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrOutOfRange is returned for writes or deletes outside a grid's bounds.
var ErrOutOfRange = errors.New("cell range out of bounds")

// SortKey orders body rows by one column.
type SortKey struct {
	Column    int
	Ascending bool
}

// Grid is one named 2-D block of canonical strings. Row 0 is the header and
// body rows start at 1. Every row has exactly NumColumns cells.
type Grid interface {
	Name() string
	// Values returns a copy of the whole grid, header included.
	Values(ctx context.Context) ([][]string, error)
	// NumRows counts rows including the header.
	NumRows(ctx context.Context) (int, error)
	NumColumns(ctx context.Context) (int, error)
	// SetValues writes a rectangular block with its top-left cell at
	// (row, col), row >= 1. Writing past the last row extends the grid.
	SetValues(ctx context.Context, row, col int, block [][]string) error
	// DeleteRow removes one body row; later rows shift up by one.
	DeleteRow(ctx context.Context, row int) error
	// SortBody stably sorts the body rows; the header stays in place.
	SortBody(ctx context.Context, keys []SortKey) error
	// ReplaceBody clears the body and writes rows in its place.
	ReplaceBody(ctx context.Context, rows [][]string) error
}

// Workbook is a named collection of grids.
type Workbook interface {
	Sheet(ctx context.Context, name string) (Grid, error)
	// CreateSheet creates an empty grid with the given header. Creating a
	// grid that already exists with the same header returns it unchanged.
	CreateSheet(ctx context.Context, name string, header []string) (Grid, error)
	ListSheets(ctx context.Context) ([]string, error)
	Driver() Driver
	Close() error
}
