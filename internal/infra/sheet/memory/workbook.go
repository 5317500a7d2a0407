// Package memory provides an in-memory workbook used for tests, ephemeral
// runs and as the working copy behind the SQL-backed workbooks.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"clubsheet/internal/sheet"
)

var _ sheet.Workbook = (*Workbook)(nil)

// ErrHeaderMismatch is returned when CreateSheet names an existing grid with a
// different header.
var ErrHeaderMismatch = errors.New("sheet exists with a different header")

// SheetState is a point-in-time copy of one grid.
type SheetState struct {
	Name   string     `json:"name"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

type gridState struct {
	header []string
	rows   [][]string
}

// Workbook keeps every grid in memory behind a single RWMutex.
type Workbook struct {
	mu     sync.RWMutex
	sheets map[string]*gridState
	order  []string
	driver sheet.Driver
}

// New constructs an empty in-memory workbook.
func New() *Workbook {
	return &Workbook{sheets: make(map[string]*gridState), driver: sheet.DriverMemory}
}

// NewWithDriver constructs a memory workbook that reports a different driver,
// for stores that keep their working copy here.
func NewWithDriver(d sheet.Driver) *Workbook {
	w := New()
	w.driver = d
	return w
}

func (w *Workbook) Driver() sheet.Driver { return w.driver }

func (w *Workbook) Close() error { return nil }

// Sheet returns the named grid or sheet.ErrSheetNotFound.
func (w *Workbook) Sheet(_ context.Context, name string) (sheet.Grid, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if _, ok := w.sheets[name]; !ok {
		return nil, fmt.Errorf("%w: %s", sheet.ErrSheetNotFound, name)
	}
	return &Grid{wb: w, name: name}, nil
}

// CreateSheet adds a grid holding only header. An existing grid with the same
// header is returned as is.
func (w *Workbook) CreateSheet(_ context.Context, name string, header []string) (sheet.Grid, error) {
	if name == "" {
		return nil, errors.New("sheet name required")
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("sheet %s: header required", name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if existing, ok := w.sheets[name]; ok {
		if !slices.Equal(existing.header, header) {
			return nil, fmt.Errorf("%w: %s", ErrHeaderMismatch, name)
		}
		return &Grid{wb: w, name: name}, nil
	}
	w.sheets[name] = &gridState{header: append([]string(nil), header...)}
	w.order = append(w.order, name)
	return &Grid{wb: w, name: name}, nil
}

// ListSheets returns the grid names in creation order.
func (w *Workbook) ListSheets(context.Context) ([]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.order...), nil
}

// ExportSheet copies one grid's state.
func (w *Workbook) ExportSheet(name string) (SheetState, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	g, ok := w.sheets[name]
	if !ok {
		return SheetState{}, fmt.Errorf("%w: %s", sheet.ErrSheetNotFound, name)
	}
	return SheetState{Name: name, Header: append([]string(nil), g.header...), Rows: sheet.CloneRows(g.rows)}, nil
}

// ExportState copies every grid in creation order.
func (w *Workbook) ExportState() []SheetState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]SheetState, 0, len(w.order))
	for _, name := range w.order {
		g := w.sheets[name]
		out = append(out, SheetState{Name: name, Header: append([]string(nil), g.header...), Rows: sheet.CloneRows(g.rows)})
	}
	return out
}

// ImportState replaces the workbook contents.
func (w *Workbook) ImportState(states []SheetState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sheets = make(map[string]*gridState, len(states))
	w.order = w.order[:0]
	for _, s := range states {
		w.sheets[s.Name] = &gridState{header: append([]string(nil), s.Header...), rows: sheet.CloneRows(s.Rows)}
		w.order = append(w.order, s.Name)
	}
}

// Grid is a handle onto one named grid of a Workbook.
type Grid struct {
	wb   *Workbook
	name string
}

var _ sheet.Grid = (*Grid)(nil)

func (g *Grid) Name() string { return g.name }

func (g *Grid) state() (*gridState, error) {
	s, ok := g.wb.sheets[g.name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sheet.ErrSheetNotFound, g.name)
	}
	return s, nil
}

func (g *Grid) Values(context.Context) ([][]string, error) {
	g.wb.mu.RLock()
	defer g.wb.mu.RUnlock()
	s, err := g.state()
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(s.rows)+1)
	out = append(out, append([]string(nil), s.header...))
	return append(out, sheet.CloneRows(s.rows)...), nil
}

func (g *Grid) NumRows(context.Context) (int, error) {
	g.wb.mu.RLock()
	defer g.wb.mu.RUnlock()
	s, err := g.state()
	if err != nil {
		return 0, err
	}
	return len(s.rows) + 1, nil
}

func (g *Grid) NumColumns(context.Context) (int, error) {
	g.wb.mu.RLock()
	defer g.wb.mu.RUnlock()
	s, err := g.state()
	if err != nil {
		return 0, err
	}
	return len(s.header), nil
}

func (g *Grid) SetValues(_ context.Context, row, col int, block [][]string) error {
	g.wb.mu.Lock()
	defer g.wb.mu.Unlock()
	s, err := g.state()
	if err != nil {
		return err
	}
	width := len(s.header)
	if row < 1 || col < 0 {
		return fmt.Errorf("%w: %s at (%d,%d)", sheet.ErrOutOfRange, g.name, row, col)
	}
	for i, r := range block {
		if col+len(r) > width {
			return fmt.Errorf("%w: %s row %d has %d cells from column %d, width %d", sheet.ErrOutOfRange, g.name, row+i, len(r), col, width)
		}
	}
	for len(s.rows) < row+len(block)-1 {
		s.rows = append(s.rows, make([]string, width))
	}
	for i, r := range block {
		copy(s.rows[row+i-1][col:], r)
	}
	return nil
}

func (g *Grid) DeleteRow(_ context.Context, row int) error {
	g.wb.mu.Lock()
	defer g.wb.mu.Unlock()
	s, err := g.state()
	if err != nil {
		return err
	}
	if row < 1 || row > len(s.rows) {
		return fmt.Errorf("%w: %s has no body row %d", sheet.ErrOutOfRange, g.name, row)
	}
	s.rows = slices.Delete(s.rows, row-1, row)
	return nil
}

func (g *Grid) SortBody(_ context.Context, keys []sheet.SortKey) error {
	g.wb.mu.Lock()
	defer g.wb.mu.Unlock()
	s, err := g.state()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if k.Column < 0 || k.Column >= len(s.header) {
			return fmt.Errorf("%w: %s has no column %d", sheet.ErrOutOfRange, g.name, k.Column)
		}
	}
	sheet.SortRows(s.rows, keys)
	return nil
}

func (g *Grid) ReplaceBody(_ context.Context, rows [][]string) error {
	g.wb.mu.Lock()
	defer g.wb.mu.Unlock()
	s, err := g.state()
	if err != nil {
		return err
	}
	for i, r := range rows {
		if len(r) != len(s.header) {
			return fmt.Errorf("%w: %s row %d has %d cells, width %d", sheet.ErrOutOfRange, g.name, i+1, len(r), len(s.header))
		}
	}
	s.rows = sheet.CloneRows(rows)
	return nil
}
