// Package sqlstore mirrors an in-memory workbook into SQL tables, one table
// per grid, rewriting a grid's table after every successful mutation and
// hydrating all grids on open.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"clubsheet/internal/infra/sheet/memory"
	"clubsheet/internal/sheet"
)

var _ sheet.Workbook = (*Workbook)(nil)

// Workbook keeps its working copy in memory and persists through db.
type Workbook struct {
	mem     *memory.Workbook
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
}

// Open ensures the catalog table exists and loads every catalogued grid.
func Open(ctx context.Context, db *sql.DB, d Dialect) (*Workbook, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS sheets (
		name TEXT PRIMARY KEY,
		table_name TEXT NOT NULL,
		header TEXT NOT NULL,
		position INTEGER NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create sheets table: %w", err)
	}
	w := &Workbook{mem: memory.NewWithDriver(d.Driver), db: db, dialect: d}
	if err := w.load(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Workbook) Driver() sheet.Driver { return w.dialect.Driver }

// DB exposes the underlying handle for integration tests.
func (w *Workbook) DB() *sql.DB { return w.db }

func (w *Workbook) Close() error { return w.db.Close() }

func (w *Workbook) Sheet(ctx context.Context, name string) (sheet.Grid, error) {
	g, err := w.mem.Sheet(ctx, name)
	if err != nil {
		return nil, err
	}
	return &grid{Grid: g, wb: w}, nil
}

func (w *Workbook) CreateSheet(ctx context.Context, name string, header []string) (sheet.Grid, error) {
	if _, err := TableName(name); err != nil {
		return nil, err
	}
	if _, err := ColumnNames(header); err != nil {
		return nil, err
	}
	g, err := w.mem.CreateSheet(ctx, name, header)
	if err != nil {
		return nil, err
	}
	if err := w.persist(ctx, name); err != nil {
		return nil, err
	}
	return &grid{Grid: g, wb: w}, nil
}

func (w *Workbook) ListSheets(ctx context.Context) ([]string, error) {
	return w.mem.ListSheets(ctx)
}

type catalogRow struct {
	name   string
	table  string
	header []string
}

func (w *Workbook) load(ctx context.Context) error {
	rows, err := w.db.QueryContext(ctx, `SELECT name, table_name, header FROM sheets ORDER BY position`)
	if err != nil {
		return fmt.Errorf("select sheets: %w", err)
	}
	var catalog []catalogRow
	for rows.Next() {
		var (
			c   catalogRow
			raw string
		)
		if err := rows.Scan(&c.name, &c.table, &raw); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan sheets: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &c.header); err != nil {
			_ = rows.Close()
			return fmt.Errorf("decode header of %s: %w", c.name, err)
		}
		catalog = append(catalog, c)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close sheets: %w", err)
	}
	states := make([]memory.SheetState, 0, len(catalog))
	for _, c := range catalog {
		body, err := w.loadBody(ctx, c)
		if err != nil {
			return err
		}
		states = append(states, memory.SheetState{Name: c.name, Header: c.header, Rows: body})
	}
	w.mem.ImportState(states)
	return nil
}

func (w *Workbook) loadBody(ctx context.Context, c catalogRow) ([][]string, error) {
	cols, err := ColumnNames(c.header)
	if err != nil {
		return nil, err
	}
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quote(col)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`, strings.Join(quoted, ", "), quote(c.table), rowIndexColumn)
	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", c.table, err)
	}
	defer func() { _ = rows.Close() }()
	var body [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.table, err)
		}
		row := make([]string, len(cols))
		for i, cell := range cells {
			row[i] = cell.String
		}
		body = append(body, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c.table, err)
	}
	return body, nil
}

// persist rewrites the named grid's table in one transaction.
func (w *Workbook) persist(ctx context.Context, name string) (retErr error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	state, err := w.mem.ExportSheet(name)
	if err != nil {
		return err
	}
	table, err := TableName(name)
	if err != nil {
		return err
	}
	cols, err := ColumnNames(state.Header)
	if err != nil {
		return err
	}
	position, err := w.position(ctx, name)
	if err != nil {
		return err
	}
	header, err := json.Marshal(state.Header)
	if err != nil {
		return fmt.Errorf("encode header of %s: %w", name, err)
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	defs := make([]string, 0, len(cols)+1)
	defs = append(defs, rowIndexColumn+" INTEGER PRIMARY KEY")
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quote(col)
		defs = append(defs, quoted[i]+" TEXT NOT NULL")
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s)`, quote(table), strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	upsert := fmt.Sprintf(`INSERT INTO sheets(name, table_name, header, position) VALUES(%s) ON CONFLICT(name) DO UPDATE SET table_name=excluded.table_name, header=excluded.header, position=excluded.position`,
		strings.Join(w.dialect.params(1, 4), ", "))
	if _, err := tx.ExecContext(ctx, upsert, name, table, string(header), position); err != nil {
		return fmt.Errorf("upsert sheet %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, quote(table))); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if len(state.Rows) > 0 {
		insert := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES (%s)`, quote(table), rowIndexColumn,
			strings.Join(quoted, ", "), strings.Join(w.dialect.params(1, len(cols)+1), ", "))
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("prepare insert %s: %w", table, err)
		}
		defer func() { _ = stmt.Close() }()
		args := make([]any, len(cols)+1)
		for i, row := range state.Rows {
			args[0] = i + 1
			for j := range cols {
				args[j+1] = row[j]
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("insert %s row %d: %w", table, i+1, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

func (w *Workbook) position(ctx context.Context, name string) (int, error) {
	names, err := w.mem.ListSheets(ctx)
	if err != nil {
		return 0, err
	}
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", sheet.ErrSheetNotFound, name)
}

// grid persists after every successful mutation of the wrapped memory grid.
type grid struct {
	sheet.Grid
	wb *Workbook
}

func (g *grid) SetValues(ctx context.Context, row, col int, block [][]string) error {
	if err := g.Grid.SetValues(ctx, row, col, block); err != nil {
		return err
	}
	return g.wb.persist(ctx, g.Name())
}

func (g *grid) DeleteRow(ctx context.Context, row int) error {
	if err := g.Grid.DeleteRow(ctx, row); err != nil {
		return err
	}
	return g.wb.persist(ctx, g.Name())
}

func (g *grid) SortBody(ctx context.Context, keys []sheet.SortKey) error {
	if err := g.Grid.SortBody(ctx, keys); err != nil {
		return err
	}
	return g.wb.persist(ctx, g.Name())
}

func (g *grid) ReplaceBody(ctx context.Context, rows [][]string) error {
	if err := g.Grid.ReplaceBody(ctx, rows); err != nil {
		return err
	}
	return g.wb.persist(ctx, g.Name())
}
