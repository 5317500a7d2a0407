// Package sqlite persists workbooks to a local SQLite file using the pure-Go
// modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"clubsheet/internal/infra/sheet/sqlstore"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const defaultPath = "clubsheet.db"

// Workbook is a SQLite-backed workbook.
type Workbook struct {
	*sqlstore.Workbook
	path string
}

// NewWorkbook opens (creating if needed) the SQLite file at path and loads
// every stored grid.
func NewWorkbook(ctx context.Context, path string) (*Workbook, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serialises writers and keeps the file lock simple.
	db.SetMaxOpenConns(1)
	wb, err := sqlstore.Open(ctx, db, sqlstore.SQLite)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Workbook{Workbook: wb, path: path}, nil
}

// Path returns the database file path.
func (w *Workbook) Path() string { return w.path }
