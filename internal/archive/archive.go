// Package archive snapshots every grid of a workbook into a blob store as CSV
// files plus a JSON manifest, and restores workbooks from those snapshots.
package archive

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
	"go.alis.build/alog"

	"clubsheet/internal/blob"
	"clubsheet/internal/sheet"
)

const manifestName = "manifest.json"

// Manifest describes one snapshot.
type Manifest struct {
	Snapshot  string       `json:"snapshot"`
	CreatedAt time.Time    `json:"created_at"`
	Driver    sheet.Driver `json:"driver"`
	Sheets    []SheetEntry `json:"sheets"`
}

// SheetEntry locates one grid's CSV inside a snapshot.
type SheetEntry struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Header []string `json:"header"`
	Rows   int      `json:"rows"`
}

func key(prefix, snapshot, file string) string {
	return path.Join(strings.Trim(prefix, "/"), snapshot, file)
}

// Export writes every grid of wb under <prefix>/<snapshot>/ and returns the
// snapshot id. Snapshot ids sort in creation order.
func Export(ctx context.Context, wb sheet.Workbook, store blob.Store, prefix string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("snapshot id: %w", err)
	}
	snapshot := id.String()
	names, err := wb.ListSheets(ctx)
	if err != nil {
		return "", fmt.Errorf("list sheets: %w", err)
	}
	m := Manifest{Snapshot: snapshot, CreatedAt: time.Now().UTC(), Driver: wb.Driver()}
	for _, name := range names {
		entry, err := exportSheet(ctx, wb, store, prefix, snapshot, name)
		if err != nil {
			return "", err
		}
		m.Sheets = append(m.Sheets, entry)
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	opts := blob.PutOptions{ContentType: "application/json", Metadata: map[string]string{"snapshot": snapshot}}
	if _, err := store.Put(ctx, key(prefix, snapshot, manifestName), bytes.NewReader(raw), opts); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	alog.Infof(ctx, "exported %d sheets to snapshot %s", len(m.Sheets), snapshot)
	return snapshot, nil
}

func exportSheet(ctx context.Context, wb sheet.Workbook, store blob.Store, prefix, snapshot, name string) (SheetEntry, error) {
	g, err := wb.Sheet(ctx, name)
	if err != nil {
		return SheetEntry{}, err
	}
	values, err := g.Values(ctx)
	if err != nil {
		return SheetEntry{}, fmt.Errorf("read %s: %w", name, err)
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(values); err != nil {
		return SheetEntry{}, fmt.Errorf("encode %s: %w", name, err)
	}
	file := strcase.ToSnake(name) + ".csv"
	opts := blob.PutOptions{ContentType: "text/csv", Metadata: map[string]string{"snapshot": snapshot, "sheet": name}}
	if _, err := store.Put(ctx, key(prefix, snapshot, file), &buf, opts); err != nil {
		return SheetEntry{}, fmt.Errorf("write %s: %w", name, err)
	}
	return SheetEntry{Name: name, File: file, Header: values[0], Rows: len(values) - 1}, nil
}

// ReadManifest loads the manifest of one snapshot.
func ReadManifest(ctx context.Context, store blob.Store, prefix, snapshot string) (Manifest, error) {
	_, rc, err := store.Get(ctx, key(prefix, snapshot, manifestName))
	if err != nil {
		return Manifest{}, fmt.Errorf("snapshot %s: %w", snapshot, err)
	}
	defer rc.Close()
	var m Manifest
	if err := json.NewDecoder(rc).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", snapshot, err)
	}
	return m, nil
}

// Import restores every grid in a snapshot into wb, creating missing grids
// and replacing the body of existing ones. Grids absent from the snapshot
// are left alone.
func Import(ctx context.Context, wb sheet.Workbook, store blob.Store, prefix, snapshot string) (Manifest, error) {
	m, err := ReadManifest(ctx, store, prefix, snapshot)
	if err != nil {
		return Manifest{}, err
	}
	for _, s := range m.Sheets {
		rows, err := readCSV(ctx, store, key(prefix, snapshot, s.File))
		if err != nil {
			return Manifest{}, fmt.Errorf("read %s: %w", s.Name, err)
		}
		if len(rows) == 0 || !slices.Equal(rows[0], s.Header) {
			return Manifest{}, fmt.Errorf("%s: csv header does not match manifest", s.Name)
		}
		g, err := wb.CreateSheet(ctx, s.Name, s.Header)
		if err != nil {
			return Manifest{}, fmt.Errorf("create %s: %w", s.Name, err)
		}
		if err := g.ReplaceBody(ctx, rows[1:]); err != nil {
			return Manifest{}, fmt.Errorf("restore %s: %w", s.Name, err)
		}
	}
	alog.Infof(ctx, "imported %d sheets from snapshot %s", len(m.Sheets), snapshot)
	return m, nil
}

func readCSV(ctx context.Context, store blob.Store, k string) ([][]string, error) {
	_, rc, err := store.Get(ctx, k)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = 0
	return r.ReadAll()
}

// List returns the snapshot ids under prefix, oldest first.
func List(ctx context.Context, store blob.Store, prefix string) ([]string, error) {
	p := strings.Trim(prefix, "/")
	if p != "" {
		p += "/"
	}
	infos, err := store.List(ctx, p)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, info := range infos {
		rest, ok := strings.CutPrefix(info.Key, p)
		if !ok {
			continue
		}
		snapshot, file, ok := strings.Cut(rest, "/")
		if ok && file == manifestName {
			out = append(out, snapshot)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Delete removes every blob of one snapshot, manifest first so a partly
// deleted snapshot no longer lists. It returns the number of blobs removed.
func Delete(ctx context.Context, store blob.Store, prefix, snapshot string) (int, error) {
	if strings.TrimSpace(snapshot) == "" || strings.Contains(snapshot, "/") {
		return 0, fmt.Errorf("invalid snapshot id %q", snapshot)
	}
	infos, err := store.List(ctx, key(prefix, snapshot, "")+"/")
	if err != nil {
		return 0, err
	}
	if len(infos) == 0 {
		return 0, fmt.Errorf("snapshot %s: %w", snapshot, blob.ErrNotFound)
	}
	slices.SortStableFunc(infos, func(a, b blob.Info) int {
		am, bm := path.Base(a.Key) == manifestName, path.Base(b.Key) == manifestName
		switch {
		case am && !bm:
			return -1
		case bm && !am:
			return 1
		}
		return 0
	})
	removed := 0
	for _, info := range infos {
		ok, err := store.Delete(ctx, info.Key)
		if err != nil {
			return removed, fmt.Errorf("delete %s: %w", info.Key, err)
		}
		if ok {
			removed++
		}
	}
	alog.Infof(ctx, "deleted snapshot %s (%d blobs)", snapshot, removed)
	return removed, nil
}
