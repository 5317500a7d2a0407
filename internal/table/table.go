// Package table implements the sheet-as-table engine: projections, id-keyed
// append/update/remove with auto-increment ids, reverse lookups and sorting
// over a sheet.Grid whose first row is the header and whose first column is
// the id.
//
// The engine is stateless. Every call reads the grid fresh and writes its
// result back; lookups build hash indexes from that single read.
package table

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.alis.build/alog"

	"clubsheet/internal/sheet"
	"clubsheet/pkg/domain"
)

// Open returns the grid backing t.
func Open(ctx context.Context, wb sheet.Workbook, t domain.Table) (sheet.Grid, error) {
	return wb.Sheet(ctx, t.String())
}

// Ensure creates the grid backing t with its schema header when missing.
func Ensure(ctx context.Context, wb sheet.Workbook, t domain.Table) (sheet.Grid, error) {
	return wb.CreateSheet(ctx, t.String(), t.Header())
}

func read(ctx context.Context, g sheet.Grid) (header []string, body [][]string, err error) {
	values, err := g.Values(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", g.Name(), err)
	}
	if len(values) == 0 {
		return nil, nil, domain.Assertionf("%s has no header row", g.Name())
	}
	return values[0], values[1:], nil
}

func checkHeader(g sheet.Grid, header []string, t domain.Table) error {
	if !slices.Equal(header, t.Header()) {
		return domain.IllegalArgumentf("%s header %v does not match %s schema", g.Name(), header, t)
	}
	return nil
}

// Append assigns fresh ids to complete entries and writes them as one block
// after the last row. Ids continue from the largest stored id (0 for an
// empty table) in input order.
func Append[E domain.Entry](ctx context.Context, g sheet.Grid, entries []E) ([]domain.IntValue, error) {
	if len(entries) == 0 {
		return nil, domain.IllegalArgumentf("append to %s: empty batch", g.Name())
	}
	header, body, err := read(ctx, g)
	if err != nil {
		return nil, err
	}
	if err := checkHeader(g, header, entries[0].Table()); err != nil {
		return nil, err
	}
	next, err := nextID(g, body)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.IntValue, len(entries))
	rows := make([][]string, len(entries))
	for i, e := range entries {
		if _, ok := domain.EntryID(e); ok {
			return nil, domain.IllegalArgumentf("append to %s: entry %d already has an id", g.Name(), i)
		}
		cells := domain.ToArray(e)
		if len(cells) != domain.Len(e)-1 {
			return nil, domain.IllegalArgumentf("append to %s: entry %d sets %d of %d fields", g.Name(), i, len(cells), domain.Len(e)-1)
		}
		ids[i] = domain.NewInt(next + int64(i))
		rows[i] = append([]string{ids[i].String()}, cells...)
	}
	if err := g.SetValues(ctx, len(body)+1, 0, rows); err != nil {
		return nil, fmt.Errorf("append to %s: %w", g.Name(), err)
	}
	alog.Debugf(ctx, "appended %d rows to %s starting at id %d", len(rows), g.Name(), next)
	return ids, nil
}

func nextID(g sheet.Grid, body [][]string) (int64, error) {
	next := int64(0)
	for i, row := range body {
		id, err := domain.ParseInt(row[0])
		if err != nil {
			return 0, domain.Assertionf("%s row %d has id %q", g.Name(), i+1, row[0])
		}
		if id.Int() >= next {
			next = id.Int() + 1
		}
	}
	return next, nil
}

// Update overlays each entry's set fields onto the stored row with the same
// id and rewrites that row. Every id is resolved and every entry validated
// before the first write; the writes themselves are one per entry.
func Update[E domain.Entry](ctx context.Context, g sheet.Grid, entries []E) error {
	if len(entries) == 0 {
		return domain.IllegalArgumentf("update %s: empty batch", g.Name())
	}
	ids, err := entryIDs(g, "update", entries)
	if err != nil {
		return err
	}
	header, body, err := read(ctx, g)
	if err != nil {
		return err
	}
	if err := checkHeader(g, header, entries[0].Table()); err != nil {
		return err
	}
	indices, err := resolve(g, body, ids)
	if err != nil {
		return err
	}
	for i, e := range entries {
		row := body[indices[i]]
		for col, f := range e.Fields() {
			if f != nil {
				row[col] = f.String()
			}
		}
	}
	for i := range entries {
		idx := indices[i]
		if err := g.SetValues(ctx, idx+1, 0, [][]string{body[idx]}); err != nil {
			return fmt.Errorf("update %s id %s: %w", g.Name(), ids[i], err)
		}
	}
	alog.Debugf(ctx, "updated %d rows of %s", len(entries), g.Name())
	return nil
}

// Remove deletes the rows holding each entry's id. Rows go in ascending order
// with each target shifted up by the number already removed.
func Remove[E domain.Entry](ctx context.Context, g sheet.Grid, entries []E) error {
	if len(entries) == 0 {
		return domain.IllegalArgumentf("remove from %s: empty batch", g.Name())
	}
	ids, err := entryIDs(g, "remove from", entries)
	if err != nil {
		return err
	}
	header, body, err := read(ctx, g)
	if err != nil {
		return err
	}
	if err := checkHeader(g, header, entries[0].Table()); err != nil {
		return err
	}
	indices, err := resolve(g, body, ids)
	if err != nil {
		return err
	}
	return removeIndices(ctx, g, indices)
}

func removeIndices(ctx context.Context, g sheet.Grid, indices []int) error {
	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	for removed, idx := range sorted {
		if err := g.DeleteRow(ctx, idx+1-removed); err != nil {
			return fmt.Errorf("remove from %s row %d: %w", g.Name(), idx, err)
		}
	}
	alog.Debugf(ctx, "removed %d rows from %s", len(sorted), g.Name())
	return nil
}

func entryIDs[E domain.Entry](g sheet.Grid, op string, entries []E) ([]domain.IntValue, error) {
	ids := make([]domain.IntValue, len(entries))
	for i, e := range entries {
		id, ok := domain.EntryID(e)
		if !ok {
			return nil, domain.IllegalArgumentf("%s %s: entry %d has no id", op, g.Name(), i)
		}
		ids[i] = id
	}
	return ids, nil
}

// IndicesFromIDs maps ids to 0-based body row indices (the header is not
// counted), in request order.
func IndicesFromIDs(ctx context.Context, g sheet.Grid, ids []domain.IntValue) ([]int, error) {
	_, body, err := read(ctx, g)
	if err != nil {
		return nil, err
	}
	return resolve(g, body, ids)
}

func resolve(g sheet.Grid, body [][]string, ids []domain.IntValue) ([]int, error) {
	if len(body) == 0 {
		return nil, domain.NoMatchFoundf("%s is empty", g.Name())
	}
	index := make(map[string]int, len(body))
	for i, row := range body {
		if _, ok := index[row[0]]; !ok {
			index[row[0]] = i
		}
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		idx, ok := index[id.String()]
		if !ok {
			return nil, domain.NoMatchFoundf("%s has no id %s", g.Name(), id)
		}
		out[i] = idx
	}
	return out, nil
}

// IDsFromValues reverse-maps tuples of column values to the id of the first
// row whose named columns hold exactly those canonical strings.
func IDsFromValues(ctx context.Context, g sheet.Grid, columns []string, rows [][]domain.Value) ([]domain.IntValue, error) {
	if len(columns) == 0 {
		return nil, domain.IllegalArgumentf("lookup in %s: no columns", g.Name())
	}
	if len(rows) == 0 {
		return nil, domain.IllegalArgumentf("lookup in %s: no rows", g.Name())
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, domain.IllegalArgumentf("lookup in %s: row %d has %d values for %d columns", g.Name(), i, len(r), len(columns))
		}
	}
	header, body, err := read(ctx, g)
	if err != nil {
		return nil, err
	}
	cols, err := columnIndexes(g, header, append([]string{domain.ColID}, columns...))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, domain.NoMatchFoundf("%s is empty", g.Name())
	}
	index := make(map[string]string, len(body))
	parts := make([]string, len(columns))
	for _, row := range body {
		for i, c := range cols[1:] {
			parts[i] = row[c]
		}
		k := tupleKey(parts)
		if _, ok := index[k]; !ok {
			index[k] = row[cols[0]]
		}
	}
	out := make([]domain.IntValue, len(rows))
	for i, r := range rows {
		for j, v := range r {
			parts[j] = v.String()
		}
		raw, ok := index[tupleKey(parts)]
		if !ok {
			return nil, domain.NoMatchFoundf("%s has no row with %v = %v", g.Name(), columns, parts)
		}
		id, err := domain.ParseInt(raw)
		if err != nil {
			return nil, domain.Assertionf("%s has id %q", g.Name(), raw)
		}
		out[i] = id
	}
	return out, nil
}

// tupleKey length-prefixes each part so distinct tuples never collide.
func tupleKey(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

func columnIndexes(g sheet.Grid, header, fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		idx := slices.Index(header, f)
		if idx < 0 {
			return nil, domain.FieldNotFoundf("%s has no column %q", g.Name(), f)
		}
		out[i] = idx
	}
	return out, nil
}

// Select returns one column of the body.
func Select(ctx context.Context, g sheet.Grid, field string) ([]string, error) {
	rows, err := SelectMulti(ctx, g, []string{field})
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r[0]
	}
	return out, nil
}

// SelectMulti projects the body onto the named columns, in request order.
func SelectMulti(ctx context.Context, g sheet.Grid, fields []string) ([][]string, error) {
	header, body, err := read(ctx, g)
	if err != nil {
		return nil, err
	}
	cols, err := columnIndexes(g, header, fields)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(body))
	for i, row := range body {
		proj := make([]string, len(cols))
		for j, c := range cols {
			proj[j] = row[c]
		}
		out[i] = proj
	}
	return out, nil
}

// SelectAll returns the whole body.
func SelectAll(ctx context.Context, g sheet.Grid) ([][]string, error) {
	_, body, err := read(ctx, g)
	return body, err
}

// OrderBy sorts the body in place by the named columns. ascending holds
// either nothing (all ascending), one flag for every column, or one flag per
// column.
func OrderBy(ctx context.Context, g sheet.Grid, fields []string, ascending ...bool) error {
	if len(fields) == 0 {
		return domain.IllegalArgumentf("order %s: no columns", g.Name())
	}
	switch len(ascending) {
	case 0:
		ascending = []bool{true}
		fallthrough
	case 1:
		ascending = slices.Repeat(ascending, len(fields))
	case len(fields):
	default:
		return domain.IllegalArgumentf("order %s: %d flags for %d columns", g.Name(), len(ascending), len(fields))
	}
	header, _, err := read(ctx, g)
	if err != nil {
		return err
	}
	cols, err := columnIndexes(g, header, fields)
	if err != nil {
		return err
	}
	keys := make([]sheet.SortKey, len(cols))
	for i, c := range cols {
		keys[i] = sheet.SortKey{Column: c, Ascending: ascending[i]}
	}
	if err := g.SortBody(ctx, keys); err != nil {
		return fmt.Errorf("order %s: %w", g.Name(), err)
	}
	return nil
}

// SetSingleton makes row the only body row of g.
func SetSingleton(ctx context.Context, g sheet.Grid, row []string) error {
	header, _, err := read(ctx, g)
	if err != nil {
		return err
	}
	if len(row) != len(header) {
		return domain.IllegalArgumentf("%s row has %d cells, want %d", g.Name(), len(row), len(header))
	}
	if err := g.ReplaceBody(ctx, [][]string{row}); err != nil {
		return fmt.Errorf("write %s: %w", g.Name(), err)
	}
	return nil
}

// Scan decodes every body row.
func Scan[E any](ctx context.Context, g sheet.Grid, decode func(row []string) (E, error)) ([]E, error) {
	_, body, err := read(ctx, g)
	if err != nil {
		return nil, err
	}
	out := make([]E, 0, len(body))
	for i, row := range body {
		e, err := decode(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", g.Name(), i+1, err)
		}
		out = append(out, e)
	}
	return out, nil
}
