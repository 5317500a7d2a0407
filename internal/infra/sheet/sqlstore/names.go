package sqlstore

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
)

const rowIndexColumn = "row_idx"

var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// TableName maps a grid name such as "PaymentType" or "Account Info" to the
// SQL table that mirrors it.
func TableName(sheetName string) (string, error) {
	ident := "sheet_" + strcase.ToSnake(strings.TrimSpace(sheetName))
	if !identPattern.MatchString(ident) {
		return "", fmt.Errorf("sheet name %q does not map to a SQL identifier", sheetName)
	}
	return ident, nil
}

// ColumnNames maps header cells to distinct snake_case SQL columns.
func ColumnNames(header []string) ([]string, error) {
	out := make([]string, len(header))
	seen := make(map[string]string, len(header))
	for i, h := range header {
		col := strcase.ToSnake(strings.TrimSpace(h))
		if !identPattern.MatchString(col) || col == rowIndexColumn {
			return nil, fmt.Errorf("header %q does not map to a SQL column", h)
		}
		if prev, ok := seen[col]; ok {
			return nil, fmt.Errorf("headers %q and %q both map to column %s", prev, h, col)
		}
		seen[col] = h
		out[i] = col
	}
	return out, nil
}

func quote(ident string) string { return `"` + ident + `"` }
