package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/cel-go/cel"

	"clubsheet/internal/sheet"
	"clubsheet/internal/table"
	"clubsheet/pkg/domain"
)

var (
	logicalAnd = regexp.MustCompile(`\bAND\b`)
	logicalOr  = regexp.MustCompile(`\bOR\b`)
	logicalEq  = regexp.MustCompile(`\s+=\s+`)
)

// sanitize lets filters use SQL-style AND, OR and = alongside CEL syntax.
// Quoted string literals are copied through untouched.
func sanitize(expr string) string {
	var b strings.Builder
	start := 0
	for i := 0; i < len(expr); i++ {
		q := expr[i]
		if q != '"' && q != '\'' {
			continue
		}
		b.WriteString(rewriteOperators(expr[start:i]))
		j := i + 1
		for j < len(expr) && expr[j] != q {
			if expr[j] == '\\' {
				j++
			}
			j++
		}
		end := min(j+1, len(expr))
		b.WriteString(expr[i:end])
		i = end - 1
		start = end
	}
	b.WriteString(rewriteOperators(expr[start:]))
	return b.String()
}

func rewriteOperators(s string) string {
	s = logicalAnd.ReplaceAllString(s, "&&")
	s = logicalOr.ReplaceAllString(s, "||")
	return logicalEq.ReplaceAllString(s, " == ")
}

// Predicate is a compiled row filter for one table.
type Predicate struct {
	table domain.Table
	expr  string
	prg   cel.Program
}

// Compile checks expr against the `row` variable and requires a bool result.
// Columns are addressed as row.<name> or row["name"].
func Compile(t domain.Table, expr string) (*Predicate, error) {
	if !t.Valid() {
		return nil, domain.IllegalArgumentf("filter: unknown table %d", int(t))
	}
	env, err := cel.NewEnv(cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)))
	if err != nil {
		return nil, fmt.Errorf("filter env: %w", err)
	}
	src := sanitize(expr)
	ast, iss := env.Compile(src)
	if iss != nil && iss.Err() != nil {
		return nil, domain.IllegalArgumentf("filter %q: %v", expr, iss.Err())
	}
	if ast.OutputType() != cel.BoolType && ast.OutputType() != cel.DynType {
		return nil, domain.IllegalArgumentf("filter %q yields %s, want bool", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, domain.IllegalArgumentf("filter %q: %v", expr, err)
	}
	return &Predicate{table: t, expr: expr, prg: prg}, nil
}

// Match evaluates the predicate against one stored row.
func (p *Predicate) Match(row []string) (bool, error) {
	vals, err := domain.ParseRow(p.table, row)
	if err != nil {
		return false, err
	}
	out, _, err := p.prg.Eval(map[string]any{"row": rowMap(p.table, vals)})
	if err != nil {
		return false, domain.IllegalArgumentf("filter %q: %v", p.expr, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, domain.IllegalArgumentf("filter %q yielded %v, want bool", p.expr, out.Value())
	}
	return b, nil
}

func rowMap(t domain.Table, vals []domain.Value) map[string]any {
	cols := t.Columns()
	m := make(map[string]any, len(cols))
	for i, c := range cols {
		m[c.Name] = native(vals[i])
	}
	return m
}

func native(v domain.Value) any {
	switch v := v.(type) {
	case domain.IntValue:
		return v.Int()
	case domain.FloatValue:
		return v.Float()
	case domain.BoolValue:
		return v.Bool()
	case domain.DateValue:
		return v.Time()
	case domain.QuarterValue:
		return v.ID()
	case domain.IntListValue:
		return v.Ints()
	default:
		return v.String()
	}
}

// Filter returns the body rows of t for which expr holds.
func Filter(ctx context.Context, wb sheet.Workbook, t domain.Table, expr string) ([][]string, error) {
	p, err := Compile(t, expr)
	if err != nil {
		return nil, err
	}
	g, err := table.Open(ctx, wb, t)
	if err != nil {
		return nil, err
	}
	body, err := table.SelectAll(ctx, g)
	if err != nil {
		return nil, err
	}
	var out [][]string
	for i, row := range body {
		ok, err := p.Match(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", t, i+1, err)
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}
