// Package table holds the generic header+rows model the core works
// against. The storage backend decides how a table is persisted; the
// reconciliation code only ever sees headers, rows and column formats.
package table

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row is a single data row. Cells are nil when absent, otherwise a
// string, int, decimal.Decimal or time.Time.
type Row []any

// Table is a named-column table: a header row plus zero or more data rows.
type Table struct {
	Header []string
	Rows   []Row
}

// New creates an empty table with the given header.
func New(header []string) *Table {
	return &Table{Header: append([]string(nil), header...)}
}

// Col returns the index of the named column, or false if the header does
// not contain it.
func (t *Table) Col(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return 0, false
}

// Value returns the cell under the named column for the given row, or nil
// when the column is missing or the row is short.
func (t *Table) Value(row Row, name string) any {
	i, ok := t.Col(name)
	if !ok || i >= len(row) {
		return nil
	}
	return row[i]
}

// Set assigns the cell under the named column, growing the row if needed.
// It reports whether the column exists.
func (t *Table) Set(row *Row, name string, v any) bool {
	i, ok := t.Col(name)
	if !ok {
		return false
	}
	for len(*row) <= i {
		*row = append(*row, nil)
	}
	(*row)[i] = v
	return true
}

// IsEmpty reports whether a cell holds no usable value: nil, or a string
// that is blank after trimming.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// String renders a cell for comparisons against sheet literals.
func String(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case decimal.Decimal:
		return c.String()
	case time.Time:
		return c.Format("2006-01-02")
	default:
		return ""
	}
}

// FormatKind selects the presentation applied to a column at write time.
type FormatKind int

const (
	// FormatCurrency renders with the builtin 2-decimal currency format.
	FormatCurrency FormatKind = iota + 1
	// FormatPercent stores raw/100 and renders as 0.00%.
	FormatPercent
	// FormatDate renders with the builtin short date format.
	FormatDate
	// FormatFormula writes a per-row formula instead of the cell value.
	// The template references sibling columns by name in braces, e.g.
	// "({Avg Sell}-{Avg Buy})/{Avg Buy}".
	FormatFormula
)

// ColumnFormat attaches a presentation rule to a named column.
type ColumnFormat struct {
	Column  string
	Kind    FormatKind
	Formula string
}
