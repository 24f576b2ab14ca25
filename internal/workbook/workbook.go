// Package workbook persists journal tables in a multi-sheet Excel file.
// It implements journal.Store with whole-sheet clear-and-rewrite
// semantics, preserving each sheet's header row and data validations and
// applying the number formats and per-row formulas the journal's
// presentation contract requires.
package workbook

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"trading-journal/internal/journal"
	"trading-journal/internal/table"
)

// Builtin number format ids: 2-decimal currency and short date. Percent
// uses the custom "0.00%" which is builtin id 10.
const (
	numFmtCurrency = 7
	numFmtPercent  = 10
	numFmtDate     = 14
)

// Workbook is the excelize-backed journal.Store.
type Workbook struct {
	f    *excelize.File
	path string
	log  *zap.Logger

	currencyStyle int
	percentStyle  int
	dateStyle     int
}

// Open loads the workbook at path.
func Open(path string, log *zap.Logger) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{
		f: f, path: path, log: log,
		currencyStyle: -1, percentStyle: -1, dateStyle: -1,
	}, nil
}

// Close releases the underlying file handle without saving.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Header returns the named sheet's first row.
func (w *Workbook) Header(sheet string) ([]string, error) {
	rows, err := w.sheetRows(sheet)
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// ReadAll returns the sheet's header plus every data row. Cells come back
// as formatted strings; blank cells are nil.
func (w *Workbook) ReadAll(sheet string) (*table.Table, error) {
	rows, err := w.sheetRows(sheet)
	if err != nil {
		return nil, err
	}

	tbl := table.New(rows[0])
	for _, rec := range rows[1:] {
		row := make(table.Row, len(tbl.Header))
		used := false
		for i := 0; i < len(tbl.Header) && i < len(rec); i++ {
			if strings.TrimSpace(rec[i]) != "" {
				row[i] = rec[i]
				used = true
			}
		}
		if used {
			tbl.Rows = append(tbl.Rows, row)
		}
	}
	return tbl, nil
}

// ReplaceAll blanks every data cell and writes the table back, applying
// column formats. The header row and the sheet's data validations stay
// intact across the rewrite.
func (w *Workbook) ReplaceAll(sheet string, t *table.Table, formats []table.ColumnFormat) error {
	validations, err := w.f.GetDataValidations(sheet)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", sheet, journal.ErrNotFound)
	}

	if err := w.blankDataRows(sheet, len(t.Header)); err != nil {
		return err
	}

	byCol, err := w.formatIndex(t.Header, formats)
	if err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := w.writeRow(sheet, t.Header, row, i+2, byCol); err != nil {
			return err
		}
	}

	if err := w.restoreValidations(sheet, validations); err != nil {
		return err
	}
	w.log.Debug("Sheet rewritten",
		zap.String("sheet", sheet), zap.Int("rows", len(t.Rows)))
	return w.save()
}

// AppendRows writes rows after the sheet's last used row. Rows are
// positional against the sheet's header order.
func (w *Workbook) AppendRows(sheet string, rows []table.Row, formats []table.ColumnFormat) error {
	existing, err := w.sheetRows(sheet)
	if err != nil {
		return err
	}
	header := existing[0]
	byCol, err := w.formatIndex(header, formats)
	if err != nil {
		return err
	}

	start := len(existing) + 1
	for i, row := range rows {
		if err := w.writeRow(sheet, header, row, start+i, byCol); err != nil {
			return err
		}
	}
	w.log.Debug("Rows appended",
		zap.String("sheet", sheet), zap.Int("rows", len(rows)), zap.Int("start_row", start))
	return w.save()
}

// ClearRows removes every data row from the sheet, reapplying captured
// data validations afterwards. The header row is untouched.
func (w *Workbook) ClearRows(sheet string) error {
	validations, err := w.f.GetDataValidations(sheet)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", sheet, journal.ErrNotFound)
	}

	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", sheet, journal.ErrNotFound)
	}
	for r := len(rows); r >= 2; r-- {
		if err := w.f.RemoveRow(sheet, r); err != nil {
			return fmt.Errorf("clear sheet %q row %d: %w", sheet, r, err)
		}
	}

	if err := w.restoreValidations(sheet, validations); err != nil {
		return err
	}
	w.log.Debug("Sheet cleared", zap.String("sheet", sheet))
	return w.save()
}

func (w *Workbook) sheetRows(sheet string) ([][]string, error) {
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, journal.ErrNotFound)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row: %w", sheet, journal.ErrNotFound)
	}
	return rows, nil
}

// blankDataRows clears cell values without deleting rows, so column-level
// formatting and validation ranges survive.
func (w *Workbook) blankDataRows(sheet string, width int) error {
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", sheet, journal.ErrNotFound)
	}
	for _, rec := range rows {
		if len(rec) > width {
			width = len(rec)
		}
	}
	for r := 2; r <= len(rows); r++ {
		for c := 1; c <= width; c++ {
			ref, _ := excelize.CoordinatesToCellName(c, r)
			if err := w.f.SetCellValue(sheet, ref, nil); err != nil {
				return fmt.Errorf("blank %s!%s: %w", sheet, ref, err)
			}
		}
	}
	return nil
}

func (w *Workbook) writeRow(sheet string, header []string, row table.Row, excelRow int, byCol map[int]table.ColumnFormat) error {
	for c := 0; c < len(header); c++ {
		ref, _ := excelize.CoordinatesToCellName(c+1, excelRow)
		var v any
		if c < len(row) {
			v = row[c]
		}

		fm, formatted := byCol[c]
		if !formatted {
			if v == nil {
				continue
			}
			if err := w.f.SetCellValue(sheet, ref, writable(v)); err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet, ref, err)
			}
			continue
		}

		switch fm.Kind {
		case table.FormatFormula:
			formula, err := resolveFormula(fm.Formula, header, excelRow)
			if err != nil {
				return err
			}
			if err := w.f.SetCellFormula(sheet, ref, formula); err != nil {
				return fmt.Errorf("formula %s!%s: %w", sheet, ref, err)
			}
			if err := w.style(sheet, ref, numFmtPercent); err != nil {
				return err
			}
		case table.FormatPercent:
			if f, ok := cellFloat(v); ok {
				// The sheet stores raw/100 so the percent format
				// renders the original magnitude. Read-back strings
				// carry the rendered magnitude, so the division holds
				// across rewrites.
				if err := w.f.SetCellValue(sheet, ref, f/100); err != nil {
					return fmt.Errorf("write %s!%s: %w", sheet, ref, err)
				}
			} else if v != nil {
				if err := w.f.SetCellValue(sheet, ref, writable(v)); err != nil {
					return fmt.Errorf("write %s!%s: %w", sheet, ref, err)
				}
			}
			if err := w.style(sheet, ref, numFmtPercent); err != nil {
				return err
			}
		case table.FormatDate:
			if v != nil {
				out := writable(v)
				// Dates read back as formatted text must go in as real
				// dates again or the cell degrades to a string.
				if d, ok := journal.ParseDate(v); ok {
					out = d
				}
				if err := w.f.SetCellValue(sheet, ref, out); err != nil {
					return fmt.Errorf("write %s!%s: %w", sheet, ref, err)
				}
			}
			if err := w.style(sheet, ref, numFmtDate); err != nil {
				return err
			}
		default:
			if v != nil {
				out := writable(v)
				// Same round-trip concern for currency cells: "$1,500.00"
				// coming out of ReadAll must be stored numeric again.
				if f, ok := cellFloat(v); ok {
					out = f
				}
				if err := w.f.SetCellValue(sheet, ref, out); err != nil {
					return fmt.Errorf("write %s!%s: %w", sheet, ref, err)
				}
			}
			if err := w.style(sheet, ref, numFmtCurrency); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Workbook) formatIndex(header []string, formats []table.ColumnFormat) (map[int]table.ColumnFormat, error) {
	t := &table.Table{Header: header}
	byCol := make(map[int]table.ColumnFormat, len(formats))
	for _, fm := range formats {
		idx, ok := t.Col(fm.Column)
		if !ok {
			return nil, fmt.Errorf("format column %q: %w", fm.Column, journal.ErrSchema)
		}
		byCol[idx] = fm
	}
	return byCol, nil
}

// style applies a cached number-format style to a single cell.
func (w *Workbook) style(sheet, ref string, numFmt int) error {
	var cached *int
	switch numFmt {
	case numFmtCurrency:
		cached = &w.currencyStyle
	case numFmtPercent:
		cached = &w.percentStyle
	case numFmtDate:
		cached = &w.dateStyle
	default:
		return fmt.Errorf("unknown number format %d", numFmt)
	}
	if *cached < 0 {
		id, err := w.f.NewStyle(&excelize.Style{NumFmt: numFmt})
		if err != nil {
			return fmt.Errorf("create style: %w", err)
		}
		*cached = id
	}
	if err := w.f.SetCellStyle(sheet, ref, ref, *cached); err != nil {
		return fmt.Errorf("style %s!%s: %w", sheet, ref, err)
	}
	return nil
}

func (w *Workbook) restoreValidations(sheet string, validations []*excelize.DataValidation) error {
	for _, dv := range validations {
		if dv == nil {
			continue
		}
		_ = w.f.DeleteDataValidation(sheet, dv.Sqref)
		if err := w.f.AddDataValidation(sheet, dv); err != nil {
			return fmt.Errorf("restore validation on %q: %w", sheet, err)
		}
	}
	return nil
}

func (w *Workbook) save() error {
	if err := w.f.Save(); err != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	return nil
}

// resolveFormula substitutes {Column Name} placeholders with the cell
// references of that column on the given row.
func resolveFormula(template string, header []string, excelRow int) (string, error) {
	formula := template
	for i, name := range header {
		ref, _ := excelize.CoordinatesToCellName(i+1, excelRow)
		formula = strings.ReplaceAll(formula, "{"+name+"}", ref)
	}
	if strings.Contains(formula, "{") {
		return "", fmt.Errorf("formula %q references a missing column: %w", template, journal.ErrSchema)
	}
	return formula, nil
}

// writable converts core cell types into what excelize accepts.
func writable(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return v
}

func cellFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case int:
		return float64(f), true
	case decimal.Decimal:
		out, _ := f.Float64()
		return out, true
	case string:
		// Formatted read-backs arrive as "$1,500.00", "25.00%" or the
		// paren-negative "($50.00)" rendering.
		s := strings.TrimSpace(f)
		neg := false
		if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
			neg = true
			s = s[1 : len(s)-1]
		}
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		d, err := journal.ParseCurrency(s)
		if err != nil {
			return 0, false
		}
		out, _ := d.Float64()
		if neg {
			out = -out
		}
		return out, true
	}
	return 0, false
}
