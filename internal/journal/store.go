package journal

import "trading-journal/internal/table"

// Store is the boundary to the persistent multi-sheet document. The core
// never assumes anything richer than whole-table reads and rewrites; the
// concrete backend owns header rows, cell formats and validation metadata.
type Store interface {
	// Header returns the first row of the named sheet.
	Header(sheet string) ([]string, error)

	// ReadAll returns the sheet's header and every data row.
	ReadAll(sheet string) (*table.Table, error)

	// ReplaceAll clears every data row and writes the table back,
	// applying the given column formats. The header row is untouched.
	ReplaceAll(sheet string, t *table.Table, formats []table.ColumnFormat) error

	// AppendRows writes rows after the sheet's last used row.
	AppendRows(sheet string, rows []table.Row, formats []table.ColumnFormat) error

	// ClearRows removes every data row, preserving the header and any
	// validation metadata attached to the sheet.
	ClearRows(sheet string) error
}
