package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"trading-journal/internal/table"
)

// CurrencyColumns are the import columns carrying dollar-formatted text.
var CurrencyColumns = []string{
	"Entry Price", "Exit Price", "Return $", "Avg Buy", "Avg Sell",
	"Net Return", "Commission", "Strike", "Cost", "Fees",
	"Return Share", "Best Exit $",
}

// ReadImport parses the broker export CSV into a table. The first record
// is the header; blank fields become nil cells.
func ReadImport(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read import %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("import %s has no header row: %w", path, ErrSchema)
	}

	tbl := table.New(records[0])
	for _, rec := range records[1:] {
		row := make(table.Row, len(rec))
		for i, v := range rec {
			if strings.TrimSpace(v) != "" {
				row[i] = v
			}
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}

// NormalizeImport coerces every currency column to a decimal value in
// place. A cell that fails to parse after stripping the currency symbol
// and thousands separators aborts the whole import.
func NormalizeImport(t *table.Table) error {
	for _, name := range CurrencyColumns {
		idx, ok := t.Col(name)
		if !ok {
			return fmt.Errorf("import column %q: %w", name, ErrSchema)
		}
		for i, row := range t.Rows {
			if idx >= len(row) || row[idx] == nil {
				continue
			}
			s, _ := row[idx].(string)
			d, err := ParseCurrency(s)
			if err != nil {
				return fmt.Errorf("import row %d column %q: %w", i+2, name, err)
			}
			row[idx] = d
		}
	}
	return nil
}

var currencyStripper = strings.NewReplacer("$", "", ",", "")

// ParseCurrency strips a leading dollar sign and thousands separators and
// parses the remainder as a decimal.
func ParseCurrency(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(currencyStripper.Replace(s))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("currency %q: %w", s, ErrValue)
	}
	return d, nil
}

// ImportFormats returns the presentation rules for the raw import mirror.
func ImportFormats() []table.ColumnFormat {
	formats := make([]table.ColumnFormat, 0, len(CurrencyColumns))
	for _, c := range CurrencyColumns {
		formats = append(formats, table.ColumnFormat{Column: c, Kind: table.FormatCurrency})
	}
	return formats
}
