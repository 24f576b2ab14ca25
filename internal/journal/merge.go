package journal

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"trading-journal/internal/table"
)

// LedgerColumns is the canonical Trade Log column order. The two
// multi-value import columns appear expanded into their fixed slots.
var LedgerColumns = []string{
	"Trade ID", "Status", "Symbol", "Size", "Open Date", "Close Date",
	"Setup 1", "Setup 2", "Setup 3", "Setup 4", "Setup 5", "Setup 6",
	"Mistakes 1", "Mistakes 2", "Mistakes 3", "Mistakes 4", "Mistakes 5",
	"Entry Price", "Exit Price", "Avg Buy", "Avg Sell", "Net Return",
	"Net Return %", "Type", "MAE", "MFE", "Best Exit $", "Best Exit %",
}

// ledgerCurrencyColumns get the 2-decimal currency format on rewrite.
var ledgerCurrencyColumns = []string{
	"Entry Price", "Exit Price", "Avg Buy", "Avg Sell", "Net Return",
	"MAE", "MFE", "Best Exit $",
}

// importCopyColumns are the single-valued import columns carried into the
// ledger under the same name.
var importCopyColumns = []string{
	"Status", "Symbol", "Size", "Open Date", "Close Date",
	"Entry Price", "Exit Price", "Avg Buy", "Avg Sell", "Net Return",
	"Type", "MAE", "MFE", "Best Exit $", "Best Exit %",
}

// netReturnFormula keeps Net Return % live: it references the same row's
// average-sell and average-buy cells so hand edits stay consistent.
const netReturnFormula = "({Avg Sell}-{Avg Buy})/{Avg Buy}"

// LedgerFormats returns the presentation rules for the Trade Log rewrite.
func LedgerFormats() []table.ColumnFormat {
	formats := make([]table.ColumnFormat, 0, len(ledgerCurrencyColumns)+3)
	for _, c := range ledgerCurrencyColumns {
		formats = append(formats, table.ColumnFormat{Column: c, Kind: table.FormatCurrency})
	}
	formats = append(formats,
		table.ColumnFormat{Column: "Close Date", Kind: table.FormatDate},
		table.ColumnFormat{Column: "Best Exit %", Kind: table.FormatPercent},
		table.ColumnFormat{Column: "Net Return %", Kind: table.FormatFormula, Formula: netReturnFormula},
	)
	return formats
}

// NextTradeID returns max(existing Trade IDs)+1, or 1 for an empty ledger.
func NextTradeID(ledger *table.Table) (int, error) {
	idx, ok := ledger.Col("Trade ID")
	if !ok {
		return 0, fmt.Errorf("ledger column %q: %w", "Trade ID", ErrSchema)
	}
	max := 0
	for _, row := range ledger.Rows {
		if idx >= len(row) {
			continue
		}
		if id, ok := cellInt(row[idx]); ok && id > max {
			max = id
		}
	}
	return max + 1, nil
}

// MergeLedger reconciles a normalized import into the existing ledger.
// Import rows whose Status is OPEN are dropped; every other row receives
// the next sequential Trade ID and has its Setups and Mistakes columns
// unpacked into fixed slots. The combined set is stably sorted by Close
// Date descending with unparseable dates last. It returns the full sorted
// ledger plus the newly built rows (both sharing the ledger header).
//
// Merging is append-only and deliberately not idempotent: running the
// same import twice appends a second set of rows under fresh IDs. The
// operator owns consuming each export exactly once.
func MergeLedger(ledger, imp *table.Table) (*table.Table, []table.Row, error) {
	for _, c := range LedgerColumns {
		if _, ok := ledger.Col(c); !ok {
			return nil, nil, fmt.Errorf("ledger column %q: %w", c, ErrSchema)
		}
	}
	for _, c := range append([]string{"Setups", "Mistakes"}, importCopyColumns...) {
		if _, ok := imp.Col(c); !ok {
			return nil, nil, fmt.Errorf("import column %q: %w", c, ErrSchema)
		}
	}

	nextID, err := NextTradeID(ledger)
	if err != nil {
		return nil, nil, err
	}

	var newRows []table.Row
	for _, src := range imp.Rows {
		if table.String(imp.Value(src, "Status")) == StatusOpen {
			continue
		}
		row := make(table.Row, len(ledger.Header))
		ledger.Set(&row, "Trade ID", nextID)
		for _, c := range importCopyColumns {
			ledger.Set(&row, c, imp.Value(src, c))
		}
		for i, v := range UnpackSlots(imp.Value(src, "Setups"), SetupSlots) {
			ledger.Set(&row, "Setup "+strconv.Itoa(i+1), v)
		}
		for i, v := range UnpackSlots(imp.Value(src, "Mistakes"), MistakeSlots) {
			ledger.Set(&row, "Mistakes "+strconv.Itoa(i+1), v)
		}
		newRows = append(newRows, row)
		nextID++
	}

	merged := &table.Table{Header: ledger.Header}
	merged.Rows = append(merged.Rows, ledger.Rows...)
	merged.Rows = append(merged.Rows, newRows...)

	// Coerce the business date once so the sort key is a real date.
	closeIdx, _ := merged.Col("Close Date")
	for i := range merged.Rows {
		if d, ok := ParseDate(merged.Value(merged.Rows[i], "Close Date")); ok {
			merged.Set(&merged.Rows[i], "Close Date", d)
		} else {
			merged.Set(&merged.Rows[i], "Close Date", nil)
		}
	}

	sort.SliceStable(merged.Rows, func(i, j int) bool {
		di, iOK := cellDate(merged.Rows[i], closeIdx)
		dj, jOK := cellDate(merged.Rows[j], closeIdx)
		switch {
		case !iOK:
			return false // nil dates sort last
		case !jOK:
			return true
		default:
			return di.After(dj)
		}
	})

	return merged, newRows, nil
}

func cellDate(row table.Row, idx int) (time.Time, bool) {
	if idx >= len(row) {
		return time.Time{}, false
	}
	d, ok := row[idx].(time.Time)
	return d, ok
}

// cellInt reads an identifier cell that may round-trip through text or a
// numeric sheet type.
func cellInt(v any) (int, bool) {
	switch id := v.(type) {
	case int:
		return id, true
	case int64:
		return int(id), true
	case float64:
		return int(id), true
	case decimal.Decimal:
		return int(id.IntPart()), true
	case string:
		s := strings.TrimSpace(id)
		if s == "" {
			return 0, false
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}
