package journal

import (
	"fmt"
	"strconv"
	"time"

	"trading-journal/internal/table"
)

// RetroColumns is the canonical Retro sheet column order.
var RetroColumns = []string{
	"Trade ID", "Symbol", "Close Date", "Entry Price", "Exit Price",
	"Avg Buy", "Avg Sell", "Net Return", "Status",
	"Strategy", "Sourced", "Quality", "Exit Feeling", "Retro Due Date",
}

// retroCopyColumns are carried from the merged trade row unchanged.
var retroCopyColumns = []string{
	"Trade ID", "Symbol", "Close Date", "Entry Price", "Exit Price",
	"Avg Buy", "Avg Sell", "Net Return", "Status",
}

var retroCurrencyColumns = []string{
	"Entry Price", "Exit Price", "Avg Buy", "Avg Sell", "Net Return",
}

// RetroFormats returns the presentation rules for the Retro sheet rewrite.
func RetroFormats() []table.ColumnFormat {
	formats := make([]table.ColumnFormat, 0, len(retroCurrencyColumns)+2)
	for _, c := range retroCurrencyColumns {
		formats = append(formats, table.ColumnFormat{Column: c, Kind: table.FormatCurrency})
	}
	return append(formats,
		table.ColumnFormat{Column: "Close Date", Kind: table.FormatDate},
		table.ColumnFormat{Column: "Retro Due Date", Kind: table.FormatDate},
	)
}

// DueDate computes the review due date for a strategy SLA code. The
// second return is false for codes with no due-date rule.
func DueDate(code string, close time.Time) (time.Time, bool) {
	switch code {
	case "EOD":
		return close, true
	case "EOW":
		// End of the close date's week, Sunday.
		return close.AddDate(0, 0, 6-pyWeekday(close)), true
	case "D+3":
		return close.AddDate(0, 0, 3), true
	}
	return time.Time{}, false
}

// BuildRetros derives one retro row per newly merged trade row. The six
// setup slots are scanned in order with no early exit, so a later slot's
// label overwrites an earlier match. Last match wins for Strategy,
// Sourced and Quality alike. The five mistake slots are scanned the same
// way for Exit Feeling. A strategy match also computes Retro Due Date
// from the strategy's SLA code.
//
// The header parameter is the ledger header the rows were built against;
// output rows follow RetroColumns order.
func BuildRetros(header []string, rows []table.Row, tax *Taxonomy) ([]table.Row, error) {
	src := &table.Table{Header: header}
	for _, c := range retroCopyColumns {
		if _, ok := src.Col(c); !ok {
			return nil, fmt.Errorf("trade column %q: %w", c, ErrSchema)
		}
	}
	dst := table.New(RetroColumns)

	retros := make([]table.Row, 0, len(rows))
	for _, trade := range rows {
		out := make(table.Row, len(RetroColumns))
		for _, c := range retroCopyColumns {
			dst.Set(&out, c, src.Value(trade, c))
		}

		for i := 1; i <= SetupSlots; i++ {
			s := table.String(src.Value(trade, "Setup "+strconv.Itoa(i)))
			if s == "" {
				continue
			}
			if code, ok := tax.Strategies[s]; ok {
				dst.Set(&out, "Strategy", s)
				if close, ok := ParseDate(src.Value(trade, "Close Date")); ok {
					if due, ok := DueDate(code, close); ok {
						dst.Set(&out, "Retro Due Date", due)
					}
				}
			}
			if _, ok := tax.Sourced[s]; ok {
				dst.Set(&out, "Sourced", s)
			}
			if _, ok := tax.Quality[s]; ok {
				dst.Set(&out, "Quality", s)
			}
		}
		for i := 1; i <= MistakeSlots; i++ {
			s := table.String(src.Value(trade, "Mistakes "+strconv.Itoa(i)))
			if s == "" {
				continue
			}
			if _, ok := tax.ExitFeelings[s]; ok {
				dst.Set(&out, "Exit Feeling", s)
			}
		}
		retros = append(retros, out)
	}
	return retros, nil
}
