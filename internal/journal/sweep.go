package journal

import (
	"fmt"
	"time"

	"trading-journal/internal/table"
)

// SweepJournal flips the 30D Retro flag to the due sentinel for every
// journal row dated more than staleDays before today, overwriting any
// prior value. It mutates the table in place and returns how many rows
// were flagged.
func SweepJournal(t *table.Table, today time.Time, staleDays int) (int, error) {
	for _, c := range []string{"Date", "30D Retro"} {
		if _, ok := t.Col(c); !ok {
			return 0, fmt.Errorf("journal column %q: %w", c, ErrSchema)
		}
	}

	flagged := 0
	for i := range t.Rows {
		d, ok := ParseDate(t.Value(t.Rows[i], "Date"))
		if !ok {
			continue
		}
		if daysBetween(today, d) > staleDays {
			t.Set(&t.Rows[i], "30D Retro", DueSentinel)
			flagged++
		}
	}
	return flagged, nil
}

// SweepRetros flips Retro Due Date to the due sentinel for every retro
// row whose due date has passed. Rows already due, not yet due, or with
// an unparseable due date pass through unchanged.
func SweepRetros(t *table.Table, today time.Time) (int, error) {
	if _, ok := t.Col("Retro Due Date"); !ok {
		return 0, fmt.Errorf("retro column %q: %w", "Retro Due Date", ErrSchema)
	}

	flagged := 0
	for i := range t.Rows {
		v := t.Value(t.Rows[i], "Retro Due Date")
		if table.String(v) == DueSentinel {
			continue
		}
		d, ok := ParseDate(v)
		if !ok {
			continue
		}
		if d.Before(dateOnly(today)) {
			t.Set(&t.Rows[i], "Retro Due Date", DueSentinel)
			flagged++
		}
	}
	return flagged, nil
}

// SweepIdeas ages out idea rows: rows older than staleDays with an unset
// disposition are marked Expired, and rows taken without a linked trade
// get the due sentinel in their Trade ID cell.
func SweepIdeas(t *table.Table, today time.Time, staleDays int) (int, error) {
	for _, c := range []string{"Date", "Filter", "Trade ID"} {
		if _, ok := t.Col(c); !ok {
			return 0, fmt.Errorf("ideas column %q: %w", c, ErrSchema)
		}
	}

	touched := 0
	for i := range t.Rows {
		row := t.Rows[i]
		if d, ok := ParseDate(t.Value(row, "Date")); ok &&
			daysBetween(today, d) > staleDays && table.IsEmpty(t.Value(row, "Filter")) {
			t.Set(&t.Rows[i], "Filter", FilterExpired)
			touched++
		}
		if table.String(t.Value(t.Rows[i], "Filter")) == FilterTaken &&
			table.IsEmpty(t.Value(t.Rows[i], "Trade ID")) {
			t.Set(&t.Rows[i], "Trade ID", DueSentinel)
			touched++
		}
	}
	return touched, nil
}
