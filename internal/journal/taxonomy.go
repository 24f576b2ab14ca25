package journal

import (
	"fmt"

	"trading-journal/internal/table"
)

// Taxonomy is the classification reference loaded fresh each run from the
// Data Tags sheet. Each category is an independent label list; a label may
// legitimately appear in more than one category.
type Taxonomy struct {
	// Strategies maps a strategy label to its review SLA code
	// (EOD, EOW, D+3, or free text with no due-date rule).
	Strategies   map[string]string
	Sourced      map[string]struct{}
	Quality      map[string]struct{}
	ExitFeelings map[string]struct{}
}

// LoadTaxonomy builds the taxonomy from the Data Tags table.
func LoadTaxonomy(t *table.Table) (*Taxonomy, error) {
	for _, c := range []string{"Strategy", "Sourced", "Quality", "Exit Feeling", "Retro Due Date"} {
		if _, ok := t.Col(c); !ok {
			return nil, fmt.Errorf("data tags column %q: %w", c, ErrNotFound)
		}
	}

	tax := &Taxonomy{
		Strategies:   make(map[string]string),
		Sourced:      make(map[string]struct{}),
		Quality:      make(map[string]struct{}),
		ExitFeelings: make(map[string]struct{}),
	}
	for _, row := range t.Rows {
		if s := table.String(t.Value(row, "Strategy")); s != "" {
			tax.Strategies[s] = table.String(t.Value(row, "Retro Due Date"))
		}
		if s := table.String(t.Value(row, "Sourced")); s != "" {
			tax.Sourced[s] = struct{}{}
		}
		if s := table.String(t.Value(row, "Quality")); s != "" {
			tax.Quality[s] = struct{}{}
		}
		if s := table.String(t.Value(row, "Exit Feeling")); s != "" {
			tax.ExitFeelings[s] = struct{}{}
		}
	}
	return tax, nil
}
