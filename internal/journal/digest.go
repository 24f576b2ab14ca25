package journal

import (
	"fmt"
	"sort"
	"time"

	"trading-journal/internal/table"
)

// OnePagerColumns is the Weekly One Pager projection. "Game Plan" is the
// presentation name for the journal's "Weekly One Pager" column.
var OnePagerColumns = []string{
	"Date", "Symbol", "Comments", "Key Support Level",
	"Key Resistance Level", "Game Plan",
}

// journalDigestColumns must exist on the Journal sheet to build a digest.
var journalDigestColumns = []string{
	"Date", "Symbol", "Comments", "Key Support Level",
	"Key Resistance Level", "Weekly One Pager", "Followup",
}

// BuildDigest projects the Journal sheet onto the weekly one-pager.
// It keeps rows dated within the current week (Monday through Sunday
// inclusive) whose Weekly One Pager cell is not the exclusion literal,
// ranks them (0 for watch-list symbols, 1 for follow-ups, 2 otherwise)
// and sorts by date descending then priority ascending, stably, so
// same-day high-priority rows surface first. Rows come back in
// OnePagerColumns order; the digest is fully regenerated every run.
func BuildDigest(journal *table.Table, watchList []string, today time.Time) ([]table.Row, error) {
	for _, c := range journalDigestColumns {
		if _, ok := journal.Col(c); !ok {
			return nil, fmt.Errorf("journal column %q: %w", c, ErrSchema)
		}
	}

	monday := dateOnly(today).AddDate(0, 0, -pyWeekday(today))
	sunday := monday.AddDate(0, 0, 6)

	type entry struct {
		date     time.Time
		priority int
		row      table.Row
	}
	var entries []entry
	for _, row := range journal.Rows {
		d, ok := ParseDate(journal.Value(row, "Date"))
		if !ok || d.Before(monday) || d.After(sunday) {
			continue
		}
		if table.String(journal.Value(row, "Weekly One Pager")) == OnePagerExcluded {
			continue
		}

		priority := DigestPriority(
			table.String(journal.Value(row, "Symbol")),
			table.String(journal.Value(row, "Followup")),
			watchList,
		)

		entries = append(entries, entry{date: d, priority: priority, row: table.Row{
			d,
			journal.Value(row, "Symbol"),
			journal.Value(row, "Comments"),
			journal.Value(row, "Key Support Level"),
			journal.Value(row, "Key Resistance Level"),
			journal.Value(row, "Weekly One Pager"),
		}})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].date.Equal(entries[j].date) {
			return entries[i].date.After(entries[j].date)
		}
		return entries[i].priority < entries[j].priority
	})

	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, e.row)
	}
	return rows, nil
}

// DigestPriority exposes the ranking rule on its own for callers that
// only need the classification.
func DigestPriority(symbol, followup string, watchList []string) int {
	for _, s := range watchList {
		if s == symbol {
			return 0
		}
	}
	if followup == FollowupYes {
		return 1
	}
	return 2
}
