package tasks

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"trading-journal/internal/journal"
	"trading-journal/internal/table"
	"trading-journal/internal/workbook"
)

// newJournalWorkbook writes a workbook on disk with every sheet the tasks
// touch, so flows can be exercised through the real store instead of the
// in-memory one.
func newJournalWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.xlsx")

	sheets := map[string][]string{
		journal.SheetJournal: {"Date", "Symbol", "Comments", "Key Support Level",
			"Key Resistance Level", "Weekly One Pager", "Followup", "30D Retro"},
		journal.SheetImportMirror: exportHeader,
		journal.SheetTradeLog:     journal.LedgerColumns,
		journal.SheetRetro:        journal.RetroColumns,
		journal.SheetDataTags: {"Strategy", "Sourced", "Quality",
			"Exit Feeling", "Retro Due Date"},
		journal.SheetIdeas:    {"Date", "Symbol", "Filter", "Trade ID"},
		journal.SheetOnePager: journal.OnePagerColumns,
	}
	f := excelize.NewFile()
	for sheet, header := range sheets {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		for i, name := range header {
			ref, _ := excelize.CoordinatesToCellName(i+1, 1)
			require.NoError(t, f.SetCellValue(sheet, ref, name))
		}
	}
	require.NoError(t, f.SetCellValue(journal.SheetDataTags, "A2", "Breakout"))
	require.NoError(t, f.SetCellValue(journal.SheetDataTags, "E2", "EOD"))
	require.NoError(t, f.DeleteSheet("Sheet1"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

// Values round-trip through the workbook as formatted text, so the second
// run reads back rendered dates, percents and currency strings. Close
// dates, percent magnitudes and the due-date sweep must all survive that.
func TestImportTwiceThroughWorkbook(t *testing.T) {
	csvPath := writeExportCSV(t,
		exportRow(map[string]string{
			"Status": "WIN", "Symbol": "AAPL", "Size": "100",
			"Open Date": "2024-01-08", "Close Date": "2024-01-10",
			"Setups": "Breakout", "Type": "Stock",
			"Avg Buy": "$10.00", "Avg Sell": "$12.50",
			"Net Return": "$250.00", "Best Exit %": "25",
		}),
	)
	wbPath := newJournalWorkbook(t)
	wb, err := workbook.Open(wbPath, zap.NewNop())
	require.NoError(t, err)
	defer wb.Close()

	cfg := testConfig(csvPath)
	cfg.Journal.WorkbookPath = wbPath
	cfg.Journal.Backup = false
	r := testRunner(cfg, wb, nil, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))

	require.NoError(t, r.Import())
	require.NoError(t, r.Import())

	ledger, err := wb.ReadAll(journal.SheetTradeLog)
	require.NoError(t, err)
	require.Len(t, ledger.Rows, 2)
	for i, row := range ledger.Rows {
		d, ok := journal.ParseDate(ledger.Value(row, "Close Date"))
		require.True(t, ok, "row %d close date must survive the rewrite", i)
		assert.Equal(t, "2024-01-10", d.Format("2006-01-02"))
		buy, err := journal.ParseCurrency(table.String(ledger.Value(row, "Avg Buy")))
		require.NoError(t, err, "row %d avg buy must stay numeric-parseable", i)
		assert.True(t, buy.Equal(decimal.NewFromInt(10)))
	}

	f, err := excelize.OpenFile(wbPath)
	require.NoError(t, err)
	defer f.Close()
	bestExitCol := 0
	for i, name := range journal.LedgerColumns {
		if name == "Best Exit %" {
			bestExitCol = i + 1
		}
	}
	for rowNum := 2; rowNum <= 3; rowNum++ {
		ref, _ := excelize.CoordinatesToCellName(bestExitCol, rowNum)
		raw, err := f.GetCellValue(journal.SheetTradeLog, ref, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		assert.Equal(t, "0.25", raw, "best exit percent keeps raw/100 on re-merge")
	}

	require.NoError(t, r.Reminders())
	retros, err := wb.ReadAll(journal.SheetRetro)
	require.NoError(t, err)
	require.Len(t, retros.Rows, 2)
	for _, row := range retros.Rows {
		assert.Equal(t, "DUE", retros.Value(row, "Retro Due Date"),
			"stored due dates must still parse and flip once overdue")
	}
}
