package workbook

import (
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"trading-journal/internal/journal"
	"trading-journal/internal/table"
)

func newTestWorkbook(t *testing.T, sheets map[string][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.xlsx")

	f := excelize.NewFile()
	for sheet, header := range sheets {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		for i, name := range header {
			ref, _ := excelize.CoordinatesToCellName(i+1, 1)
			require.NoError(t, f.SetCellValue(sheet, ref, name))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestReadAllRoundTrip(t *testing.T) {
	path := newTestWorkbook(t, map[string][]string{
		"Trades": {"Trade ID", "Symbol", "Net Return"},
	})
	w, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	in := table.New([]string{"Trade ID", "Symbol", "Net Return"})
	in.Rows = append(in.Rows,
		table.Row{1, "AAPL", decimal.RequireFromString("1500.50")},
		table.Row{2, "TSLA", nil},
	)
	require.NoError(t, w.ReplaceAll("Trades", in, nil))

	out, err := w.ReadAll("Trades")
	require.NoError(t, err)
	assert.Equal(t, []string{"Trade ID", "Symbol", "Net Return"}, out.Header)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "AAPL", out.Value(out.Rows[0], "Symbol"))
	assert.Nil(t, out.Value(out.Rows[1], "Net Return"))
}

func TestReplaceAllShrinksSheet(t *testing.T) {
	path := newTestWorkbook(t, map[string][]string{"Trades": {"Trade ID", "Symbol"}})
	w, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	big := table.New([]string{"Trade ID", "Symbol"})
	big.Rows = append(big.Rows, table.Row{1, "A"}, table.Row{2, "B"}, table.Row{3, "C"})
	require.NoError(t, w.ReplaceAll("Trades", big, nil))

	small := table.New([]string{"Trade ID", "Symbol"})
	small.Rows = append(small.Rows, table.Row{9, "Z"})
	require.NoError(t, w.ReplaceAll("Trades", small, nil))

	out, err := w.ReadAll("Trades")
	require.NoError(t, err)
	require.Len(t, out.Rows, 1, "stale rows from the larger write are blanked")
	assert.Equal(t, "Z", out.Value(out.Rows[0], "Symbol"))
}

func TestReplaceAllAppliesFormats(t *testing.T) {
	header := []string{"Avg Buy", "Avg Sell", "Net Return %", "Best Exit %", "Retro Due Date"}
	path := newTestWorkbook(t, map[string][]string{"Trades": header})
	w, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	in := table.New(header)
	in.Rows = append(in.Rows, table.Row{
		decimal.RequireFromString("10.00"),
		decimal.RequireFromString("12.50"),
		nil,
		decimal.RequireFromString("25"),
		time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
	})
	formats := []table.ColumnFormat{
		{Column: "Avg Buy", Kind: table.FormatCurrency},
		{Column: "Avg Sell", Kind: table.FormatCurrency},
		{Column: "Net Return %", Kind: table.FormatFormula, Formula: "({Avg Sell}-{Avg Buy})/{Avg Buy}"},
		{Column: "Best Exit %", Kind: table.FormatPercent},
		{Column: "Retro Due Date", Kind: table.FormatDate},
	}
	require.NoError(t, w.ReplaceAll("Trades", in, formats))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	formula, err := f.GetCellFormula("Trades", "C2")
	require.NoError(t, err)
	assert.Equal(t, "(B2-A2)/A2", formula, "net return percent is live, not a literal")

	raw, err := f.GetCellValue("Trades", "D2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "0.25", raw, "percent cells store raw/100")
}

func TestReplaceAllFormattedReadBackStaysTyped(t *testing.T) {
	header := []string{"Avg Buy", "Best Exit %", "Close Date"}
	path := newTestWorkbook(t, map[string][]string{"Trades": header})
	w, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	formats := []table.ColumnFormat{
		{Column: "Avg Buy", Kind: table.FormatCurrency},
		{Column: "Best Exit %", Kind: table.FormatPercent},
		{Column: "Close Date", Kind: table.FormatDate},
	}
	in := table.New(header)
	in.Rows = append(in.Rows, table.Row{
		decimal.RequireFromString("1500.50"),
		decimal.RequireFromString("25"),
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, w.ReplaceAll("Trades", in, formats))

	// Rewrite what ReadAll hands back, the way a second run does.
	out, err := w.ReadAll("Trades")
	require.NoError(t, err)
	require.NoError(t, w.ReplaceAll("Trades", out, formats))

	again, err := w.ReadAll("Trades")
	require.NoError(t, err)
	require.Len(t, again.Rows, 1)
	d, ok := journal.ParseDate(again.Value(again.Rows[0], "Close Date"))
	require.True(t, ok, "close date survives a formatted rewrite")
	assert.Equal(t, "2024-01-10", d.Format("2006-01-02"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	raw, err := f.GetCellValue("Trades", "A2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1500.5", raw, "currency cell stays numeric, not display text")

	raw, err = f.GetCellValue("Trades", "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "0.25", raw, "percent cell keeps raw/100 across rewrites")

	raw, err = f.GetCellValue("Trades", "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	_, err = strconv.ParseFloat(raw, 64)
	assert.NoError(t, err, "date cell stays a serial number, not text")
}

func TestReplaceAllUnknownFormatColumn(t *testing.T) {
	path := newTestWorkbook(t, map[string][]string{"Trades": {"Trade ID"}})
	w, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	in := table.New([]string{"Trade ID"})
	err = w.ReplaceAll("Trades", in, []table.ColumnFormat{{Column: "Missing", Kind: table.FormatCurrency}})
	assert.ErrorIs(t, err, journal.ErrSchema)
}

func TestClearRowsAndAppend(t *testing.T) {
	path := newTestWorkbook(t, map[string][]string{"Digest": {"Date", "Symbol"}})
	w, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	in := table.New([]string{"Date", "Symbol"})
	in.Rows = append(in.Rows, table.Row{"2024-03-04", "SPY"})
	require.NoError(t, w.ReplaceAll("Digest", in, nil))
	require.NoError(t, w.ClearRows("Digest"))

	out, err := w.ReadAll("Digest")
	require.NoError(t, err)
	assert.Empty(t, out.Rows)

	require.NoError(t, w.AppendRows("Digest", []table.Row{{"2024-03-05", "QQQ"}}, nil))
	out, err = w.ReadAll("Digest")
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "QQQ", out.Value(out.Rows[0], "Symbol"))
}

func TestMissingSheet(t *testing.T) {
	path := newTestWorkbook(t, map[string][]string{"Trades": {"Trade ID"}})
	w, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	_, err = w.ReadAll("Nope")
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestBackupAndPrune(t *testing.T) {
	path := newTestWorkbook(t, map[string][]string{"Trades": {"Trade ID"}})
	w, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.CheckWritable())
	require.NoError(t, w.EnsureClosed())

	first, err := w.CreateBackup()
	require.NoError(t, err)
	assert.FileExists(t, first)

	second, err := w.CreateBackup()
	require.NoError(t, err)
	assert.FileExists(t, second)
	if first != second {
		assert.NoFileExists(t, first, "older backups are pruned")
	}
}
