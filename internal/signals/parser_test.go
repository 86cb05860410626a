package signals

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/camin-energy/tankflow/internal/model"
)

// buildWorkbook writes rows of string cells to an in-memory xlsx file.
func buildWorkbook(t *testing.T, rows [][]string) io.Reader {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, ref, cell))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestParse_BasicWorkbook(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"Signal ID", "Load Date", "Refinery Tank", "Volume"},
		{"SIG-001", "2026-09-01", "RF-TK-01", "1200.5"},
		{"SIG-002", "2026-09-03", "RF-TK-02", "800"},
	})

	result, err := Parse(r)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Signals, 2)

	assert.Equal(t, "SIG-001", result.Signals[0].SignalID)
	assert.Equal(t, "RF-TK-01", result.Signals[0].RefineryTank)
	assert.Equal(t, model.CivilDate("2026-09-01"), result.Signals[0].LoadDate)
	assert.InDelta(t, 1200.5, result.Signals[0].Volume, 0.001)
}

func TestParse_FlexibleHeadersAndTitleRows(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"Monthly Refinery Nominations"},
		{},
		{"ID", "Date", "Source Tank", "Quantity"},
		{"SIG-010", "2026-09-10", "RF-TK-07", "450"},
	})

	result, err := Parse(r)
	require.NoError(t, err)
	require.Len(t, result.Signals, 1)
	assert.Equal(t, "SIG-010", result.Signals[0].SignalID)
}

func TestParse_RowErrorsDoNotAbortBatch(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"Signal ID", "Load Date", "Tank", "Volume"},
		{"SIG-001", "2026-09-01", "RF-TK-01", "1000"},
		{"SIG-002", "not a date", "RF-TK-02", "500"},
		{"SIG-003", "2026-09-02", "RF-TK-03", "-10"},
		{"", "2026-09-03", "RF-TK-04", "200"},
		{"SIG-005", "2026-09-04", "RF-TK-05", "750"},
	})

	result, err := Parse(r)
	require.NoError(t, err)
	require.Len(t, result.Signals, 2)
	assert.Equal(t, "SIG-001", result.Signals[0].SignalID)
	assert.Equal(t, "SIG-005", result.Signals[1].SignalID)

	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "row 3")
	assert.Contains(t, result.Errors[0], "invalid date")
	assert.Contains(t, result.Errors[1], "must be positive")
	assert.Contains(t, result.Errors[2], "missing required field")
}

func TestParse_MissingColumns(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"Signal ID", "Load Date"},
		{"SIG-001", "2026-09-01"},
	})

	_, err := Parse(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
	assert.Contains(t, err.Error(), "volume")
}

func TestParse_NoHeaderRow(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"just", "some", "text"},
		{"more", "prose", "here"},
	})

	_, err := Parse(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestParse_SkipsEmptyRows(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"Signal ID", "Load Date", "Tank", "Volume"},
		{"SIG-001", "2026-09-01", "RF-TK-01", "1000"},
		{},
		{"SIG-002", "2026-09-02", "RF-TK-02", "300"},
	})

	result, err := Parse(r)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Signals, 2)
}
