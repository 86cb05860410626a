// Package signals parses refinery signal workbooks into movement inputs.
package signals

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/camin-energy/tankflow/internal/model"
)

// Result holds the parsed signals plus row-level errors. A bad row is
// reported and skipped; it never aborts the rest of the workbook.
type Result struct {
	Signals []model.ParsedSignal
	Errors  []string
}

// Column header variants accepted for each required field. Header matching
// is case-insensitive and searched within the first ten rows.
var (
	signalIDHeaders = []string{"signal id", "signal_id", "id", "signal"}
	dateHeaders     = []string{"load date", "load_date", "date", "scheduled date", "scheduled_date"}
	tankHeaders     = []string{"refinery tank", "refinery_tank", "source tank", "source_tank", "tank"}
	volumeHeaders   = []string{"volume", "quantity", "amount", "vol"}
)

const headerScanRows = 10

// dateLayouts are tried in order when a date cell arrives as text.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/06",
	"02/01/2006",
	"01-02-06",
	"2-Jan-06",
}

// Parse reads refinery signals from an Excel workbook. The header row is
// located by scanning for known column names, so the sheet may carry title
// rows above the table.
func Parse(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	cols, headerRow, err := locateHeaders(rows)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		signal, rowErr := parseRow(row, cols)
		if rowErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, rowErr))
			continue
		}
		result.Signals = append(result.Signals, signal)
	}
	return result, nil
}

// columnMap holds the located column index for each required field.
type columnMap struct {
	signalID int
	date     int
	tank     int
	volume   int
}

func locateHeaders(rows [][]string) (columnMap, int, error) {
	cols := columnMap{signalID: -1, date: -1, tank: -1, volume: -1}

	limit := headerScanRows
	if len(rows) < limit {
		limit = len(rows)
	}

	for rowIdx := 0; rowIdx < limit; rowIdx++ {
		for colIdx, cell := range rows[rowIdx] {
			header := strings.ToLower(strings.TrimSpace(cell))
			switch {
			case contains(signalIDHeaders, header):
				cols.signalID = colIdx
			case contains(dateHeaders, header):
				cols.date = colIdx
			case contains(tankHeaders, header):
				cols.tank = colIdx
			case contains(volumeHeaders, header):
				cols.volume = colIdx
			}
		}
		if cols.signalID >= 0 || cols.date >= 0 || cols.tank >= 0 || cols.volume >= 0 {
			var missing []string
			if cols.signalID < 0 {
				missing = append(missing, "signal id")
			}
			if cols.date < 0 {
				missing = append(missing, "load date")
			}
			if cols.tank < 0 {
				missing = append(missing, "refinery tank")
			}
			if cols.volume < 0 {
				missing = append(missing, "volume")
			}
			if len(missing) > 0 {
				return cols, rowIdx, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
			}
			return cols, rowIdx, nil
		}
	}
	return cols, 0, fmt.Errorf("no header row found in first %d rows", headerScanRows)
}

func parseRow(row []string, cols columnMap) (model.ParsedSignal, error) {
	signalID := strings.TrimSpace(cellAt(row, cols.signalID))
	tankName := strings.TrimSpace(cellAt(row, cols.tank))
	dateRaw := strings.TrimSpace(cellAt(row, cols.date))
	volumeRaw := strings.TrimSpace(cellAt(row, cols.volume))

	if signalID == "" || tankName == "" || volumeRaw == "" {
		return model.ParsedSignal{}, fmt.Errorf("missing required field(s)")
	}

	loadDate, err := parseDate(dateRaw)
	if err != nil {
		return model.ParsedSignal{}, err
	}

	volume, err := strconv.ParseFloat(strings.ReplaceAll(volumeRaw, ",", ""), 64)
	if err != nil {
		return model.ParsedSignal{}, fmt.Errorf("invalid volume %q", volumeRaw)
	}
	if volume <= 0 {
		return model.ParsedSignal{}, fmt.Errorf("volume must be positive")
	}

	return model.ParsedSignal{
		SignalID:     signalID,
		RefineryTank: tankName,
		LoadDate:     loadDate,
		Volume:       volume,
	}, nil
}

func parseDate(raw string) (model.CivilDate, error) {
	if raw == "" {
		return "", fmt.Errorf("missing load date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return model.NewCivilDate(t), nil
		}
	}
	return "", fmt.Errorf("invalid date format %q", raw)
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
