package analytics

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

const (
	sheetDaily   = "Daily views"
	sheetTotals  = "Totals"
	dayLayoutXLS = "2006-01-02"
)

// BuildWorkbook renders a summary as a two sheet workbook: one row per day
// with page views, and the event and device totals.
func BuildWorkbook(s *Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetDaily); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetTotals); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	rows := [][]interface{}{{"Day", "Page views"}}
	for _, d := range s.Daily {
		rows = append(rows, []interface{}{d.Day.Format(dayLayoutXLS), d.Views})
	}
	if err := writeRows(f, sheetDaily, rows); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(sheetDaily, "A1", "B1", bold)

	totals := [][]interface{}{
		{"Portfolio", s.PortfolioID.String()},
		{"Since", s.Since.Format(dayLayoutXLS)},
		{"Days", s.Days},
		{},
		{"Event", "Total"},
	}
	for _, t := range []EventType{EventPageView, EventClick, EventScrollDepth} {
		totals = append(totals, []interface{}{string(t), s.Totals[t]})
	}
	totals = append(totals, []interface{}{}, []interface{}{"Device", "Page views"})
	for _, device := range sortedKeys(s.Devices) {
		totals = append(totals, []interface{}{device, s.Devices[device]})
	}
	if err := writeRows(f, sheetTotals, totals); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(sheetTotals, "A5", "B5", bold)

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
