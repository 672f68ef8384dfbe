// Package sheets renders the run's outputs into a spreadsheet workbook. The
// workbook is rebuilt wholesale on every run; tabs never accrete stale rows.
package sheets

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Tab is one worksheet: a fixed header and its data rows.
type Tab struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Publish writes all tabs into a new workbook at path, replacing any
// existing file.
func Publish(path string, tabs []Tab) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, tab := range tabs {
		if i == 0 {
			// reuse the default sheet for the first tab
			if err := f.SetSheetName("Sheet1", tab.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(tab.Name); err != nil {
				return fmt.Errorf("create sheet %q: %w", tab.Name, err)
			}
		}

		header := make([]any, len(tab.Header))
		for j, h := range tab.Header {
			header[j] = h
		}
		if err := f.SetSheetRow(tab.Name, "A1", &header); err != nil {
			return fmt.Errorf("write header of %q: %w", tab.Name, err)
		}
		for r, row := range tab.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(tab.Name, cell, &row); err != nil {
				return fmt.Errorf("write row %d of %q: %w", r+2, tab.Name, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
