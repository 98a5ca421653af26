// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	filesSheet   = "Files"
	summarySheet = "Summary"
)

var fileHeaders = []string{
	"File",
	"Name",
	"Status",
	"Failure",
	"HTTP Status",
	"Attempts",
	"Placeholders",
	"Message",
}

// cellWriter sets cell values and keeps the first error; later writes are
// no-ops.
type cellWriter struct {
	f   *excelize.File
	err error
}

func (w *cellWriter) write(sheet string, col, row int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err == nil {
		err = w.f.SetCellValue(sheet, cell, v)
	}
	if err != nil {
		w.err = fmt.Errorf("xlsx %s row %d col %d: %w", sheet, row, col, err)
	}
}

func writeXLSX(path string, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	// A new workbook starts with Sheet1; rename it rather than leave it empty.
	if err := f.SetSheetName("Sheet1", filesSheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	cw := &cellWriter{f: f}
	write := cw.write

	for i, h := range fileHeaders {
		write(filesSheet, i+1, 1, h)
	}
	for i, res := range r.Files {
		row := i + 2
		write(filesSheet, 1, row, res.File)
		write(filesSheet, 2, row, res.Name)
		write(filesSheet, 3, row, string(res.Status))
		write(filesSheet, 4, row, string(res.Kind))
		if res.StatusCode != 0 {
			write(filesSheet, 5, row, res.StatusCode)
		}
		if res.Attempts != 0 {
			write(filesSheet, 6, row, res.Attempts)
		}
		write(filesSheet, 7, row, strings.Join(res.Placeholders, ", "))
		write(filesSheet, 8, row, res.Message)
	}

	_ = f.SetColWidth(filesSheet, "A", "B", 32) // file, name
	_ = f.SetColWidth(filesSheet, "C", "D", 14) // status, failure
	_ = f.SetColWidth(filesSheet, "G", "G", 40) // placeholders
	_ = f.SetColWidth(filesSheet, "H", "H", 60) // message

	summary := [][2]any{
		{"Run ID", r.RunID},
		{"Folder", r.Folder},
		{"Endpoint", r.Endpoint},
		{"Kind", string(r.Kind)},
		{"Started", r.StartedAt.UTC().Format(time.RFC3339)},
		{"Finished", r.FinishedAt.UTC().Format(time.RFC3339)},
		{"Successful", r.Summary.Succeeded},
		{"Failed", r.Summary.Failed},
		{"Skipped", r.Summary.Skipped},
		{"Total", r.Summary.Total},
	}
	for i, kv := range summary {
		write(summarySheet, 1, i+1, kv[0])
		write(summarySheet, 2, i+1, kv[1])
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 14)
	_ = f.SetColWidth(summarySheet, "B", "B", 60)

	if cw.err != nil {
		return cw.err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write %s: %w", path, err)
	}
	return nil
}
