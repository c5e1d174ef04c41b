// Package excel mirrors report records into a single-sheet xlsx workbook.
// It works on plain report values so the store never depends on it.
package excel

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"daily-report/internal/model"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

var headings = []string{"Date", "Category", "Issue", "Root Cause", "Action Taken", "Status"}

// Workbook is the on-disk mirror at a fixed path. The id column is
// deliberately absent from the sheet.
type Workbook struct {
	path string
}

func NewWorkbook(path string) *Workbook { return &Workbook{path: path} }

func (wb *Workbook) Path() string { return wb.path }

// Filename is the base name used for download attachments.
func (wb *Workbook) Filename() string { return filepath.Base(wb.path) }

// AppendRow adds one report row to the workbook, creating it with a
// header row when absent. The whole file is re-read and re-saved; if it
// is locked or unreadable the error is returned for the caller to log,
// the store write having already committed.
func (wb *Workbook) AppendRow(r model.Report) error {
	f, err := excelize.OpenFile(wb.path)
	if errors.Is(err, fs.ErrNotExist) {
		return wb.WriteFile([]model.Report{r})
	}
	if err != nil {
		return fmt.Errorf("open workbook %s: %w", wb.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("read sheet: %w", err)
	}
	setRow(f, len(rows)+1, r)

	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook %s: %w", wb.path, err)
	}
	return nil
}

// WriteFile regenerates the workbook from the given reports, in the
// given order, overwriting any existing file.
func (wb *Workbook) WriteFile(reports []model.Report) error {
	f := build(reports)
	defer f.Close()
	if err := f.SaveAs(wb.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", wb.path, err)
	}
	return nil
}

// Write streams a freshly built workbook to w without touching the
// file at the configured path.
func (wb *Workbook) Write(reports []model.Report, w io.Writer) error {
	f := build(reports)
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func build(reports []model.Report) *excelize.File {
	f := excelize.NewFile()

	col := 'A'
	for _, h := range headings {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}
	for i, r := range reports {
		setRow(f, i+2, r)
	}
	return f
}

func setRow(f *excelize.File, rowNo int, r model.Report) {
	values := []string{r.Date, r.Category, r.Issue, r.RootCause, r.ActionTaken, r.Status}
	col := 'A'
	for _, v := range values {
		f.SetCellValue(sheetName, string(col)+fmt.Sprint(rowNo), v)
		col++
	}
}
