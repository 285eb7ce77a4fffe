// Package excel loads spreadsheet workbooks into all-text tables.
package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/table"
)

// Workbook is an open spreadsheet. Close releases it.
type Workbook struct {
	f *excelize.File
}

// Open parses workbook bytes.
func Open(raw []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Workbook{f: f}, nil
}

// Sheets returns the sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.f.GetSheetList()
}

// Sheet reads one sheet as a Table: row 1 becomes the headers, every
// cell stays a string, and short rows are padded to the header width.
// An empty sheet yields an empty table.
func (w *Workbook) Sheet(name string) (*table.Table, error) {
	rows, err := w.f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return &table.Table{}, nil
	}
	header := rows[0]
	t := table.New(header...)
	for _, row := range rows[1:] {
		t.AppendRow(row...)
	}
	return t, nil
}

// First reads the first sheet of the workbook.
func (w *Workbook) First() (*table.Table, error) {
	sheets := w.Sheets()
	if len(sheets) == 0 {
		return &table.Table{}, nil
	}
	return w.Sheet(sheets[0])
}

func (w *Workbook) Close() error {
	return w.f.Close()
}
