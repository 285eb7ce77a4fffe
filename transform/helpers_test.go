package transform

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// fixedNow is the clock used by promoter tests: 15:04 UTC is 10:04 in
// the pipeline zone, so stamps are "010720241004".
var fixedNow = time.Date(2024, 7, 1, 15, 4, 0, 0, time.UTC)

func testClock() time.Time { return fixedNow }

func nopLog() zerolog.Logger { return zerolog.Nop() }

// buildXLSX creates a single-sheet workbook with the given header and
// rows.
func buildXLSX(t *testing.T, sheet string, header []string, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheet)
	writeSheet(t, f, sheet, header, rows)
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func writeSheet(t *testing.T, f *excelize.File, sheet string, header []string, rows [][]string) {
	t.Helper()
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		t.Fatalf("set header: %v", err)
	}
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
}
