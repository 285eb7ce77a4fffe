package excel

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook creates an xlsx in memory with the given sheets; each
// sheet gets the same small header+rows fixture.
func buildWorkbook(t *testing.T, sheets ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, name := range sheets {
		if i == 0 {
			f.SetSheetName("Sheet1", name)
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("new sheet %s: %v", name, err)
			}
		}
		if err := f.SetSheetRow(name, "A1", &[]interface{}{"col a", "col b"}); err != nil {
			t.Fatalf("set header: %v", err)
		}
		if err := f.SetSheetRow(name, "A2", &[]interface{}{"1", "2"}); err != nil {
			t.Fatalf("set row: %v", err)
		}
		// Short row: only the first cell set.
		if err := f.SetSheetRow(name, "A3", &[]interface{}{"only a"}); err != nil {
			t.Fatalf("set short row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestOpenAndSheetOrder(t *testing.T) {
	raw := buildWorkbook(t, "Enero 2024", "Notes")
	wb, err := Open(raw)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer wb.Close()

	sheets := wb.Sheets()
	if len(sheets) != 2 || sheets[0] != "Enero 2024" || sheets[1] != "Notes" {
		t.Fatalf("sheets = %v", sheets)
	}
}

func TestSheetPadsShortRows(t *testing.T) {
	raw := buildWorkbook(t, "Datos")
	wb, err := Open(raw)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer wb.Close()

	tb, err := wb.Sheet("Datos")
	if err != nil {
		t.Fatalf("Sheet: %v", err)
	}
	if len(tb.Columns) != 2 || tb.Columns[0] != "col a" {
		t.Fatalf("columns = %v", tb.Columns)
	}
	if tb.Len() != 2 {
		t.Fatalf("rows = %d", tb.Len())
	}
	if tb.Get(1, "col a") != "only a" || tb.Get(1, "col b") != "" {
		t.Errorf("short row = %v", tb.Rows[1])
	}
}

func TestFirst(t *testing.T) {
	raw := buildWorkbook(t, "Solo")
	wb, err := Open(raw)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer wb.Close()
	tb, err := wb.First()
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if tb.Get(0, "col b") != "2" {
		t.Errorf("first sheet rows = %v", tb.Rows)
	}
}
