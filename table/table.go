// Package table holds the row-oriented string table that every pipeline
// stage works with. All cells are strings; typed interpretation (dates,
// ages) happens explicitly through the parse helpers, never at load time.
package table

// Table is an ordered set of columns plus rows of string cells.
// Rows may be shorter than Columns; missing cells read as "".
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given column order.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColIndex returns the index of the named column, or -1.
func (t *Table) ColIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.ColIndex(name) >= 0
}

// Get returns the cell at (row, column name), "" when the column is
// absent or the row is short.
func (t *Table) Get(row int, name string) string {
	i := t.ColIndex(name)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// Set writes the cell at (row, column name), padding the row as needed.
// Unknown columns are ignored.
func (t *Table) Set(row int, name, value string) {
	i := t.ColIndex(name)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return
	}
	for len(t.Rows[row]) <= i {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][i] = value
}

// AppendColumn adds a new column filled with the given value for every
// existing row. Adding an already-present column is a no-op.
func (t *Table) AppendColumn(name, fill string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		for len(t.Rows[i]) < len(t.Columns)-1 {
			t.Rows[i] = append(t.Rows[i], "")
		}
		t.Rows[i] = append(t.Rows[i], fill)
	}
}

// AppendRow adds one row, padded or truncated to the column count.
func (t *Table) AppendRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Project returns a new table with exactly the given columns in the
// given order. Columns absent from t come out all-empty.
func (t *Table) Project(columns []string) *Table {
	out := New(columns...)
	src := make([]int, len(columns))
	for i, c := range columns {
		src[i] = t.ColIndex(c)
	}
	for r := range t.Rows {
		row := make([]string, len(columns))
		for i, si := range src {
			if si >= 0 && si < len(t.Rows[r]) {
				row[i] = t.Rows[r][si]
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Concat unions tables row-wise. The output column order is the first
// table's columns followed by columns newly seen in later tables; cells
// for columns a source table lacks are empty. A deterministic column
// order is what makes heterogeneous batches safe to concatenate.
func Concat(tables ...*Table) *Table {
	out := &Table{}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if out.ColIndex(c) < 0 {
				out.Columns = append(out.Columns, c)
			}
		}
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		src := make([]int, len(out.Columns))
		for i, c := range out.Columns {
			src[i] = t.ColIndex(c)
		}
		for r := range t.Rows {
			row := make([]string, len(out.Columns))
			for i, si := range src {
				if si >= 0 && si < len(t.Rows[r]) {
					row[i] = t.Rows[r][si]
				}
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// DropEmptyKeyRows removes rows whose cells are empty (after trimming)
// in every one of the given key columns.
func (t *Table) DropEmptyKeyRows(keys []string) {
	idx := make([]int, 0, len(keys))
	for _, k := range keys {
		if i := t.ColIndex(k); i >= 0 {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return
	}
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		empty := true
		for _, i := range idx {
			if i < len(row) && trimSpace(row[i]) != "" {
				empty = false
				break
			}
		}
		if !empty {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
}

// TrimCells trims leading/trailing whitespace from every cell.
func (t *Table) TrimCells() {
	for r := range t.Rows {
		for c := range t.Rows[r] {
			t.Rows[r][c] = trimSpace(t.Rows[r][c])
		}
	}
}
