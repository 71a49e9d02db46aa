package models

// Table is a parsed CSV: an ordered header and rows as column→cell maps.
// Cells stay as source strings; numeric interpretation happens in the
// summary package so the wire payloads are lossless.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// NewTable creates an empty table for the given header.
func NewTable(columns []string) *Table {
	return &Table{
		Columns: columns,
		Rows:    make([]map[string]string, 0),
	}
}

// RowCount returns the number of data rows (header excluded).
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Preview returns at most n rows from the top of the table.
func (t *Table) Preview(n int) []map[string]string {
	if n >= len(t.Rows) {
		return t.Rows
	}
	return t.Rows[:n]
}
