// Package table holds the ordered row/column result tables produced by
// interpolation queries and radial profiles, and their CSV form.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Table is a column-ordered table of float64 values. Row order is
// significant: producers append rows in their documented order and the
// CSV output preserves it.
type Table struct {
	cols []string
	data [][]float64 // one slice per column, parallel to cols
}

// New creates an empty table with the given column names, in order.
func New(cols ...string) *Table {
	t := &Table{
		cols: append([]string(nil), cols...),
		data: make([][]float64, len(cols)),
	}
	return t
}

// Columns returns the column names in output order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.data) == 0 {
		return 0
	}
	return len(t.data[0])
}

// AppendRow appends one value per column, in column order.
func (t *Table) AppendRow(vals ...float64) error {
	if len(vals) != len(t.cols) {
		return fmt.Errorf("table: row has %d values for %d columns", len(vals), len(t.cols))
	}
	for i, v := range vals {
		t.data[i] = append(t.data[i], v)
	}
	return nil
}

// Column returns the values of the named column, or nil if absent.
func (t *Table) Column(name string) []float64 {
	for i, c := range t.cols {
		if c == name {
			return t.data[i]
		}
	}
	return nil
}

// WriteCSV writes the table as comma-separated text with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.cols); err != nil {
		return err
	}
	row := make([]string, len(t.cols))
	for r := 0; r < t.Len(); r++ {
		for c := range t.cols {
			row[c] = strconv.FormatFloat(t.data[c][r], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the table to a file, creating or truncating it.
func (t *Table) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("table: create %s: %w", path, err)
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("table: write %s: %w", path, err)
	}
	return f.Close()
}
