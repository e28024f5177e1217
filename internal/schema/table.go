package schema

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Table is an in-memory tabular input: named columns, one row per record,
// rows kept in the source's order. An empty cell value means missing.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// columnIndex returns the position of header, or -1 if absent. Matching is
// case-sensitive and exact.
func (t Table) columnIndex(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// cell returns the value at (row, col), tolerating ragged rows.
func (t Table) cell(row, col int) string {
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// ReadCSV loads a table from CSV data. The first record is the header row.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}
	return Table{Headers: records[0], Rows: records[1:]}, nil
}

// ReadXLSX loads a table from the first sheet of an xlsx workbook. The first
// row is the header row.
func ReadXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return Table{}, nil
	}
	return Table{Headers: rows[0], Rows: rows[1:]}, nil
}
