// Package distill loads the Clearinghouse "gen" flat-file dataset into
// memory and filters/aggregates it by cognizant agency.
package distill

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/charmap"
)

const (
	// cogAgencyColumn holds the two-digit cognizant agency code.
	cogAgencyColumn = "COGAGENCY"
	// findingsColumn holds the Y/N current-year findings flag.
	findingsColumn = "CYFINDINGS"
)

// ErrMissingColumn is returned when a gen file lacks a required column.
var ErrMissingColumn = errors.New("distill: required column missing")

// Table is an in-memory gen dataset: a header row plus data rows. Files are
// small enough to read wholesale per request.
type Table struct {
	Columns []string
	Rows    [][]string

	colIndex map[string]int
}

// NewTable builds a Table from a header and rows.
func NewTable(columns []string, rows [][]string) *Table {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Table{Columns: columns, Rows: rows, colIndex: idx}
}

// LoadFile reads a gen file from disk. The Clearinghouse publishes these as
// latin-1 comma-delimited text with a header row.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("distill: open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Load(charmap.ISO8859_1.NewDecoder().Reader(f))
	if err != nil {
		return nil, fmt.Errorf("distill: %s: %w", path, err)
	}
	return t, nil
}

// Load reads a gen dataset from r, which must already be UTF-8.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // gen files have the occasional ragged row

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, rec)
	}
	return NewTable(header, rows), nil
}

// Get returns the value of the named column in row, or "" when the row is
// too short or the column unknown.
func (t *Table) Get(row []string, column string) string {
	i, ok := t.colIndex[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// FilterByAgency returns a new Table holding only rows whose cognizant
// agency code equals prefix. Column order is preserved.
func (t *Table) FilterByAgency(prefix string) (*Table, error) {
	if _, ok := t.colIndex[cogAgencyColumn]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, cogAgencyColumn)
	}
	var rows [][]string
	for _, row := range t.Rows {
		if t.Get(row, cogAgencyColumn) == prefix {
			rows = append(rows, row)
		}
	}
	return NewTable(t.Columns, rows), nil
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }
