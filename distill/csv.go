package distill

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV serializes the table as UTF-8 CSV, header first, preserving
// column order. Used for the agency-filtered attachment download.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("distill: write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("distill: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
