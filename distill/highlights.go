package distill

import "fmt"

// Highlights is the agency-level summary derived from one gen file.
type Highlights struct {
	AgencyPrefix string
	AgencyName   string
	Filename     string

	// CognizantSum is the number of rows where the agency is cognizant.
	CognizantSum int
	// Findings is how many of those rows carry a current-year findings flag.
	Findings int
}

// CountFindings returns the number of rows flagged Y in the findings column.
func (t *Table) CountFindings() (int, error) {
	if _, ok := t.colIndex[findingsColumn]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingColumn, findingsColumn)
	}
	n := 0
	for _, row := range t.Rows {
		if t.Get(row, findingsColumn) == "Y" {
			n++
		}
	}
	return n, nil
}

// DeriveHighlights filters the table to one agency and computes its summary
// counts. The prefix is validated before any table work.
func DeriveHighlights(t *Table, prefix, filename string) (*Highlights, error) {
	name, err := AgencyName(prefix)
	if err != nil {
		return nil, err
	}

	agencyTable, err := t.FilterByAgency(prefix)
	if err != nil {
		return nil, err
	}
	findings, err := agencyTable.CountFindings()
	if err != nil {
		return nil, err
	}

	return &Highlights{
		AgencyPrefix: prefix,
		AgencyName:   name,
		Filename:     filename,
		CognizantSum: agencyTable.Len(),
		Findings:     findings,
	}, nil
}
