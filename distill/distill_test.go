package distill

import (
	"errors"
	"strings"
	"testing"
)

// testTable builds the fixed 10-row dataset used across these tests:
// 3 rows cognizant to agency 20, 2 of them flagged with findings.
func testTable(t *testing.T) *Table {
	t.Helper()
	rows := [][]string{
		{"100001", "20", "Y", "City Transit Authority"},
		{"100002", "93", "N", "County Health Service"},
		{"100003", "20", "N", "Regional Rail District"},
		{"100004", "84", "Y", "School District Twelve"},
		{"100005", "20", "Y", "Metro Bus Cooperative"},
		{"100006", "93", "Y", "Community Clinic"},
		{"100007", "14", "N", "Housing Partnership"},
		{"100008", "84", "N", "State University"},
		{"100009", "93", "N", "Tribal Health Board"},
		{"100010", "14", "Y", "Urban Renewal Agency"},
	}
	return NewTable([]string{"AUDITYEAR", "COGAGENCY", "CYFINDINGS", "AUDITEENAME"}, rows)
}

func TestDeriveHighlights(t *testing.T) {
	// WHAT: 3 rows match prefix 20, 2 flagged => cognizant_sum=3, findings=2.
	h, err := DeriveHighlights(testTable(t), "20", "gen18.txt")
	if err != nil {
		t.Fatalf("DeriveHighlights: %v", err)
	}
	if h.CognizantSum != 3 {
		t.Errorf("CognizantSum = %d, want 3", h.CognizantSum)
	}
	if h.Findings != 2 {
		t.Errorf("Findings = %d, want 2", h.Findings)
	}
	if h.AgencyName != "Department of Transportation" {
		t.Errorf("AgencyName = %q", h.AgencyName)
	}
	if h.Filename != "gen18.txt" {
		t.Errorf("Filename = %q", h.Filename)
	}
}

func TestDeriveHighlights_NoMatches(t *testing.T) {
	h, err := DeriveHighlights(testTable(t), "66", "gen18.txt")
	if err != nil {
		t.Fatalf("DeriveHighlights: %v", err)
	}
	if h.CognizantSum != 0 || h.Findings != 0 {
		t.Errorf("got sum=%d findings=%d, want 0/0", h.CognizantSum, h.Findings)
	}
}

func TestDeriveHighlights_InvalidPrefix(t *testing.T) {
	// WHAT: Validation fails before any table work.
	for _, prefix := range []string{"", "2", "abc", "2x", "99"} {
		if _, err := DeriveHighlights(testTable(t), prefix, "gen18.txt"); !errors.Is(err, ErrUnknownAgency) {
			t.Errorf("prefix %q: expected ErrUnknownAgency, got %v", prefix, err)
		}
	}
}

func TestFilterByAgency(t *testing.T) {
	filtered, err := testTable(t).FilterByAgency("93")
	if err != nil {
		t.Fatal(err)
	}
	if filtered.Len() != 3 {
		t.Fatalf("Len = %d, want 3", filtered.Len())
	}
	for _, row := range filtered.Rows {
		if got := filtered.Get(row, "COGAGENCY"); got != "93" {
			t.Errorf("row leaked through filter: %v", row)
		}
	}
}

func TestFilterByAgency_MissingColumn(t *testing.T) {
	bare := NewTable([]string{"A", "B"}, [][]string{{"1", "2"}})
	if _, err := bare.FilterByAgency("20"); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestLoad_HeaderAndRows(t *testing.T) {
	src := "AUDITYEAR,COGAGENCY,CYFINDINGS\n2018,20,Y\n2018,93,N\n"
	table, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("Len = %d, want 2", table.Len())
	}
	if got := table.Get(table.Rows[0], "CYFINDINGS"); got != "Y" {
		t.Errorf("CYFINDINGS = %q, want Y", got)
	}
}

func TestLoad_RaggedRowsTolerated(t *testing.T) {
	// Real gen files occasionally ship short rows; missing cells read as "".
	src := "A,COGAGENCY,CYFINDINGS\n1,20\n2,20,Y\n"
	table, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := table.Get(table.Rows[0], "CYFINDINGS"); got != "" {
		t.Errorf("short row CYFINDINGS = %q, want empty", got)
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	var buf strings.Builder
	filtered, err := testTable(t).FilterByAgency("20")
	if err != nil {
		t.Fatal(err)
	}
	if err := filtered.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 rows", len(lines))
	}
	if lines[0] != "AUDITYEAR,COGAGENCY,CYFINDINGS,AUDITEENAME" {
		t.Errorf("header = %q", lines[0])
	}
}

func TestAgencyName(t *testing.T) {
	name, err := AgencyName("93")
	if err != nil {
		t.Fatal(err)
	}
	if name != "Department of Health and Human Services" {
		t.Errorf("AgencyName(93) = %q", name)
	}
	if _, err := AgencyName("00"); !errors.Is(err, ErrUnknownAgency) {
		t.Errorf("expected ErrUnknownAgency for 00, got %v", err)
	}
}
