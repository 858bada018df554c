package csvaudit

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
)

func auditFixture() (*Input, *Result) {
	input := &Input{
		Path:   "people.csv",
		Header: []string{"name", "score"},
		Rows: [][]string{
			{"alice", "1"},
			{"alice", "1"},
			{"bob", "3"},
		},
	}

	return input, Audit(input, 0)
}

func TestWriteReportCSV(t *testing.T) {
	_, result := auditFixture()

	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, result); err != nil {
		t.Fatalf("WriteReportCSV() error = %v", err)
	}

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("re-parsing report: %v", err)
	}

	// Key/value preamble, then the per-column block. The blank
	// separator row is dropped by the reader.
	wantPreamble := map[string]string{
		"file":                            "people.csv",
		"rows":                            "3",
		"columns":                         "2",
		"duplicate_rows_exact":            "1",
		"duplicate_examples_first_to_dup": "1->2",
	}

	for key, want := range wantPreamble {
		found := false

		for _, record := range records {
			if len(record) == 2 && record[0] == key {
				found = true

				if record[1] != want {
					t.Errorf("preamble %q = %q; want %q", key, record[1], want)
				}
			}
		}

		if !found {
			t.Errorf("preamble row %q missing from report", key)
		}
	}

	var nameRow, scoreRow []string

	for _, record := range records {
		if len(record) == 8 && record[0] == "name" {
			nameRow = record
		}

		if len(record) == 8 && record[0] == "score" {
			scoreRow = record
		}
	}

	if nameRow == nil || scoreRow == nil {
		t.Fatalf("per-column rows missing from report: %v", records)
	}

	// name: 3 non-empty, 0 missing, 2 unique, not numeric, no stats.
	if nameRow[1] != "3" || nameRow[2] != "0" || nameRow[3] != "2" || nameRow[4] != "no" || nameRow[5] != "" {
		t.Errorf("name row = %v", nameRow)
	}

	// score: numeric with min 1, max 3, mean 5/3.
	if scoreRow[4] != "yes" || scoreRow[5] != "1.000000" || scoreRow[6] != "3.000000" || scoreRow[7] != "1.666667" {
		t.Errorf("score row = %v", scoreRow)
	}
}

func TestWriteDupesCSV(t *testing.T) {
	input, result := auditFixture()

	var buf bytes.Buffer
	if err := WriteDupesCSV(&buf, input, result); err != nil {
		t.Fatalf("WriteDupesCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parsing duplicates: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d; want 2 (header plus one duplicate)", len(records))
	}

	if records[0][0] != "name" || records[0][1] != "score" {
		t.Errorf("header = %v; want [name score]", records[0])
	}

	if records[1][0] != "alice" || records[1][1] != "1" {
		t.Errorf("duplicate row = %v; want [alice 1]", records[1])
	}
}

func TestPrintSummary(t *testing.T) {
	_, result := auditFixture()

	var buf bytes.Buffer
	if err := PrintSummary(result, &buf); err != nil {
		t.Fatalf("PrintSummary() error = %v", err)
	}

	out := buf.String()

	for _, want := range []string{
		"File: people.csv",
		"Rows: 3",
		"Columns: 2",
		"Duplicate rows (exact): 1",
		"1 -> 2",
		"COLUMN",
		"name",
		"score",
		"1.000",
		"1.667",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummaryTopValues(t *testing.T) {
	input := &Input{
		Path:   "v.csv",
		Header: []string{"v"},
		Rows:   [][]string{{"a"}, {"a"}, {"b"}},
	}

	result := Audit(input, 1)

	var buf bytes.Buffer
	if err := PrintSummary(result, &buf); err != nil {
		t.Fatalf("PrintSummary() error = %v", err)
	}

	out := buf.String()

	if !strings.Contains(out, "Top values for v:") || !strings.Contains(out, "a: 2") {
		t.Errorf("summary missing top values section:\n%s", out)
	}
}
