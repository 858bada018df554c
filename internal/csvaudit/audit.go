package csvaudit

import (
	"encoding/binary"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// MaxDupExamples caps the number of duplicate pairs listed in the
// summary. The full duplicate set is still counted and exported.
const MaxDupExamples = 10

// ValueCount pairs a cell value with its occurrence count.
type ValueCount struct {
	// Value is the trimmed cell value.
	Value string `json:"value"`
	// Count is the number of rows carrying it.
	Count int `json:"count"`
}

// ColumnAudit holds the per-column audit results.
type ColumnAudit struct {
	// Column is the column name from the header.
	Column string `json:"column"`
	// NonEmpty is the number of cells with content.
	NonEmpty int `json:"non_empty"`
	// Missing is the number of empty or whitespace-only cells.
	Missing int `json:"missing"`
	// Unique is the number of distinct trimmed non-empty values.
	Unique int `json:"unique_count"`
	// Numeric reports whether every non-empty cell parses as a number.
	Numeric bool `json:"numeric"`
	// Min is the smallest numeric value, absent for non-numeric columns.
	Min *float64 `json:"min,omitempty"`
	// Max is the largest numeric value, absent for non-numeric columns.
	Max *float64 `json:"max,omitempty"`
	// Mean is the average numeric value, absent for non-numeric columns.
	Mean *float64 `json:"mean,omitempty"`
	// TopValues lists the most common values, most frequent first.
	TopValues []ValueCount `json:"top_values,omitempty"`
}

// DupPair names one duplicate occurrence by data row number: the row
// that appeared first and the later row equal to it. Row numbers are
// 1-based and exclude the header.
type DupPair struct {
	// First is the row number of the first occurrence.
	First int `json:"first"`
	// Dup is the row number of the duplicate.
	Dup int `json:"dup"`
}

// Result is the complete audit of one CSV file.
type Result struct {
	// Path is the audited file.
	Path string `json:"path"`
	// RowCount is the number of data rows.
	RowCount int `json:"rows"`
	// ColumnCount is the number of header columns.
	ColumnCount int `json:"columns"`
	// DuplicateCount is the number of rows duplicating an earlier row.
	DuplicateCount int `json:"duplicate_rows"`
	// DuplicatePairs lists example pairs, capped at MaxDupExamples.
	DuplicatePairs []DupPair `json:"duplicate_examples,omitempty"`
	// DuplicateRows lists every duplicate occurrence, 1-based, in file order.
	DuplicateRows []int `json:"duplicate_row_indices,omitempty"`
	// Columns holds the per-column audits in header order.
	Columns []ColumnAudit `json:"per_column"`
}

// parseNumber parses a plain decimal literal. Infinities, NaN and hex
// float syntax are rejected so that only ordinary numbers make a
// column numeric.
func parseNumber(value string) (float64, bool) {
	if strings.ContainsAny(value, "xX") {
		return 0, false
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
		return 0, false
	}

	return parsed, true
}

// rowSignature hashes a row for duplicate grouping. Fields are length
// prefixed so that rows like ["ab",""] and ["a","b"] cannot collide
// through concatenation.
func rowSignature(row []string) uint64 {
	digest := xxhash.New()

	var buf [8]byte

	for _, field := range row {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(field)))
		_, _ = digest.Write(buf[:])
		_, _ = digest.WriteString(field)
	}

	return digest.Sum64()
}

// rowsEqual reports exact field-for-field equality.
func rowsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// Audit computes the full audit of input. Duplicate detection compares
// raw field values without normalization; two rows are duplicates only
// when every field matches exactly. topUnique > 0 additionally collects
// the N most common values per column.
func Audit(input *Input, topUnique int) *Result {
	result := &Result{
		Path:        input.Path,
		RowCount:    len(input.Rows),
		ColumnCount: len(input.Header),
	}

	// Rows hash into signature buckets; bucket members are verified
	// field by field, so a hash collision cannot flag a false duplicate.
	seen := make(map[uint64][]int, len(input.Rows))

	for i, row := range input.Rows {
		rowNum := i + 1
		sig := rowSignature(row)

		first := 0

		for _, candidate := range seen[sig] {
			if rowsEqual(input.Rows[candidate-1], row) {
				first = candidate

				break
			}
		}

		if first == 0 {
			seen[sig] = append(seen[sig], rowNum)

			continue
		}

		result.DuplicateCount++
		result.DuplicateRows = append(result.DuplicateRows, rowNum)

		if len(result.DuplicatePairs) < MaxDupExamples {
			result.DuplicatePairs = append(result.DuplicatePairs, DupPair{First: first, Dup: rowNum})
		}
	}

	result.Columns = make([]ColumnAudit, 0, len(input.Header))
	for col, name := range input.Header {
		result.Columns = append(result.Columns, auditColumn(input.Rows, col, name, topUnique))
	}

	return result
}

// auditColumn audits a single column. The column is numeric only if
// every non-missing cell parses; one unparsable cell disqualifies the
// whole column and discards any stats gathered so far.
func auditColumn(rows [][]string, col int, name string, topUnique int) ColumnAudit {
	audit := ColumnAudit{Column: name}

	uniques := make(map[string]int)
	numeric := true

	var values []float64

	for _, row := range rows {
		var cell string
		if col < len(row) {
			cell = row[col]
		}

		trimmed := strings.TrimSpace(cell)
		if trimmed == "" {
			audit.Missing++

			continue
		}

		audit.NonEmpty++
		uniques[trimmed]++

		if !numeric {
			continue
		}

		value, ok := parseNumber(trimmed)
		if !ok {
			numeric = false
			values = nil

			continue
		}

		values = append(values, value)
	}

	audit.Unique = len(uniques)
	audit.Numeric = numeric && len(values) > 0

	if audit.Numeric {
		low, high := values[0], values[0]
		sum := 0.0

		for _, value := range values {
			if value < low {
				low = value
			}

			if value > high {
				high = value
			}

			sum += value
		}

		mean := sum / float64(len(values))

		audit.Min = &low
		audit.Max = &high
		audit.Mean = &mean
	}

	if topUnique > 0 {
		audit.TopValues = topValues(uniques, topUnique)
	}

	return audit
}

// topValues returns the n most common values, ordered by count
// descending with ties broken by value ascending.
func topValues(uniques map[string]int, n int) []ValueCount {
	list := make([]ValueCount, 0, len(uniques))
	for value, count := range uniques {
		list = append(list, ValueCount{Value: value, Count: count})
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Count == list[j].Count {
			return list[i].Value < list[j].Value
		}

		return list[i].Count > list[j].Count
	})

	if len(list) > n {
		list = list[:n]
	}

	return list
}
