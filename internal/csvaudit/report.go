package csvaudit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs the audit result in JSON format.
func PrintJSON(result *Result, writer io.Writer) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintSummary outputs the human-readable audit summary: file totals,
// duplicate examples, and the per-column table.
func PrintSummary(result *Result, writer io.Writer) error {
	fmt.Fprintln(writer, "CSV audit report")
	fmt.Fprintf(writer, "File: %s\n", result.Path)
	fmt.Fprintf(writer, "Rows: %d\n", result.RowCount)
	fmt.Fprintf(writer, "Columns: %d\n", result.ColumnCount)
	fmt.Fprintf(writer, "Duplicate rows (exact): %d\n", result.DuplicateCount)

	if len(result.DuplicatePairs) > 0 {
		fmt.Fprintln(writer, "Duplicate examples (first row -> duplicate row):")

		for _, pair := range result.DuplicatePairs {
			fmt.Fprintf(writer, "  %d -> %d\n", pair.First, pair.Dup)
		}
	}

	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintln(w, "\nCOLUMN\tNON-EMPTY\tMISSING\tUNIQUE\tNUMERIC\tMIN\tMAX\tMEAN\t")

	for _, col := range result.Columns {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\t%s\t%s\t\n",
			col.Column, col.NonEmpty, col.Missing, col.Unique,
			yesNo(col.Numeric), formatStat(col.Min), formatStat(col.Max), formatStat(col.Mean))
	}

	if err := w.Flush(); err != nil {
		return err
	}

	for _, col := range result.Columns {
		if len(col.TopValues) == 0 {
			continue
		}

		fmt.Fprintf(writer, "\nTop values for %s:\n", col.Column)

		for _, vc := range col.TopValues {
			fmt.Fprintf(writer, "  %s: %d\n", vc.Value, vc.Count)
		}
	}

	return nil
}

// yesNo renders a bool for the summary table.
func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

// formatStat renders an optional statistic with three decimals, or a
// dash when absent.
func formatStat(value *float64) string {
	if value == nil {
		return "-"
	}

	return strconv.FormatFloat(*value, 'f', 3, 64)
}

// csvStat renders an optional statistic for CSV export with six
// decimals, or an empty cell when absent.
func csvStat(value *float64) string {
	if value == nil {
		return ""
	}

	return strconv.FormatFloat(*value, 'f', 6, 64)
}

// WriteReportCSV exports the audit summary: a block of file-level
// key/value rows, a blank separator, then one row per audited column.
// Everything is derived from result; the source file is not re-read.
func WriteReportCSV(writer io.Writer, result *Result) error {
	out := csv.NewWriter(writer)

	pairs := make([]string, 0, len(result.DuplicatePairs))
	for _, pair := range result.DuplicatePairs {
		pairs = append(pairs, fmt.Sprintf("%d->%d", pair.First, pair.Dup))
	}

	preamble := [][]string{
		{"file", result.Path},
		{"rows", strconv.Itoa(result.RowCount)},
		{"columns", strconv.Itoa(result.ColumnCount)},
		{"duplicate_rows_exact", strconv.Itoa(result.DuplicateCount)},
		{"duplicate_examples_first_to_dup", strings.Join(pairs, "; ")},
		{},
		{"column", "non_empty", "missing", "unique_count", "numeric", "numeric_min", "numeric_max", "numeric_mean"},
	}

	for _, record := range preamble {
		if err := out.Write(record); err != nil {
			return fmt.Errorf("writing report preamble: %w", err)
		}
	}

	for _, col := range result.Columns {
		record := []string{
			col.Column,
			strconv.Itoa(col.NonEmpty),
			strconv.Itoa(col.Missing),
			strconv.Itoa(col.Unique),
			yesNo(col.Numeric),
			csvStat(col.Min),
			csvStat(col.Max),
			csvStat(col.Mean),
		}

		if err := out.Write(record); err != nil {
			return fmt.Errorf("writing report row for column %q: %w", col.Column, err)
		}
	}

	out.Flush()

	if err := out.Error(); err != nil {
		return fmt.Errorf("flushing report output: %w", err)
	}

	return nil
}

// WriteDupesCSV exports the duplicate occurrences (excluding each first
// occurrence) under the original header, in file order.
func WriteDupesCSV(writer io.Writer, input *Input, result *Result) error {
	out := csv.NewWriter(writer)

	if err := out.Write(input.Header); err != nil {
		return fmt.Errorf("writing duplicates header: %w", err)
	}

	for _, rowNum := range result.DuplicateRows {
		if err := out.Write(input.Rows[rowNum-1]); err != nil {
			return fmt.Errorf("writing duplicate row %d: %w", rowNum, err)
		}
	}

	out.Flush()

	if err := out.Error(); err != nil {
		return fmt.Errorf("flushing duplicates output: %w", err)
	}

	return nil
}
