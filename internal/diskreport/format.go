package diskreport

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs the report in JSON format.
func PrintJSON(report *Report, writer io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs the report in human-readable table format.
func PrintTable(report *Report, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "Disk report for: %s\n", report.Root)
	fmt.Fprintf(w, "Recursive: %v\n", report.Recursive)

	if report.Capacity != nil {
		fmt.Fprintf(w, "Filesystem: %s total, %s used, %s free (%.1f%% free)\n",
			humanize.IBytes(uint64(report.Capacity.TotalBytes)),
			humanize.IBytes(uint64(report.Capacity.UsedBytes)),
			humanize.IBytes(uint64(report.Capacity.FreeBytes)),
			report.Capacity.FreePercent())
	}

	keyHeader := "PATH"
	if report.ByExt {
		keyHeader = "EXTENSION"
	}

	fmt.Fprintf(w, "\n%s\tFILES\tSIZE\t\n", keyHeader)

	for _, row := range report.Rows {
		key := row.Key
		if key == "" {
			key = "\"\""
		}

		pct := 0.0
		if report.TotalBytes > 0 {
			pct = 100.0 * float64(row.Bytes) / float64(report.TotalBytes)
		}

		fmt.Fprintf(w, "%s\t%d\t%s (%.1f%%)\t\n",
			key, row.Files, humanize.IBytes(uint64(row.Bytes)), pct)
	}

	fmt.Fprintf(w, "TOTAL\t%d\t%s (%d bytes)\t\n",
		report.FileCount, humanize.IBytes(uint64(report.TotalBytes)), report.TotalBytes)

	if len(report.TopFiles) > 0 {
		fmt.Fprintln(w, "\nTop files:\t\t")

		for i, f := range report.TopFiles {
			pct := 0.0
			if report.TotalBytes > 0 {
				pct = 100.0 * float64(f.Size) / float64(report.TotalBytes)
			}

			fmt.Fprintf(w, "  %d) '%s'\t%s (%.1f%%)\t\n",
				i+1, f.Path, humanize.IBytes(uint64(f.Size)), pct)
		}
	}

	if len(report.SkippedPaths) > 0 {
		fmt.Fprintf(w, "\nSkipped paths: %d\n", len(report.SkippedPaths))

		for _, path := range report.SkippedPaths {
			fmt.Fprintf(w, "  - %s\n", path)
		}
	}

	if report.ErrorCount > 0 {
		fmt.Fprintf(w, "\nFiles that could not be examined: %d\n", report.ErrorCount)
	}

	fmt.Fprintf(w, "\nElapsed:\t%v\n", report.Elapsed)

	return w.Flush()
}
