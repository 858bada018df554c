// Command csvaudit validates a CSV file and prints quick statistics.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/opskit/internal/csvaudit"
	"github.com/idelchi/opskit/internal/version"
)

type flags struct {
	delimiter string
	report    string
	dupesOut  string
	topUnique int
	output    string
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "csvaudit: %v\n", err)

		var confErr *csvaudit.ConfigError
		if errors.As(err, &confErr) {
			os.Exit(2)
		}

		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var f flags

	allowedOutputs := []string{"table", "json"}

	cmd := &cobra.Command{
		Use:   "csvaudit [flags] file",
		Short: "Audit a CSV file for missing values, duplicates, and basic stats",
		Long: heredoc.Doc(`
			csvaudit reads a header-qualified CSV file and reports row and
			column counts, missing values per column, exact duplicate rows,
			and min/max/mean for columns whose values are all numeric.

			A malformed file (no header, or rows whose field count differs
			from the header) aborts the audit; no partial results are
			produced.
		`),
		Example: heredoc.Doc(`
			# Audit a file and print the summary
			csvaudit people.csv

			# Semicolon-delimited input with a summary CSV export
			csvaudit --delimiter ';' --report audit.csv people.csv

			# Export the duplicate rows and show the 5 most common values
			csvaudit --dupes-out dupes.csv --top-unique 5 people.csv
		`),
		Args:          cobra.ExactArgs(1),
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(allowedOutputs, f.output) {
				return &csvaudit.ConfigError{
					Reason: fmt.Sprintf("invalid output format %q: must be one of %v", f.output, allowedOutputs),
				}
			}

			delimiter, err := csvaudit.ParseDelimiter(f.delimiter)
			if err != nil {
				return err
			}

			if f.topUnique < 0 {
				f.topUnique = 0
			}

			input, err := csvaudit.ReadFile(args[0], delimiter)
			if err != nil {
				return err
			}

			result := csvaudit.Audit(input, f.topUnique)

			switch f.output {
			case "json":
				if err := csvaudit.PrintJSON(result, os.Stdout); err != nil {
					return err
				}
			default:
				if err := csvaudit.PrintSummary(result, os.Stdout); err != nil {
					return err
				}
			}

			if f.report != "" {
				err := writeFile(f.report, func(w io.Writer) error {
					return csvaudit.WriteReportCSV(w, result)
				})
				if err != nil {
					return err
				}

				//nolint:forbidigo // Export confirmation to console
				fmt.Printf("\nReport CSV written to: %s\n", f.report)
			}

			if f.dupesOut != "" {
				err := writeFile(f.dupesOut, func(w io.Writer) error {
					return csvaudit.WriteDupesCSV(w, input, result)
				})
				if err != nil {
					return err
				}

				//nolint:forbidigo // Export confirmation to console
				fmt.Printf("Duplicate rows CSV written to: %s\n", f.dupesOut)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&f.delimiter, "delimiter", ",", "CSV delimiter, a single character")
	cmd.Flags().StringVar(&f.report, "report", "", "Optional summary report CSV path")
	cmd.Flags().StringVar(&f.dupesOut, "dupes-out", "", "Optional CSV path for the duplicate rows")
	cmd.Flags().IntVar(&f.topUnique, "top-unique", 0, "If > 0, include the N most common values per column")
	cmd.Flags().StringVarP(&f.output, "output", "o", "table", "Output format: json or table")
	cmd.Flags().SortFlags = false

	return cmd
}

// writeFile creates path (and its parent directory) and streams write
// into it.
func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %q: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}

	if err := write(file); err != nil {
		file.Close()

		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", path, err)
	}

	return nil
}
