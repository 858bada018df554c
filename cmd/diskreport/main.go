// Command diskreport sums file sizes under a directory root.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/idelchi/opskit/internal/diskreport"
	"github.com/idelchi/opskit/internal/version"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "diskreport: %v\n", err)

		var confErr *diskreport.ConfigError
		if errors.As(err, &confErr) {
			os.Exit(2)
		}

		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		opt        diskreport.Options
		minSizeStr string
	)

	allowedOutputs := []string{"table", "json"}

	cmd := &cobra.Command{
		Use:   "diskreport [flags] path",
		Short: "Sum file sizes under a directory",
		Long: heredoc.Doc(`
			diskreport walks a directory and reports where the bytes are.

			Non-recursive runs sum the files sitting directly in the root.
			Recursive runs aggregate the full subtree into one row per
			top-level directory, or one row per extension with --by-ext.
			Subtrees that cannot be entered are skipped with a warning and
			counted at the end; they never abort the scan.
		`),
		Example: heredoc.Doc(`
			# Immediate files of /var/log
			diskreport /var/log

			# Whole subtree, one row per top-level directory
			diskreport -r /var/log

			# Size per extension across the tree, exported to CSV as well
			diskreport -r --by-ext --csv sizes.csv .
		`),
		Args:          cobra.ExactArgs(1),
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opt.Path = args[0]

			if !slices.Contains(allowedOutputs, opt.Output) {
				return &diskreport.ConfigError{
					Reason: fmt.Sprintf("invalid output format %q: must be one of %v", opt.Output, allowedOutputs),
				}
			}

			if opt.MaxDepth < 0 {
				return &diskreport.ConfigError{Reason: "max-depth cannot be negative"}
			}

			// Parse minSize string to bytes
			size, err := humanize.ParseBytes(minSizeStr)
			if err != nil {
				return &diskreport.ConfigError{Reason: fmt.Sprintf("invalid min-size: %v", err)}
			}

			opt.MinSize = int64(size) //nolint:gosec // Size conversion from humanize is safe

			return run(opt)
		},
	}

	cmd.Flags().BoolVarP(&opt.Recursive, "recursive", "r", false, "Scan the full subtree instead of the first level")
	cmd.Flags().BoolVar(&opt.ByExt, "by-ext", false, "Aggregate by extension instead of top-level directory")
	cmd.Flags().IntVar(&opt.MaxDepth, "max-depth", 0, "Maximum traversal depth in recursive mode (0=unlimited)")
	cmd.Flags().BoolVar(&opt.IncludeHidden, "include-hidden", false, "Include dot-prefixed files and directories")
	cmd.Flags().StringVar(&minSizeStr, "min-size", "0B", "Minimum file size to count (e.g., 1KB)")
	cmd.Flags().IntVarP(&opt.TopN, "top", "t", diskreport.DefaultTopN, "Number of top files to display")
	cmd.Flags().StringVarP(&opt.Output, "output", "o", "table", "Output format: json or table")
	cmd.Flags().StringVar(&opt.CSVPath, "csv", "", "Optional CSV output file path")
	cmd.Flags().BoolVar(&opt.Debug, "debug", false, "Enable debug output")
	cmd.Flags().SortFlags = false

	return cmd
}

func run(opt diskreport.Options) error {
	enableProgress := strings.ToLower(opt.Output) != "json" &&
		!opt.Debug &&
		isatty.IsTerminal(os.Stderr.Fd())

	ctx := context.Background()

	// Simple progress callback that prints directly to stderr
	var progressHook func(files, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(os.Stderr, "\033[?25l")
		defer fmt.Fprint(os.Stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(os.Stderr, "\r\033[2K%s\r", msg)
		}
	}

	warnHook := func(path string, err error) {
		if enableProgress {
			fmt.Fprint(os.Stderr, "\r\033[2K")
		}

		fmt.Fprintf(os.Stderr, "WARN: skipping %s (%v)\n", path, err)
	}

	report, err := diskreport.Run(ctx, opt, progressHook, warnHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(os.Stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	switch strings.ToLower(opt.Output) {
	case "json":
		if err := diskreport.PrintJSON(report, os.Stdout); err != nil {
			return err
		}
	case "table":
		if err := diskreport.PrintTable(report, os.Stdout); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format: %s", opt.Output)
	}

	if opt.CSVPath != "" {
		if err := exportCSV(opt.CSVPath, report); err != nil {
			return err
		}

		//nolint:forbidigo // Export confirmation to console
		fmt.Printf("\nCSV written to: %s\n", opt.CSVPath)
	}

	return nil
}

func exportCSV(path string, report *diskreport.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %q: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}

	if err := diskreport.WriteCSV(file, report); err != nil {
		file.Close()

		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", path, err)
	}

	return nil
}
