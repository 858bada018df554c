// Command logsweep deletes stale log files, dry-run by default.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/idelchi/opskit/internal/logsweep"
	"github.com/idelchi/opskit/internal/schedule"
	"github.com/idelchi/opskit/internal/version"
)

type flags struct {
	days      int
	exts      []string
	recursive bool
	doDelete  bool
	verbose   bool
	rules     string
	initCron  bool
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "logsweep: %v\n", err)

		var confErr *logsweep.ConfigError
		if errors.As(err, &confErr) {
			os.Exit(2)
		}

		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "logsweep [flags] path",
		Short: "Delete stale log files, dry-run by default",
		Long: heredoc.Doc(`
			logsweep scans a directory for log files older than a threshold.

			The default mode is a dry-run: eligible files are listed and nothing
			is deleted. Pass --delete to remove them. Every run ends with a
			verification pass over the same criteria, confirming that deleted
			files are gone and that a dry-run left everything untouched.
		`),
		Example: heredoc.Doc(`
			# List files under /var/log/myapp older than 30 days
			logsweep /var/log/myapp

			# Delete .log and .gz files older than 7 days, recursively
			logsweep --days 7 --ext .log,.gz -r --delete /var/log/myapp

			# Run every rule in a YAML file
			logsweep --rules sweep.yaml --delete

			# Print a cron wrapper for the nightly sweep
			logsweep --init-cron --days 7 --delete /var/log/myapp
		`),
		Args:          cobra.MaximumNArgs(1),
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.initCron {
				return printCron(cmd.OutOrStdout())
			}

			if f.rules != "" {
				if len(args) > 0 {
					return &logsweep.ConfigError{Reason: "cannot combine --rules with a positional path"}
				}

				// Per-rule settings come from the file; --delete and
				// --verbose stay global.
				for _, name := range []string{"days", "ext", "recursive"} {
					if cmd.Flags().Changed(name) {
						return &logsweep.ConfigError{
							Reason: fmt.Sprintf("cannot combine --rules with --%s; set it per rule in the rules file", name),
						}
					}
				}

				return runRules(cmd, f)
			}

			if len(args) == 0 {
				return &logsweep.ConfigError{Reason: "a target path is required (or use --rules)"}
			}

			opt := logsweep.Options{
				Path:       args[0],
				Days:       f.days,
				Extensions: f.exts,
				Recursive:  f.recursive,
			}

			return runSweep(cmd, opt, f)
		},
	}

	cmd.Flags().IntVar(&f.days, "days", logsweep.DefaultDays, "Delete logs older than this many days")
	cmd.Flags().StringSliceVarP(&f.exts, "ext", "x", nil, "File suffixes to target (default .log,.txt)")
	cmd.Flags().BoolVarP(&f.recursive, "recursive", "r", false, "Search subfolders recursively")
	cmd.Flags().BoolVar(&f.doDelete, "delete", false, "Actually delete files (otherwise dry-run)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print cutoff and verification details")
	cmd.Flags().StringVar(&f.rules, "rules", "", "YAML rules file; sweeps every rule it defines")
	cmd.Flags().BoolVar(&f.initCron, "init-cron", false, "Print a cron wrapper for this invocation and exit")
	cmd.Flags().SortFlags = false

	return cmd
}

// printCron renders the cron wrapper for the current invocation with
// the --init-cron flag itself stripped.
func printCron(out io.Writer) error {
	args := make([]string, 0, len(os.Args))

	for _, arg := range os.Args[1:] {
		if arg == "--init-cron" || strings.HasPrefix(arg, "--init-cron=") {
			continue
		}

		args = append(args, arg)
	}

	rendered, err := schedule.Render(args)
	if err != nil {
		return fmt.Errorf("rendering cron script: %w", err)
	}

	fmt.Fprintln(out, rendered)

	return nil
}

// runRules sweeps every rule in the file, in order. The first failing
// rule aborts the remainder.
func runRules(cmd *cobra.Command, f flags) error {
	set, err := logsweep.LoadRules(f.rules)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	for i, rule := range set.Rules {
		if i > 0 {
			fmt.Fprintln(out)
		}

		fmt.Fprintf(out, "Rule: %s\n", rule.Label())

		if err := runSweep(cmd, rule.Options(), f); err != nil {
			return fmt.Errorf("rule %s: %w", rule.Label(), err)
		}
	}

	return nil
}

func runSweep(cmd *cobra.Command, opt logsweep.Options, f flags) error {
	out := cmd.OutOrStdout()

	scan, err := logsweep.Scan(opt)
	if err != nil {
		return err
	}

	mode := "DRY-RUN"
	if f.doDelete {
		mode = "DELETE"
	}

	fmt.Fprintf(out, "Mode: %s\n", mode)
	fmt.Fprintf(out, "Path: %s\n", opt.Path)
	fmt.Fprintf(out, "Days threshold: %d\n", opt.Days)
	fmt.Fprintf(out, "Recursive: %v\n", opt.Recursive)

	if f.verbose {
		fmt.Fprintf(out, "Cutoff: %s\n", scan.Cutoff.Format(time.RFC3339))
	}

	for _, skip := range scan.Skips {
		fmt.Fprintf(out, "SKIP: %s (%v)\n", skip.Path, skip.Err)
	}

	fmt.Fprintf(out, "Found %d candidate files, %d eligible for cleanup.\n\n", scan.Examined, len(scan.Candidates))

	if f.doDelete {
		return deleteAndVerify(out, opt, scan, f)
	}

	for _, c := range scan.Candidates {
		fmt.Fprintf(out, "WOULD DELETE (%dd): %s [%s]\n",
			ageDays(c.ModTime), c.Path, humanize.IBytes(uint64(c.Size)))
	}

	fmt.Fprintln(out, "\nSummary")
	fmt.Fprintf(out, "- Eligible files: %d\n", len(scan.Candidates))
	fmt.Fprintf(out, "- Potential space freed: %s\n", humanize.IBytes(uint64(scan.TotalBytes())))
	fmt.Fprintln(out, "- No files were deleted (dry-run). Use --delete to remove files.")

	verify, err := logsweep.Verify(opt, scan, nil)
	if err != nil {
		return err
	}

	if verify.OK() {
		fmt.Fprintf(out, "Verification: %d candidates unchanged\n", verify.Intact)
	} else {
		fmt.Fprintf(out, "Verification: %d candidates changed since scan\n", len(verify.Changed))

		if f.verbose {
			for _, path := range verify.Changed {
				fmt.Fprintf(out, "  changed: %s\n", path)
			}
		}
	}

	return nil
}

func deleteAndVerify(out io.Writer, opt logsweep.Options, scan *logsweep.ScanReport, f flags) error {
	clean := logsweep.Clean(scan.Candidates)

	for _, o := range clean.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(out, "FAILED: %s (%v)\n", o.Path, o.Err)

			continue
		}

		fmt.Fprintf(out, "DELETED (%dd): %s [%s]\n",
			ageDays(o.ModTime), o.Path, humanize.IBytes(uint64(o.Size)))
	}

	failures := clean.Failures()

	fmt.Fprintln(out, "\nSummary")
	fmt.Fprintf(out, "- Eligible files: %d\n", len(scan.Candidates))
	fmt.Fprintf(out, "- Deleted files: %d\n", clean.Deleted)

	if len(failures) > 0 {
		fmt.Fprintf(out, "- Failed deletions: %d\n", len(failures))
	}

	fmt.Fprintf(out, "- Space freed: %s\n", humanize.IBytes(uint64(clean.FreedBytes)))

	verify, err := logsweep.Verify(opt, scan, clean.DeletedPaths())
	if err != nil {
		return err
	}

	if verify.OK() {
		fmt.Fprintf(out, "Verification: %d deleted files confirmed absent\n", verify.Intact)
	} else {
		fmt.Fprintf(out, "Verification: %d deleted files still present\n", len(verify.Remaining))

		if f.verbose {
			for _, path := range verify.Remaining {
				fmt.Fprintf(out, "  present: %s\n", path)
			}
		}
	}

	if len(scan.Candidates) > 0 && clean.Deleted == 0 {
		return fmt.Errorf("all %d deletions failed", len(failures))
	}

	return nil
}

// ageDays returns the file age in whole days.
func ageDays(mt time.Time) int {
	return int(time.Since(mt).Hours() / 24)
}
