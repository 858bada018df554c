// Package logsweep identifies and removes stale log files.
//
// A sweep runs in phases. Scan enumerates files older than the configured
// cutoff; Clean deletes them when the caller asks for a destructive run
// (the default posture is a dry-run). Verify re-scans with the original
// criteria to confirm the outcome.
package logsweep

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultExtensions is the set of file suffixes considered log files when
// no override is given.
//
//nolint:gochecknoglobals // Config constant
var DefaultExtensions = []string{".log", ".txt"}

// DefaultDays is the age threshold applied when none is given.
const DefaultDays = 30

// Options configures a sweep.
type Options struct {
	// Path is the directory containing logs to review.
	Path string
	// Days is the age threshold; files modified strictly before
	// now minus this many days are eligible.
	Days int
	// Extensions holds the file suffixes to consider. Matching is
	// case-insensitive and a missing leading dot is tolerated.
	Extensions []string
	// Recursive enables descending into subdirectories.
	Recursive bool
}

// A ConfigError reports an invalid option or target, detected before any
// filesystem work starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return e.Reason }

// Candidate is a file eligible for cleanup.
type Candidate struct {
	// Path is the absolute path of the file.
	Path string `json:"path"`
	// Size is the size in bytes at scan time.
	Size int64 `json:"size"`
	// ModTime is the last modification time at scan time.
	ModTime time.Time `json:"mod_time"`
}

// SkipError records a file that could not be examined during a scan.
type SkipError struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// ScanReport is the outcome of an enumeration pass.
type ScanReport struct {
	// Cutoff is the instant files must predate to be eligible.
	Cutoff time.Time `json:"cutoff"`
	// Examined is the number of files that matched the extension filter.
	Examined int `json:"examined"`
	// Candidates are the eligible files, oldest first.
	Candidates []Candidate `json:"candidates"`
	// Skips are files the scan could not stat.
	Skips []SkipError `json:"skips,omitempty"`
}

// TotalBytes returns the cumulative size of all candidates.
func (r *ScanReport) TotalBytes() int64 {
	var total int64
	for _, c := range r.Candidates {
		total += c.Size
	}

	return total
}

// Scan enumerates files under opt.Path that match the extension filter and
// were last modified strictly before the cutoff derived from opt.Days.
// The enumeration is deterministic: candidates are ordered by modification
// time, oldest first, with path order breaking ties. Files that cannot be
// examined are recorded as skips, not failures.
func Scan(opt Options) (*ScanReport, error) {
	cutoff := time.Now().Add(-time.Duration(opt.Days) * 24 * time.Hour)

	return scanAt(opt, cutoff)
}

// scanAt is Scan with a fixed cutoff, shared with Verify so that a
// verification pass uses the exact criteria of the original scan.
func scanAt(opt Options, cutoff time.Time) (*ScanReport, error) {
	if opt.Days < 0 {
		return nil, &ConfigError{Reason: "days cannot be negative"}
	}

	root, err := filepath.Abs(filepath.Clean(opt.Path))
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", opt.Path, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("path is not a folder: %s", root)}
	}

	if !info.IsDir() {
		return nil, &ConfigError{Reason: fmt.Sprintf("path is not a folder: %s", root)}
	}

	exts := extensionSet(opt.Extensions)

	report := &ScanReport{Cutoff: cutoff}

	examine := func(path string, d fs.DirEntry) {
		if !matchesExtension(path, exts) {
			return
		}

		report.Examined++

		fi, err := d.Info()
		if err != nil {
			report.Skips = append(report.Skips, SkipError{Path: path, Err: err})

			return
		}

		if eligible(fi.ModTime(), cutoff) {
			report.Candidates = append(report.Candidates, Candidate{
				Path:    path,
				Size:    fi.Size(),
				ModTime: fi.ModTime(),
			})
		}
	}

	if opt.Recursive {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return fmt.Errorf("reading %q: %w", root, err)
				}

				report.Skips = append(report.Skips, SkipError{Path: path, Err: err})

				return nil
			}

			if d.IsDir() {
				return nil
			}

			if !d.Type().IsRegular() {
				return nil
			}

			examine(path, d)

			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", root, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !entry.Type().IsRegular() {
				continue
			}

			examine(filepath.Join(root, entry.Name()), entry)
		}
	}

	// Oldest first; path order keeps equal timestamps deterministic.
	sort.Slice(report.Candidates, func(i, j int) bool {
		a, b := report.Candidates[i], report.Candidates[j]
		if a.ModTime.Equal(b.ModTime) {
			return a.Path < b.Path
		}

		return a.ModTime.Before(b.ModTime)
	})

	return report, nil
}

// eligible reports whether a file modified at mt falls strictly before the
// cutoff. A file modified exactly at the cutoff survives.
func eligible(mt, cutoff time.Time) bool {
	return mt.Before(cutoff)
}

// extensionSet normalizes suffixes to lowercase with a leading dot.
func extensionSet(extensions []string) map[string]struct{} {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	set := make(map[string]struct{}, len(extensions))

	for _, ext := range extensions {
		ext = strings.ToLower(strings.Trim(ext, "'\""))
		if ext == "" {
			continue
		}

		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		set[ext] = struct{}{}
	}

	return set
}

func matchesExtension(path string, exts map[string]struct{}) bool {
	_, ok := exts[strings.ToLower(filepath.Ext(path))]

	return ok
}

// Outcome is the result of one deletion attempt.
type Outcome struct {
	Candidate
	// Err is non-nil when the deletion failed. A failure never stops
	// the rest of the batch.
	Err error
}

// CleanReport summarizes a destructive pass.
type CleanReport struct {
	// Outcomes holds one entry per candidate, in scan order.
	Outcomes []Outcome
	// Deleted is the number of successful removals.
	Deleted int
	// FreedBytes is the cumulative size of removed files.
	FreedBytes int64
}

// Failures returns the outcomes whose deletion failed.
func (r *CleanReport) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}

	return failed
}

// DeletedPaths returns the paths of successfully removed files.
func (r *CleanReport) DeletedPaths() []string {
	paths := make([]string, 0, r.Deleted)
	for _, o := range r.Outcomes {
		if o.Err == nil {
			paths = append(paths, o.Path)
		}
	}

	return paths
}

// Clean deletes every candidate in order. A failed removal (permission
// denied, file vanished) is recorded on its outcome and the batch
// continues.
func Clean(candidates []Candidate) *CleanReport {
	report := &CleanReport{Outcomes: make([]Outcome, 0, len(candidates))}

	for _, c := range candidates {
		outcome := Outcome{Candidate: c}

		if err := os.Remove(c.Path); err != nil {
			outcome.Err = err
		} else {
			report.Deleted++
			report.FreedBytes += c.Size
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report
}

// VerifyReport is the outcome of a post-run verification pass.
type VerifyReport struct {
	// Intact is the number of expectations that held.
	Intact int `json:"intact"`
	// Remaining lists removed paths that still show up as eligible
	// after a destructive run. Empty on success.
	Remaining []string `json:"remaining,omitempty"`
	// Changed lists dry-run candidates that are no longer present
	// with the same size and modification time. Empty on success.
	Changed []string `json:"changed,omitempty"`
}

// OK reports whether the verification found no discrepancies.
func (r *VerifyReport) OK() bool {
	return len(r.Remaining) == 0 && len(r.Changed) == 0
}

// Verify re-scans with the criteria of a prior scan and cross-checks the
// result. After a destructive run, removed holds the deleted paths and
// none of them may still be eligible. After a dry-run, removed is nil and
// every prior candidate must still exist unchanged.
func Verify(opt Options, prior *ScanReport, removed []string) (*VerifyReport, error) {
	rescan, err := scanAt(opt, prior.Cutoff)
	if err != nil {
		return nil, fmt.Errorf("verification scan: %w", err)
	}

	report := &VerifyReport{}

	if removed != nil {
		present := make(map[string]struct{}, len(rescan.Candidates))
		for _, c := range rescan.Candidates {
			present[c.Path] = struct{}{}
		}

		for _, path := range removed {
			if _, ok := present[path]; ok {
				report.Remaining = append(report.Remaining, path)
			} else {
				report.Intact++
			}
		}

		return report, nil
	}

	current := make(map[string]Candidate, len(rescan.Candidates))
	for _, c := range rescan.Candidates {
		current[c.Path] = c
	}

	for _, c := range prior.Candidates {
		now, ok := current[c.Path]
		if !ok || now.Size != c.Size || !now.ModTime.Equal(c.ModTime) {
			report.Changed = append(report.Changed, c.Path)

			continue
		}

		report.Intact++
	}

	return report, nil
}
