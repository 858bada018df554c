package diskreport

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// RootRow is the key under which files sitting directly in the scanned
// root are aggregated when grouping by directory.
const RootRow = "."

// Row is one aggregate line of the report: a top-level directory (or an
// extension, when that grouping is requested) with its file count and
// cumulative size. The printed table and the CSV export are both built
// from the same Row slice.
type Row struct {
	// Key is the top-level directory name, RootRow for the root
	// itself, or the lowercased extension in extension mode.
	Key string `json:"key"`
	// Files is the number of files aggregated into this row.
	Files int64 `json:"files"`
	// Bytes is the cumulative size of those files.
	Bytes int64 `json:"bytes"`
}

// FileStat is a single file path and size, used for the largest-files
// section.
type FileStat struct {
	// Path is relative to the scanned root, in slash format.
	Path string `json:"path"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// Report holds the complete outcome of a scan.
type Report struct {
	// Root is the cleaned path the scan ran on.
	Root string `json:"root"`
	// Recursive records whether the full subtree was walked.
	Recursive bool `json:"recursive"`
	// ByExt records whether rows are keyed by extension.
	ByExt bool `json:"by_ext"`
	// Rows are the aggregates, sorted by size descending with ties
	// broken by key ascending.
	Rows []Row `json:"rows"`
	// TopFiles contains the N largest files seen, largest first.
	TopFiles []FileStat `json:"top_files,omitempty"`
	// FileCount is the total number of files aggregated.
	FileCount int64 `json:"file_count"`
	// TotalBytes is the cumulative size of all aggregated files.
	TotalBytes int64 `json:"total_bytes"`
	// SkippedPaths lists subtrees that could not be entered.
	SkippedPaths []string `json:"skipped_paths,omitempty"`
	// ErrorCount is the number of files that could not be examined.
	ErrorCount int64 `json:"error_count"`
	// Capacity describes the filesystem holding Root, when available.
	Capacity *Capacity `json:"capacity,omitempty"`
	// Elapsed is the total scan time.
	Elapsed time.Duration `json:"elapsed"`
	// TopN is the number of top files tracked.
	TopN int `json:"top_n"`
}

// Options configures a scan.
type Options struct {
	// Path is the directory to report on.
	Path string
	// Recursive walks the full subtree instead of the first level.
	Recursive bool
	// ByExt keys rows by extension instead of top-level directory.
	ByExt bool
	// MaxDepth caps traversal depth in recursive mode (0=unlimited).
	MaxDepth int
	// IncludeHidden includes dot-prefixed files and directories.
	IncludeHidden bool
	// MinSize is the minimum file size in bytes to aggregate.
	MinSize int64
	// TopN is the number of largest files to track.
	TopN int
	// Output represents output format (table or json).
	Output string
	// CSVPath is the optional CSV export destination.
	CSVPath string
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug indicates whether debug output is enabled.
	Debug bool
}

// collector aggregates scan results. A mutex guards every mutation since
// fastwalk invokes the walk callback from multiple goroutines.
type collector struct {
	mu         sync.Mutex
	topN       int
	rows       map[string]*rowAgg
	topFiles   []FileStat
	fileCount  int64
	totalBytes int64
	skipped    []string
	errorCount int64
}

type rowAgg struct {
	files int64
	bytes int64
}

func newCollector(topN int) *collector {
	return &collector{
		topN: topN,
		rows: make(map[string]*rowAgg),
	}
}

// add records one file under the given row key.
func (c *collector) add(key, relPath string, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	agg, ok := c.rows[key]
	if !ok {
		agg = &rowAgg{}
		c.rows[key] = agg
	}

	agg.files++
	agg.bytes += size

	c.fileCount++
	c.totalBytes += size

	// Collect every file; finalize sorts and trims to topN.
	c.topFiles = append(c.topFiles, FileStat{Path: relPath, Size: size})
}

// addSkip records a subtree that could not be entered.
func (c *collector) addSkip(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped = append(c.skipped, path)
}

// addError increments the counter of files that could not be examined.
func (c *collector) addError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorCount++
}

// snapshot returns the current file and byte counters for progress
// reporting.
func (c *collector) snapshot() (files, bytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fileCount, c.totalBytes
}

// finalize produces the Report from the collected data. Rows are ordered
// by size descending, ties by key ascending, so repeated runs over the
// same tree print identically. Top files are trimmed to topN, largest
// first, with paths converted to slash format.
func (c *collector) finalize() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := make([]Row, 0, len(c.rows))
	for key, agg := range c.rows {
		rows = append(rows, Row{Key: key, Files: agg.files, Bytes: agg.bytes})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Bytes == rows[j].Bytes {
			return rows[i].Key < rows[j].Key
		}

		return rows[i].Bytes > rows[j].Bytes
	})

	sort.Slice(c.topFiles, func(i, j int) bool {
		if c.topFiles[i].Size == c.topFiles[j].Size {
			return c.topFiles[i].Path < c.topFiles[j].Path
		}

		return c.topFiles[i].Size > c.topFiles[j].Size
	})

	topFiles := c.topFiles
	if len(topFiles) > c.topN {
		topFiles = topFiles[:c.topN]
	}

	for i := range topFiles {
		topFiles[i].Path = strings.TrimPrefix(filepath.ToSlash(topFiles[i].Path), "./")
	}

	skipped := make([]string, len(c.skipped))
	copy(skipped, c.skipped)
	sort.Strings(skipped)

	return &Report{
		Rows:         rows,
		TopFiles:     topFiles,
		FileCount:    c.fileCount,
		TotalBytes:   c.totalBytes,
		SkippedPaths: skipped,
		ErrorCount:   c.errorCount,
		TopN:         c.topN,
	}
}
