package diskreport

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charlievieth/fastwalk"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// DefaultTopN is the default number of largest files tracked.
const DefaultTopN = 10

// ConfigError marks a bad argument or unusable root path. It is raised
// before any aggregation starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

// logger provides conditional debug output.
type logger struct {
	enabled bool
}

// printf prints debug output if logging is enabled.
func (l logger) printf(format string, args ...any) {
	if l.enabled {
		//nolint:forbidigo // Debug output to console
		fmt.Printf(format, args...)
	}
}

// calculateDepth returns the depth of a path relative to the root.
func calculateDepth(path, root string) int {
	relPath := strings.TrimPrefix(path, root)

	relPath = strings.TrimPrefix(relPath, string(filepath.Separator))
	if relPath == "" {
		return 0
	}

	return strings.Count(relPath, string(filepath.Separator)) + 1
}

// hidden reports whether the entry's base name is dot-prefixed.
func hidden(path string) bool {
	name := filepath.Base(path)

	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// rowKey maps a root-relative file path to the row it is aggregated
// under. In extension mode that is the lowercased extension; otherwise
// it is the first path segment, or RootRow for files sitting directly
// in the root.
func rowKey(rel string, byExt bool) string {
	if byExt {
		return strings.ToLower(filepath.Ext(rel))
	}

	rel = filepath.ToSlash(rel)
	if idx := strings.Index(rel, "/"); idx >= 0 {
		return rel[:idx]
	}

	return RootRow
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
//
//nolint:varnamelen // c is idiomatic for collector
func startProgressReporter(ctx context.Context, c *collector, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.snapshot())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Run scans the directory at opt.Path and returns aggregated size
// statistics. Non-recursive runs sum the files sitting directly in the
// root. Recursive runs walk the full subtree and report one row per
// top-level directory, or one per extension when opt.ByExt is set.
//
// Subtrees that cannot be entered are skipped, reported through
// warnHook, and counted in the final report. Only a root that cannot
// be read at all is fatal.
//
// The walk can be cancelled via ctx. Progress updates are sent to
// progressHook if provided.
func Run(
	ctx context.Context,
	opt Options,
	progressHook func(int64, int64),
	warnHook func(string, error),
) (*Report, error) {
	log := logger{enabled: opt.Debug}

	if opt.Path == "" {
		opt.Path = "."
	}

	// Normalize to native format to handle both C:/Path and C:\Path inputs
	opt.Path = filepath.Clean(opt.Path)

	statInfo, err := os.Stat(opt.Path)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("accessing path %q: %v", opt.Path, err)}
	}

	if !statInfo.IsDir() {
		return nil, &ConfigError{Reason: fmt.Sprintf("path %q is not a directory", opt.Path)}
	}

	if opt.TopN <= 0 {
		opt.TopN = DefaultTopN
	}

	collector := newCollector(opt.TopN)

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start progress reporter goroutine
	startProgressReporter(ctx, collector, progressHook, opt.ProgressInterval)

	log.printf("\n")
	log.printf("[debug]: root: %s\n", opt.Path)
	log.printf("[debug]: recursive: %v\n", opt.Recursive)
	log.printf("[debug]: group by extension: %v\n", opt.ByExt)
	log.printf("[debug]: max depth: %d\n", opt.MaxDepth)
	log.printf("[debug]: include hidden: %v\n", opt.IncludeHidden)
	log.printf("[debug]: min size: %d\n", opt.MinSize)

	start := time.Now()

	if opt.Recursive {
		err = walkTree(ctx, opt, collector, warnHook, log)
	} else {
		err = scanLevel(opt, collector, log)
	}

	if err != nil {
		return nil, err
	}

	report := collector.finalize()
	report.Root = opt.Path
	report.Recursive = opt.Recursive
	report.ByExt = opt.ByExt
	report.Elapsed = time.Since(start)

	if capacity, err := ReadCapacity(opt.Path); err == nil {
		report.Capacity = capacity
	} else {
		log.printf("[debug]: reading filesystem capacity: %v\n", err)
	}

	return report, nil
}

// scanLevel aggregates the files sitting directly in the root, one
// level deep. Subdirectories are ignored.
//
//nolint:varnamelen // c is idiomatic for collector
func scanLevel(opt Options, c *collector, log logger) error {
	entries, err := os.ReadDir(opt.Path)
	if err != nil {
		return fmt.Errorf("reading %q: %w", opt.Path, err)
	}

	for _, entry := range entries {
		name := entry.Name()

		if !opt.IncludeHidden && strings.HasPrefix(name, ".") {
			log.printf("[debug]: skipping hidden entry: %s\n", name)

			continue
		}

		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			c.addError()

			continue
		}

		if info.Size() < opt.MinSize {
			continue
		}

		c.add(rowKey(name, opt.ByExt), name, info.Size())
	}

	return nil
}

// walkTree aggregates the full subtree under the root with fastwalk
// (parallel traversal). Inaccessible subtrees are recorded as skips
// and the walk continues; only a root read failure aborts.
//
//nolint:gocognit,varnamelen // c is idiomatic for collector
func walkTree(ctx context.Context, opt Options, c *collector, warnHook func(string, error), log logger) error {
	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, opt.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == opt.Path || d == nil {
				return fmt.Errorf("reading %q: %w", path, err)
			}

			if !d.IsDir() {
				c.addError()

				return nil
			}

			log.printf("[debug]: skipping inaccessible directory %s: %v\n", path, err)
			c.addSkip(path)

			if warnHook != nil {
				warnHook(path, err)
			}

			return nil
		}

		// Check cancellation periodically
		select {
		case <-ctx.Done():
			return context.Canceled
		default:
		}

		// Calculate current depth and check against limit
		currentDepth := calculateDepth(path, opt.Path)
		if opt.MaxDepth > 0 && currentDepth > opt.MaxDepth {
			if d.IsDir() {
				log.printf("[debug]: skipping directory (beyond depth %d): %s\n", opt.MaxDepth, path)

				return filepath.SkipDir
			}

			log.printf("[debug]: skipping file (beyond depth %d): %s\n", opt.MaxDepth, path)

			return nil
		}

		if !opt.IncludeHidden && path != opt.Path && hidden(path) {
			if d.IsDir() {
				log.printf("[debug]: skipping hidden directory: %s\n", path)

				return filepath.SkipDir
			}

			log.printf("[debug]: skipping hidden file: %s\n", path)

			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			c.addError()

			return nil //nolint:nilerr // Files that vanish mid-walk are counted, not fatal
		}

		if fileInfo.Size() < opt.MinSize {
			return nil
		}

		rel, err := filepath.Rel(opt.Path, path)
		if err != nil {
			rel = path
		}

		c.add(rowKey(rel, opt.ByExt), rel, fileInfo.Size())

		return nil
	})
	if walkErr != nil {
		return walkErr
	}

	return nil
}
