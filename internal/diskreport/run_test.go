package diskreport

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeSized creates a file of the given size, creating parent
// directories as needed, and returns its path.
func writeSized(t *testing.T, dir, name string, size int) string {
	t.Helper()

	path := filepath.Join(dir, name)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating parent directory for %s: %v", name, err)
	}

	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), size), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}

	return path
}

func TestRunNonRecursiveSum(t *testing.T) {
	dir := t.TempDir()
	writeSized(t, dir, "a.dat", 10)
	writeSized(t, dir, "b.dat", 20)
	writeSized(t, dir, "c.dat", 30)
	writeSized(t, dir, "sub/d.dat", 15)

	report, err := Run(context.Background(), Options{Path: dir}, nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.TotalBytes != 60 {
		t.Errorf("TotalBytes = %d; want 60", report.TotalBytes)
	}

	if report.FileCount != 3 {
		t.Errorf("FileCount = %d; want 3", report.FileCount)
	}

	if len(report.Rows) != 1 {
		t.Fatalf("len(Rows) = %d; want 1", len(report.Rows))
	}

	if report.Rows[0].Key != RootRow || report.Rows[0].Bytes != 60 {
		t.Errorf("Rows[0] = %+v; want {Key: %q, Bytes: 60}", report.Rows[0], RootRow)
	}
}

func TestRunRecursiveSum(t *testing.T) {
	dir := t.TempDir()
	writeSized(t, dir, "a.dat", 10)
	writeSized(t, dir, "b.dat", 20)
	writeSized(t, dir, "c.dat", 30)
	writeSized(t, dir, "sub/d.dat", 15)

	report, err := Run(context.Background(), Options{Path: dir, Recursive: true}, nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.TotalBytes != 75 {
		t.Errorf("TotalBytes = %d; want 75", report.TotalBytes)
	}

	if report.FileCount != 4 {
		t.Errorf("FileCount = %d; want 4", report.FileCount)
	}

	want := []Row{
		{Key: RootRow, Files: 3, Bytes: 60},
		{Key: "sub", Files: 1, Bytes: 15},
	}

	if len(report.Rows) != len(want) {
		t.Fatalf("len(Rows) = %d; want %d", len(report.Rows), len(want))
	}

	for i, row := range report.Rows {
		if row != want[i] {
			t.Errorf("Rows[%d] = %+v; want %+v", i, row, want[i])
		}
	}
}

func TestRunRecursiveSkipsUnreadableSubtree(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root; permission bits are not enforced")
	}

	dir := t.TempDir()
	writeSized(t, dir, "a.dat", 10)
	writeSized(t, dir, "b.dat", 20)
	writeSized(t, dir, "c.dat", 30)
	writeSized(t, dir, "locked/d.dat", 15)

	locked := filepath.Join(dir, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	t.Cleanup(func() {
		_ = os.Chmod(locked, 0o755)
	})

	var warnings []string

	warn := func(path string, err error) {
		warnings = append(warnings, path)
	}

	report, err := Run(context.Background(), Options{Path: dir, Recursive: true}, nil, warn)
	if err != nil {
		t.Fatalf("Run() error = %v; want skip, not failure", err)
	}

	if report.TotalBytes != 60 {
		t.Errorf("TotalBytes = %d; want 60", report.TotalBytes)
	}

	if len(report.SkippedPaths) != 1 {
		t.Fatalf("len(SkippedPaths) = %d; want 1", len(report.SkippedPaths))
	}

	if report.SkippedPaths[0] != locked {
		t.Errorf("SkippedPaths[0] = %q; want %q", report.SkippedPaths[0], locked)
	}

	if len(warnings) != 1 || warnings[0] != locked {
		t.Errorf("warnings = %v; want [%q]", warnings, locked)
	}
}

func TestRunRowOrderingIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeSized(t, dir, "bee/a.dat", 10)
	writeSized(t, dir, "ant/b.dat", 10)
	writeSized(t, dir, "cat/c.dat", 25)

	report, err := Run(context.Background(), Options{Path: dir, Recursive: true}, nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []Row{
		{Key: "cat", Files: 1, Bytes: 25},
		{Key: "ant", Files: 1, Bytes: 10},
		{Key: "bee", Files: 1, Bytes: 10},
	}

	if len(report.Rows) != len(want) {
		t.Fatalf("len(Rows) = %d; want %d", len(report.Rows), len(want))
	}

	for i, row := range report.Rows {
		if row != want[i] {
			t.Errorf("Rows[%d] = %+v; want %+v", i, row, want[i])
		}
	}
}

func TestRunByExtension(t *testing.T) {
	dir := t.TempDir()
	writeSized(t, dir, "x.log", 4)
	writeSized(t, dir, "y.LOG", 6)
	writeSized(t, dir, "z.txt", 3)
	writeSized(t, dir, "Makefile", 2)

	report, err := Run(context.Background(), Options{Path: dir, Recursive: true, ByExt: true}, nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []Row{
		{Key: ".log", Files: 2, Bytes: 10},
		{Key: ".txt", Files: 1, Bytes: 3},
		{Key: "", Files: 1, Bytes: 2},
	}

	if len(report.Rows) != len(want) {
		t.Fatalf("len(Rows) = %d; want %d", len(report.Rows), len(want))
	}

	for i, row := range report.Rows {
		if row != want[i] {
			t.Errorf("Rows[%d] = %+v; want %+v", i, row, want[i])
		}
	}
}

func TestRunMaxDepth(t *testing.T) {
	dir := t.TempDir()
	writeSized(t, dir, "a.dat", 5)
	writeSized(t, dir, "sub/b.dat", 7)
	writeSized(t, dir, "sub/deep/c.dat", 9)

	report, err := Run(context.Background(), Options{Path: dir, Recursive: true, MaxDepth: 2}, nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.TotalBytes != 12 {
		t.Errorf("TotalBytes = %d; want 12 (depth limit should exclude sub/deep)", report.TotalBytes)
	}

	if report.FileCount != 2 {
		t.Errorf("FileCount = %d; want 2", report.FileCount)
	}
}

func TestRunHiddenEntries(t *testing.T) {
	dir := t.TempDir()
	writeSized(t, dir, "visible.dat", 10)
	writeSized(t, dir, ".secret", 5)
	writeSized(t, dir, ".config/nested.dat", 7)

	report, err := Run(context.Background(), Options{Path: dir, Recursive: true}, nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.TotalBytes != 10 {
		t.Errorf("TotalBytes = %d; want 10 (hidden entries excluded by default)", report.TotalBytes)
	}

	report, err = Run(context.Background(), Options{Path: dir, Recursive: true, IncludeHidden: true}, nil, nil)
	if err != nil {
		t.Fatalf("Run() with IncludeHidden error = %v", err)
	}

	if report.TotalBytes != 22 {
		t.Errorf("TotalBytes = %d; want 22 (hidden entries included)", report.TotalBytes)
	}
}

func TestRunMinSize(t *testing.T) {
	dir := t.TempDir()
	writeSized(t, dir, "small.dat", 5)
	writeSized(t, dir, "large.dat", 50)

	report, err := Run(context.Background(), Options{Path: dir, MinSize: 10}, nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.FileCount != 1 || report.TotalBytes != 50 {
		t.Errorf("FileCount = %d, TotalBytes = %d; want 1, 50", report.FileCount, report.TotalBytes)
	}
}

func TestRunConfigErrors(t *testing.T) {
	dir := t.TempDir()
	file := writeSized(t, dir, "plain.dat", 1)

	tests := []struct {
		name string
		path string
	}{
		{
			name: "missing root",
			path: filepath.Join(dir, "does-not-exist"),
		},
		{
			name: "root is a file",
			path: file,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), Options{Path: tt.path}, nil, nil)

			var confErr *ConfigError
			if !errors.As(err, &confErr) {
				t.Errorf("Run() error = %v; want ConfigError", err)
			}
		})
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	report, err := Run(context.Background(), Options{Path: t.TempDir()}, nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.FileCount != 0 || report.TotalBytes != 0 || len(report.Rows) != 0 {
		t.Errorf("report = %+v; want empty", report)
	}
}

func TestRunTopFiles(t *testing.T) {
	dir := t.TempDir()
	writeSized(t, dir, "small.dat", 1)
	writeSized(t, dir, "mid.dat", 2)
	writeSized(t, dir, "sub/big.dat", 3)

	report, err := Run(context.Background(), Options{Path: dir, Recursive: true, TopN: 2}, nil, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []FileStat{
		{Path: "sub/big.dat", Size: 3},
		{Path: "mid.dat", Size: 2},
	}

	if len(report.TopFiles) != len(want) {
		t.Fatalf("len(TopFiles) = %d; want %d", len(report.TopFiles), len(want))
	}

	for i, f := range report.TopFiles {
		if f != want[i] {
			t.Errorf("TopFiles[%d] = %+v; want %+v", i, f, want[i])
		}
	}
}

func TestRowKey(t *testing.T) {
	tests := []struct {
		name     string
		rel      string
		byExt    bool
		expected string
	}{
		{
			name:     "file in root",
			rel:      "a.dat",
			expected: RootRow,
		},
		{
			name:     "file in subdirectory",
			rel:      filepath.Join("sub", "a.dat"),
			expected: "sub",
		},
		{
			name:     "file deeper down",
			rel:      filepath.Join("sub", "deep", "a.dat"),
			expected: "sub",
		},
		{
			name:     "extension mode",
			rel:      filepath.Join("sub", "a.LOG"),
			byExt:    true,
			expected: ".log",
		},
		{
			name:     "extension mode without extension",
			rel:      "Makefile",
			byExt:    true,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rowKey(tt.rel, tt.byExt); got != tt.expected {
				t.Errorf("rowKey(%q, %v) = %q; want %q", tt.rel, tt.byExt, got, tt.expected)
			}
		})
	}
}

func TestCollectorSkipAndErrorAccounting(t *testing.T) {
	c := newCollector(5)
	c.add(RootRow, "a.dat", 10)
	c.addSkip("/tmp/x/zeta")
	c.addSkip("/tmp/x/alpha")
	c.addError()
	c.addError()

	report := c.finalize()

	if report.ErrorCount != 2 {
		t.Errorf("ErrorCount = %d; want 2", report.ErrorCount)
	}

	want := []string{"/tmp/x/alpha", "/tmp/x/zeta"}

	if len(report.SkippedPaths) != len(want) {
		t.Fatalf("len(SkippedPaths) = %d; want %d", len(report.SkippedPaths), len(want))
	}

	for i, path := range report.SkippedPaths {
		if path != want[i] {
			t.Errorf("SkippedPaths[%d] = %q; want %q", i, path, want[i])
		}
	}
}
