// Package diskreport sums file sizes under a directory root.
//
// It walks directory trees using fastwalk for parallel traversal,
// aggregates sizes per top-level directory or per extension, and
// tolerates unreadable subtrees by skipping them and counting the
// skips instead of failing the scan.
package diskreport
