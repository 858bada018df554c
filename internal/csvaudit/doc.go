// Package csvaudit validates a CSV file and computes quick statistics.
//
// It reads a header-qualified CSV fully into memory, then reports row
// and column counts, missing values per column, exact duplicate rows,
// and min/max/mean for columns whose values are all numeric. Optional
// CSV exports of the summary and of the duplicate rows are derived
// from the in-memory result without re-reading the source file.
package csvaudit
