package csvaudit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// ConfigError marks a bad argument or an unusable input path. It is
// raised before any parsing starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

// Input is a fully-read CSV file. Header cells are trimmed; data cells
// are kept verbatim. Every row has exactly len(Header) fields.
type Input struct {
	// Path is the file the input was read from.
	Path string
	// Header holds the trimmed column names from the first row.
	Header []string
	// Rows holds the data rows in file order.
	Rows [][]string
}

// ParseDelimiter validates a delimiter flag value and returns it as a
// rune. Only single-character delimiters are accepted.
func ParseDelimiter(value string) (rune, error) {
	if utf8.RuneCountInString(value) != 1 {
		return 0, &ConfigError{Reason: fmt.Sprintf("delimiter must be a single character, got %q", value)}
	}

	delimiter, _ := utf8.DecodeRuneInString(value)

	return delimiter, nil
}

// ReadFile reads the whole CSV at path. The first row is the header;
// a file without one is a format error. Rows whose field count differs
// from the header fail the read with the offending data row number.
// Row numbers are 1-based and count data rows, excluding the header.
func ReadFile(path string, delimiter rune) (*Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("CSV not found: %s", path)}
	}

	if info.IsDir() {
		return nil, &ConfigError{Reason: fmt.Sprintf("not a file: %s", path)}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = delimiter

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: file is empty, expected a header row", path)
	}

	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}

	blank := true

	for i, name := range header {
		header[i] = strings.TrimSpace(name)
		if header[i] != "" {
			blank = false
		}
	}

	if blank {
		return nil, fmt.Errorf("%s: header row is empty", path)
	}

	var rows [][]string

	for i := 1; ; i++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		rows = append(rows, record)
	}

	return &Input{Path: path, Header: header, Rows: rows}, nil
}
