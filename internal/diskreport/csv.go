package diskreport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV exports the report rows in CSV form. The rows written are
// exactly the Report.Rows slice, in the same order as the printed
// table; nothing is recomputed.
func WriteCSV(writer io.Writer, report *Report) error {
	out := csv.NewWriter(writer)

	keyColumn := "path"
	if report.ByExt {
		keyColumn = "extension"
	}

	if err := out.Write([]string{keyColumn, "files", "size_bytes"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, row := range report.Rows {
		record := []string{
			row.Key,
			strconv.FormatInt(row.Files, 10),
			strconv.FormatInt(row.Bytes, 10),
		}

		if err := out.Write(record); err != nil {
			return fmt.Errorf("writing CSV row for %q: %w", row.Key, err)
		}
	}

	out.Flush()

	if err := out.Error(); err != nil {
		return fmt.Errorf("flushing CSV output: %w", err)
	}

	return nil
}
