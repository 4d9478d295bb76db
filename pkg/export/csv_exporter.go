package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Report is a rendered-ready progress table. Rows are ordered and must match
// the Columns width.
type Report struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// CSV renders the report as CSV bytes. The title is not emitted; CSV output
// is meant for spreadsheet import.
func CSV(report Report) ([]byte, error) {
	if len(report.Columns) == 0 {
		return nil, fmt.Errorf("report has no columns")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(report.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range report.Rows {
		if len(row) != len(report.Columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(report.Columns))
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
