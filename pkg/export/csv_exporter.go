package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content. Row cells are keyed by header
// name; absent cells render empty.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

func (d Dataset) records() [][]string {
	records := make([][]string, 0, len(d.Rows)+1)
	records = append(records, d.Headers)
	for _, row := range d.Rows {
		cells := make([]string, len(d.Headers))
		for i, header := range d.Headers {
			cells[i] = row[header]
		}
		records = append(records, cells)
	}
	return records
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.WriteAll(data.records()); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
