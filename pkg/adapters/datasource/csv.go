package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ProjectCSV copies the mapped columns of req.FilePath to w as CSV, in mapping
// order. The header row is written with target column names when
// includeHeader is set. Short rows are padded with empty fields; empty fields
// load as NULL. Returns the number of data rows written.
func ProjectCSV(req BulkLoadRequest, w io.Writer, includeHeader bool) (int64, error) {
	indexes := make([]int, len(req.Mappings))
	targets := make([]string, len(req.Mappings))
	for i, m := range req.Mappings {
		idx := req.SourceIndex(m)
		if idx < 0 {
			return 0, fmt.Errorf("column %q is not in the CSV header", m.Source)
		}
		indexes[i] = idx
		targets[i] = m.Target
	}

	f, err := os.Open(req.FilePath)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	// Skip the source header.
	if _, err := r.Read(); err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}

	out := csv.NewWriter(w)
	if includeHeader {
		if err := out.Write(targets); err != nil {
			return 0, err
		}
	}

	var count int64
	record := make([]string, len(indexes))
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("read csv row %d: %w", count+2, err)
		}

		for i, idx := range indexes {
			record[i] = ""
			if idx < len(row) {
				record[i] = row[idx]
			}
		}
		if err := out.Write(record); err != nil {
			return count, err
		}
		count++
	}

	out.Flush()
	return count, out.Error()
}

// ReadCSVHeader returns the header row and up to sampleRows data rows.
func ReadCSVHeader(path string, sampleRows int) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	var samples [][]string
	for len(samples) < sampleRows {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv row: %w", err)
		}
		samples = append(samples, row)
	}
	return header, samples, nil
}

func trimBOM(s string) string {
	const bom = "\ufeff"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}
