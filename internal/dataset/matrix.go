package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cinemind/internal/similarity"
)

// ReadMatrixCSV parses N rows of N comma-separated floats. A row of
// non-numeric labels on the first line is treated as a header and skipped.
func ReadMatrixCSV(r io.Reader) (*similarity.Matrix, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var rows [][]float64
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read matrix line %d: %w", line, err)
		}
		row, err := parseRow(record)
		if err != nil {
			if line == 1 && looksLikeHeader(record) {
				continue
			}
			return nil, invalid(fmt.Sprintf("matrix line %d: %v", line, err))
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, invalid("similarity file is empty")
	}
	return similarity.New(rows)
}

func parseRow(record []string) ([]float64, error) {
	row := make([]float64, len(record))
	for i, cell := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		row[i] = v
	}
	return row, nil
}

func looksLikeHeader(record []string) bool {
	for _, cell := range record {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			return false
		}
	}
	return true
}
