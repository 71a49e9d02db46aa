// Package parser turns uploaded equipment CSV files into tables.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
)

// ErrEmptyFile is returned for uploads without a header row.
var ErrEmptyFile = errors.New("csv file is empty")

// ParseCSV reads a CSV with a header row into a Table. Every record must
// have the same width as the header; header names must be non-empty and
// unique. Any violation is a parse error and no partial table is returned.
func ParseCSV(r io.Reader) (*models.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF")
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("header column %d is empty", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate header column %q", name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}

	table := models.NewTable(columns)
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := make(map[string]string, len(columns))
		for i, col := range columns {
			row[col] = record[i]
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
