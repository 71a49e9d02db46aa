// Package summary computes per-dataset statistics for numeric columns.
package summary

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
)

// PreviewRows is how many source rows the summary payload carries.
const PreviewRows = 20

// Summarize derives the statistics payload for a parsed table. A column is
// numeric iff every non-empty cell parses as a finite number; empty cells
// are skipped, and a column with zero numeric cells is not numeric. Std is
// the population standard deviation. Values are collected in source row
// order so repeated runs produce bit-identical output.
func Summarize(table *models.Table) *models.Summary {
	s := &models.Summary{
		Rows:           table.RowCount(),
		Columns:        len(table.Columns),
		ColumnNames:    append([]string(nil), table.Columns...),
		NumericColumns: make([]string, 0, len(table.Columns)),
		Stats:          make(map[string]models.ColumnStats),
		RawPreview:     table.Preview(PreviewRows),
	}

	for _, col := range table.Columns {
		values, ok := numericValues(table.Rows, col)
		if !ok || len(values) == 0 {
			continue
		}
		s.NumericColumns = append(s.NumericColumns, col)
		s.Stats[col] = columnStats(values)
	}

	return s
}

// numericValues collects the parsed cells of one column in row order.
// Returns ok=false as soon as a non-empty cell fails to parse.
func numericValues(rows []map[string]string, col string) ([]float64, bool) {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

func columnStats(values []float64) models.ColumnStats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return models.ColumnStats{
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		Median: median(sorted),
		Std:    stat.PopStdDev(values, nil),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
	}
}

// median of a sorted slice: middle element, or the mean of the two middle
// elements for even counts.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
