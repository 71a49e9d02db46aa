// chart.go - Inline chart rendering for the dataset page
package webapp

import (
	"bytes"
	"fmt"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
)

// numericValues extracts the parseable values of one column from the
// preview rows, in row order. Empty and malformed cells are skipped,
// matching how the summary statistics treat them.
func numericValues(rows []map[string]string, column string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		cell, ok := row[column]
		if !ok || cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values
}

// linePNG renders the column's values over row index as a PNG sized for
// the dataset page.
func linePNG(column string, values []float64) ([]byte, error) {
	xs := make([]float64, len(values))
	for i := range values {
		xs[i] = float64(i + 1)
	}

	ch := chart.Chart{
		Width:      760,
		Height:     300,
		Background: chart.Style{Padding: chart.Box{Top: 12, Left: 12, Right: 12, Bottom: 8}},
		XAxis:      chart.XAxis{Name: "Row"},
		YAxis:      chart.YAxis{Name: column},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    column,
				XValues: xs,
				YValues: values,
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}
	return buf.Bytes(), nil
}
