package report

import (
	"bytes"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
)

// chartPNG renders a line chart of the column's values over row index.
func chartPNG(column string, values []float64) ([]byte, error) {
	xs := make([]float64, len(values))
	for i := range values {
		xs[i] = float64(i + 1)
	}

	ch := chart.Chart{
		Title:      column,
		Width:      900,
		Height:     340,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 10}},
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
