// Package report renders dataset summaries as PDF documents.
//
// The primary path embeds a line chart of the first numeric column. If
// chart rendering fails the report is still produced with the same
// textual content plus a note, so a missing optional capability never
// fails the request.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
)

const (
	reportTitle  = "Chemical Equipment — Dataset Report"
	fallbackNote = "Generated with fallback renderer (chart renderer unavailable)."

	previewRows = 10
	pageWidth   = 190.0
)

// Renderer builds PDF reports from dataset summaries.
type Renderer struct {
	chartFn func(column string, values []float64) ([]byte, error)
}

// NewRenderer creates a renderer using the default chart backend.
func NewRenderer() *Renderer {
	return &Renderer{chartFn: chartPNG}
}

// Render produces the PDF for a summary. rows is the full row set when
// the caller has one, otherwise the summary's preview. The bool reports
// whether the fallback (chartless) path was taken.
func (r *Renderer) Render(sum *models.Summary, rows []map[string]string, generatedAt time.Time) ([]byte, bool, error) {
	if sum == nil {
		return nil, false, errors.New("nil summary")
	}

	// Chart first so a failure can downgrade the whole document.
	var chartColumn string
	var chartData []byte
	fallback := false
	if column, values, ok := firstNumericSeries(sum, rows); ok {
		png, err := r.chartFn(column, values)
		if err != nil {
			fallback = true
		} else {
			chartColumn, chartData = column, png
		}
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(reportTitle), false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(pageWidth, 10, tr(reportTitle), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	meta := fmt.Sprintf("Dataset: %d | Rows: %d | Generated: %s",
		sum.DatasetID, sum.Rows, generatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	pdf.CellFormat(pageWidth, 6, meta, "", 1, "L", false, 0, "")

	if fallback {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(pageWidth, 6, fallbackNote, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}
	pdf.Ln(4)

	sectionHeading(pdf, "Columns")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(pageWidth, 5, tr(strings.Join(sum.ColumnNames, ", ")), "", "L", false)
	pdf.Ln(4)

	if len(sum.NumericColumns) > 0 {
		sectionHeading(pdf, "Numeric summary")
		writeSummaryTable(pdf, tr, sum)
		pdf.Ln(4)
	}

	if chartData != nil {
		sectionHeading(pdf, "Chart")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(pageWidth, 6, tr(chartColumn), "", 1, "L", false, 0, "")
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(chartData))
		pdf.ImageOptions("chart", 20, 0, 170, 0, true, opts, 0, "")
		pdf.Ln(4)
	}

	if len(sum.RawPreview) > 0 {
		sectionHeading(pdf, "Data preview (first rows)")
		writePreviewTable(pdf, tr, sum)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, false, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), fallback, nil
}

func sectionHeading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(pageWidth, 7, text, "", 1, "L", false, 0, "")
}

func writeSummaryTable(pdf *fpdf.Fpdf, tr func(string) string, sum *models.Summary) {
	headers := []string{"Column", "count", "mean", "median", "std", "min", "max"}
	widths := []float64{40, 20, 26, 26, 26, 26, 26}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, column := range sum.NumericColumns {
		stats := sum.Stats[column]
		cells := []string{
			tr(column),
			strconv.Itoa(stats.Count),
			statString(stats.Mean),
			statString(stats.Median),
			statString(stats.Std),
			statString(stats.Min),
			statString(stats.Max),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func writePreviewTable(pdf *fpdf.Fpdf, tr func(string) string, sum *models.Summary) {
	columns := sum.ColumnNames
	if len(columns) == 0 {
		return
	}
	width := pageWidth / float64(len(columns))

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for _, column := range columns {
		pdf.CellFormat(width, 6, tr(column), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	rows := sum.RawPreview
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}
	for _, row := range rows {
		for _, column := range columns {
			pdf.CellFormat(width, 6, tr(row[column]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// firstNumericSeries extracts the chartable values of the first numeric
// column. A chart needs at least two points.
func firstNumericSeries(sum *models.Summary, rows []map[string]string) (string, []float64, bool) {
	if len(sum.NumericColumns) == 0 {
		return "", nil, false
	}
	column := sum.NumericColumns[0]

	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		cell := strings.TrimSpace(row[column])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}

	if len(values) < 2 {
		return "", nil, false
	}
	return column, values, true
}

func statString(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
