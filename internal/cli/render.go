// render.go - Plain-text rendering of summaries, previews and history
package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
)

// previewLimit is how many preview rows the summary command prints by
// default, mirroring the report's table.
const previewLimit = 10

func printSummary(w io.Writer, sum *models.Summary) {
	if sum.DatasetID > 0 {
		fmt.Fprintf(w, "Dataset %d: %d rows, %d columns\n", sum.DatasetID, sum.Rows, sum.Columns)
	} else {
		fmt.Fprintf(w, "Sample dataset: %d rows, %d columns\n", sum.Rows, sum.Columns)
	}

	if len(sum.NumericColumns) == 0 {
		fmt.Fprintln(w, "(no numeric columns)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tCOUNT\tMEAN\tMEDIAN\tSTD\tMIN\tMAX")
	for _, col := range sum.NumericColumns {
		st := sum.Stats[col]
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			col, st.Count, num(st.Mean), num(st.Median), num(st.Std), num(st.Min), num(st.Max))
	}
	tw.Flush()
}

func printPreview(w io.Writer, sum *models.Summary, limit int) {
	if len(sum.RawPreview) == 0 || len(sum.ColumnNames) == 0 {
		return
	}
	n := len(sum.RawPreview)
	if limit > 0 && limit < n {
		n = limit
	}

	fmt.Fprintf(w, "\nPreview (%d of %d rows):\n", n, sum.Rows)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := ""
	for i, col := range sum.ColumnNames {
		if i > 0 {
			header += "\t"
		}
		header += col
	}
	fmt.Fprintln(tw, header)
	for _, row := range sum.RawPreview[:n] {
		line := ""
		for i, col := range sum.ColumnNames {
			if i > 0 {
				line += "\t"
			}
			line += row[col]
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()
	if sum.Rows > n {
		fmt.Fprintf(w, "... and %d more rows\n", sum.Rows-n)
	}
}

func printHistory(w io.Writer, entries []models.HistoryEntry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUPLOADED\tROWS\tCOLUMNS\tFILENAME")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n",
			e.ID, e.UploadedAt.Local().Format("2006-01-02 15:04"), e.RowCount, len(e.ColumnNames), e.OriginalFilename)
	}
	tw.Flush()
}

// num formats a statistic with fixed precision so columns align.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
