package client

import (
	"context"
	"os"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/parser"
)

// reconcilePreview upgrades a bounded preview to the full row set when
// it can: first from a local copy of the source CSV, then from the
// backend rows endpoint. Both paths failing leaves the preview as is;
// reconciliation never blocks a load, so this action always returns
// nil.
func (r *loadRun) reconcilePreview(ctx context.Context, _ ...any) error {
	if r.summary == nil || r.summary.PreviewComplete() {
		return nil
	}
	if rows, ok := r.localRows(); ok {
		r.summary.RawPreview = rows
		return nil
	}
	if r.source.Kind == SourceLive && r.req.Token != "" {
		payload, err := r.api.Rows(ctx, r.req.Token, r.resolvedID)
		if err == nil && len(payload.Rows) >= len(r.summary.RawPreview) {
			r.summary.RawPreview = payload.Rows
		}
	}
	return nil
}

// localRows re-parses a local copy of the source CSV, accepting it only
// when header and row count match the summary's shape. A stale or
// unrelated file on the given path must not replace live data.
func (r *loadRun) localRows() ([]map[string]string, bool) {
	if r.req.LocalCSVPath == "" {
		return nil, false
	}
	f, err := os.Open(r.req.LocalCSVPath)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	table, err := parser.ParseCSV(f)
	if err != nil {
		return nil, false
	}
	if table.RowCount() != r.summary.Rows || len(table.Columns) != len(r.summary.ColumnNames) {
		return nil, false
	}
	for i, col := range table.Columns {
		if col != r.summary.ColumnNames[i] {
			return nil, false
		}
	}
	return table.Rows, true
}
