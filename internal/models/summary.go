package models

// ColumnStats holds the derived statistics for one numeric column.
// Std is the population standard deviation (divide by N, not N-1);
// reported values depend on this choice so it is fixed here.
type ColumnStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summary is the derived statistics payload for a dataset. It is computed
// once at upload, cached on the dataset record, and served verbatim.
type Summary struct {
	DatasetID      int64                  `json:"dataset_id"`
	Rows           int                    `json:"rows"`
	Columns        int                    `json:"columns"`
	ColumnNames    []string               `json:"column_names"`
	NumericColumns []string               `json:"numeric_columns"`
	Stats          map[string]ColumnStats `json:"summary"`
	RawPreview     []map[string]string    `json:"raw_preview"`
}

// PreviewComplete reports whether the preview already carries every row,
// i.e. whether clients need to reconcile against the full row set.
func (s *Summary) PreviewComplete() bool {
	return len(s.RawPreview) >= s.Rows
}
