package models

import "time"

// Dataset represents one uploaded CSV plus its derived metadata.
// Records are immutable after creation; only visible once the summary
// has been fully computed.
type Dataset struct {
	ID               int64     `json:"id"`
	OwnerID          int64     `json:"-"`
	OriginalFilename string    `json:"original_filename"`
	StoredName       string    `json:"stored_name"`
	UploadedAt       time.Time `json:"uploaded_at"`
	RowCount         int       `json:"row_count"`
	ColumnNames      []string  `json:"column_names"`
	NumericColumns   []string  `json:"numeric_columns"`
	Summary          *Summary  `json:"-"`
}

// HistoryEntry is the bounded recent-uploads view of a Dataset.
type HistoryEntry struct {
	ID               int64     `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	StoredName       string    `json:"stored_name"`
	UploadedAt       time.Time `json:"uploaded_at"`
	RowCount         int       `json:"row_count"`
	ColumnNames      []string  `json:"column_names"`
}

// HistoryEntry projects the dataset onto its history view.
func (d *Dataset) HistoryEntry() HistoryEntry {
	return HistoryEntry{
		ID:               d.ID,
		OriginalFilename: d.OriginalFilename,
		StoredName:       d.StoredName,
		UploadedAt:       d.UploadedAt,
		RowCount:         d.RowCount,
		ColumnNames:      d.ColumnNames,
	}
}

// HistoryLimit is the maximum number of entries a history listing returns.
const HistoryLimit = 5
