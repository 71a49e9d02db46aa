package client

import (
	"encoding/json"
	"fmt"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/samples"
)

// SourceKind distinguishes live backend data from the bundled sample.
type SourceKind int

const (
	SourceLive SourceKind = iota
	SourceFallback
)

func (k SourceKind) String() string {
	if k == SourceFallback {
		return "fallback"
	}
	return "live"
}

// DataSource records which path served a load so callers can mark demo
// data as such instead of passing it off as live.
type DataSource struct {
	Kind   SourceKind
	Reason string // why the fallback was taken; empty for live data
}

// IsFallback reports whether the bundled sample served the load.
func (s DataSource) IsFallback() bool { return s.Kind == SourceFallback }

func liveSource() DataSource { return DataSource{Kind: SourceLive} }

func fallbackSource(reason string) DataSource {
	return DataSource{Kind: SourceFallback, Reason: reason}
}

// sampleSummary decodes the bundled sample payload. It mirrors what the
// backend would return for the bundled CSV, with dataset id 0 marking
// it as non-live.
func sampleSummary() (*models.Summary, error) {
	data, err := samples.Read(samples.SummaryPayload)
	if err != nil {
		return nil, fmt.Errorf("reading bundled sample: %w", err)
	}
	sum := &models.Summary{}
	if err := json.Unmarshal(data, sum); err != nil {
		return nil, fmt.Errorf("decoding bundled sample: %w", err)
	}
	return sum, nil
}

// sampleHistoryEntry is a pseudo entry for the bundled CSV so labels
// can still resolve when the backend cannot answer.
func sampleHistoryEntry() models.HistoryEntry {
	return models.HistoryEntry{
		OriginalFilename: samples.EquipmentCSV,
		StoredName:       samples.EquipmentCSV,
	}
}
