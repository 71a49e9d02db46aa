package client

import (
	"testing"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
)

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantKind  IdentifierKind
		wantID    int64
		wantLabel string
	}{
		{name: "plain id", raw: "7", wantKind: IdentifierNumeric, wantID: 7},
		{name: "digit string with spaces", raw: " 12 ", wantKind: IdentifierNumeric, wantID: 12},
		{name: "zero padded", raw: "00123", wantKind: IdentifierNumeric, wantID: 123},
		{name: "filename", raw: "plant_a.csv", wantKind: IdentifierLabel, wantLabel: "plant_a.csv"},
		{name: "filename starting with digits", raw: "2024_run.csv", wantKind: IdentifierLabel, wantLabel: "2024_run.csv"},
		{name: "stored path", raw: "uploads/datasets/f3c2.csv", wantKind: IdentifierLabel, wantLabel: "uploads/datasets/f3c2.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := ParseIdentifier(tt.raw)
			if id.Kind != tt.wantKind {
				t.Fatalf("kind = %v, want %v", id.Kind, tt.wantKind)
			}
			if id.ID != tt.wantID {
				t.Errorf("id = %d, want %d", id.ID, tt.wantID)
			}
			if id.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", id.Label, tt.wantLabel)
			}
		})
	}
}

func TestParseIdentifier_ReencodeIsStable(t *testing.T) {
	for _, raw := range []string{"7", " 12 ", "plant_a.csv", "00123"} {
		first := ParseIdentifier(raw)
		second := ParseIdentifier(first.String())
		if first != second {
			t.Errorf("ParseIdentifier(%q) = %+v, re-encoded parse = %+v", raw, first, second)
		}
	}
}

func TestIdentifierMatches(t *testing.T) {
	entry := models.HistoryEntry{
		ID:               7,
		OriginalFilename: "plant_a.csv",
		StoredName:       "f3c2.csv",
	}

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "original filename", raw: "plant_a.csv", want: true},
		{name: "filename without suffix", raw: "plant_a", want: true},
		{name: "uppercase suffix", raw: "plant_a.CSV", want: true},
		{name: "stored name", raw: "f3c2.csv", want: true},
		{name: "path-qualified stored name", raw: "uploads/datasets/f3c2.csv", want: true},
		{name: "windows path", raw: `C:\data\plant_a.csv`, want: true},
		{name: "matching id", raw: "7", want: true},
		{name: "different id", raw: "8", want: false},
		{name: "different filename", raw: "other.csv", want: false},
		{name: "case differs in name", raw: "PLANT_A.csv", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseIdentifier(tt.raw).Matches(entry); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
