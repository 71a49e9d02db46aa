// Package samples bundles the demo dataset shipped with every binary.
//
// The server exposes these files under /samples/ and the clients use
// them as the offline fallback, so all three binaries embed one copy.
package samples

import (
	"embed"
	"fmt"
	"path"
	"sort"
)

//go:embed data
var dataFS embed.FS

// EquipmentCSV is the bundled demo CSV file name.
const EquipmentCSV = "sample_equipment_data.csv"

// SummaryPayload is the bundled summary fixture file name.
const SummaryPayload = "sample_summary_payload.json"

// List returns the bundled file names, sorted.
func List() []string {
	entries, err := dataFS.ReadDir("data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Read returns the contents of a bundled file by base name.
func Read(name string) ([]byte, error) {
	if name != path.Base(name) || name == "." || name == "" {
		return nil, fmt.Errorf("invalid sample name: %q", name)
	}
	data, err := dataFS.ReadFile(path.Join("data", name))
	if err != nil {
		return nil, fmt.Errorf("reading sample %s: %w", name, err)
	}
	return data, nil
}

// ContentType maps a bundled file to its response content type.
func ContentType(name string) string {
	switch path.Ext(name) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
